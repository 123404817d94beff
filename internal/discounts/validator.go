package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
)

// Status is the outcome of validating a discount code against the clock and
// its usage counters. Every non-valid status carries the reason so callers
// can surface it without reverse-engineering an error string.
type Status string

const (
	StatusValid         Status = "valid"
	StatusNotFound      Status = "not_found"
	StatusInactive      Status = "inactive"
	StatusNotYetStarted Status = "not_yet_started"
	StatusExpired       Status = "expired"
	StatusLimitReached  Status = "limit_reached"
)

// Message returns the human-readable reason for the status.
func (s Status) Message() string {
	switch s {
	case StatusValid:
		return "discount code is valid"
	case StatusNotFound:
		return "discount code does not exist"
	case StatusInactive:
		return "discount code is disabled"
	case StatusNotYetStarted:
		return "discount code is not active yet"
	case StatusExpired:
		return "discount code has expired"
	case StatusLimitReached:
		return "discount code usage limit reached"
	default:
		return "discount code is not applicable"
	}
}

// Result pairs the validation status with the code record when it was found.
// Discount is nil only for StatusNotFound.
type Result struct {
	Status   Status
	Discount *models.DiscountCode
}

// Applicable reports whether the code can be applied to a checkout.
func (r Result) Applicable() bool {
	return r.Status == StatusValid
}

type codeFinder interface {
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.DiscountCode, error)
}

// Validator checks a discount code's activation flag, validity window and
// usage headroom. It performs reads only; usage is consumed separately by the
// checkout transaction.
type Validator struct {
	repo codeFinder
	now  func() time.Time
}

func NewValidator(repo codeFinder) (*Validator, error) {
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "discount repository is required")
	}
	return &Validator{repo: repo, now: time.Now}, nil
}

// Validate resolves the code within the tenant and evaluates it at the
// current instant. The window is inclusive on both ends.
func (v *Validator) Validate(ctx context.Context, tenantID uuid.UUID, code string) (Result, error) {
	record, err := v.repo.FindByCode(ctx, tenantID, code)
	if err != nil {
		if appErr := apperrors.As(err); appErr != nil && appErr.Code() == apperrors.CodeNotFound {
			return Result{Status: StatusNotFound}, nil
		}
		return Result{}, err
	}

	return Result{Status: Evaluate(record, v.now()), Discount: record}, nil
}

// Evaluate applies the validation rules to an already-loaded record. The
// checkout transaction re-runs this on the row it holds inside the
// transaction so the decision matches what it is about to consume.
func Evaluate(record *models.DiscountCode, at time.Time) Status {
	if record == nil {
		return StatusNotFound
	}
	if !record.IsActive {
		return StatusInactive
	}
	if at.Before(record.StartsAt) {
		return StatusNotYetStarted
	}
	if at.After(record.EndsAt) {
		return StatusExpired
	}
	if record.UsageLimit != nil && record.UsedCount >= *record.UsageLimit {
		return StatusLimitReached
	}
	return StatusValid
}
