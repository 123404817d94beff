package discounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

// CreateInput carries the fields needed to mint a new discount code.
type CreateInput struct {
	Code       string          `json:"code" validate:"required,min=2,max=64"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	StartsAt   time.Time       `json:"starts_at" validate:"required"`
	EndsAt     time.Time       `json:"ends_at" validate:"required"`
	UsageLimit *int            `json:"usage_limit" validate:"omitempty,min=1"`
}

// Service owns the admin surface for discount codes. Checkout consumes usage
// through the repository directly, inside its own transaction.
type Service struct {
	repo      *Repository
	validator *Validator
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "discount repository is required")
	}
	validator, err := NewValidator(repo)
	if err != nil {
		return nil, err
	}
	return &Service{repo: repo, validator: validator}, nil
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, input CreateInput) (*models.DiscountCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "code is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "amount must be positive")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, apperrors.New(apperrors.CodeValidation, "ends_at must be after starts_at")
	}

	record := &models.DiscountCode{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Code:       code,
		Amount:     input.Amount,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		UsageLimit: input.UsageLimit,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.DiscountCode, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.DiscountCode, string, error) {
	codes, err := s.repo.List(ctx, tenantID, params)
	if err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(codes) > limit {
		codes = codes[:limit]
		last := codes[len(codes)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return codes, next, nil
}

func (s *Service) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.SetActive(ctx, tenantID, id, false)
}

// Validate checks whether a code is currently applicable for the tenant.
// This is the read-only path used by preview and by the code-check endpoint.
func (s *Service) Validate(ctx context.Context, tenantID uuid.UUID, code string) (Result, error) {
	return s.validator.Validate(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
}
