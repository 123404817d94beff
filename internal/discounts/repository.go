package discounts

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/pkg/db"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

// Repository persists discount codes. All reads and writes are scoped to a
// tenant id; there is no unscoped access path.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, code *models.DiscountCode) error {
	err := r.db.WithContext(ctx).Create(code).Error
	if err != nil {
		if db.IsUniqueViolation(err, "idx_discount_codes_tenant_code") {
			return apperrors.New(apperrors.CodeConflict, fmt.Sprintf("discount code %q already exists", code.Code))
		}
		return apperrors.Wrap(apperrors.CodeDependency, err, "creating discount code")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.DiscountCode, error) {
	var code models.DiscountCode
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&code).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "discount code not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "loading discount code")
	}
	return &code, nil
}

// FindByCode looks up a code within a tenant. The (tenant_id, code) pair is
// unique so at most one row matches.
func (r *Repository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.DiscountCode, error) {
	var record models.DiscountCode
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&record).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "discount code not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "loading discount code")
	}
	return &record, nil
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.DiscountCode, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var codes []models.DiscountCode
	if err := query.Find(&codes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing discount codes")
	}
	return codes, nil
}

// IncrementUsage bumps used_count by one only while the usage limit still has
// headroom. The guard and the increment execute as a single statement, so two
// concurrent checkouts racing for the last slot cannot both succeed. Returns
// false when the limit is already reached or the row does not exist.
func (r *Repository) IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("id = ? AND tenant_id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", id, tenantID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, apperrors.Wrap(apperrors.CodeDependency, res.Error, "incrementing discount usage")
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("is_active", active)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.CodeDependency, res.Error, "updating discount code")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "discount code not found")
	}
	return nil
}
