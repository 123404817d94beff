package products

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

// Repository persists catalog products. Stock columns are read here but only
// mutated by the inventory ledger.
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

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Create(product).Error
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_tenant_sku") {
			return apperrors.New(apperrors.CodeConflict, fmt.Sprintf("sku %q already exists", product.SKU))
		}
		return apperrors.Wrap(apperrors.CodeDependency, err, "creating product")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&product).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "loading product")
	}
	return &product, nil
}

// FindManyByIDs loads the requested products in one query. Missing ids are
// simply absent from the result; callers decide whether that is an error.
func (r *Repository) FindManyByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&found).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "loading products")
	}
	return found, nil
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.Product, error) {
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

	var found []models.Product
	if err := query.Find(&found).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing products")
	}
	return found, nil
}

// ListActive loads every active product for the tenant, optionally narrowed
// to one category. Feeds the in-process keyword search.
func (r *Repository) ListActive(ctx context.Context, tenantID uuid.UUID, categoryID *uuid.UUID) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var found []models.Product
	if err := query.Find(&found).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing active products")
	}
	return found, nil
}

func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND tenant_id = ?", product.ID, product.TenantID).
		Updates(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"category_id": product.CategoryID,
			"tags":        product.Tags,
			"unit_price":  product.UnitPrice,
			"is_active":   product.IsActive,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.CodeDependency, res.Error, "updating product")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "product not found")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.Product{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.CodeDependency, res.Error, "deleting product")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "product not found")
	}
	return nil
}
