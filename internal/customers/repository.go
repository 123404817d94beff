package customers

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

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

func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "creating customer")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&customer).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "customer not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "loading customer")
	}
	return &customer, nil
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.Customer, error) {
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

	var found []models.Customer
	if err := query.Find(&found).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing customers")
	}
	return found, nil
}

func (r *Repository) Update(ctx context.Context, customer *models.Customer) error {
	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ? AND tenant_id = ?", customer.ID, customer.TenantID).
		Updates(map[string]any{
			"name":  customer.Name,
			"phone": customer.Phone,
			"email": customer.Email,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.CodeDependency, res.Error, "updating customer")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "customer not found")
	}
	return nil
}
