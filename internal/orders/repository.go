package orders

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	"github.com/avelarsoft/shoplane-backend/pkg/enums"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

// ListFilter narrows order listings. Zero value lists everything for the
// tenant.
type ListFilter struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
}

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

// Create inserts the order and its lines in one go. GORM cascades the Items
// association, so the order row and every line land together.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "creating order")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&order).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "loading order")
	}
	return &order, nil
}

func (r *Repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var found []models.Order
	if err := query.Find(&found).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "listing orders")
	}
	return found, nil
}

// TransitionStatus moves the order from one status to another only if it is
// still in the expected status. Returns false when the order was not in that
// status (or does not exist), so racing transitions settle on exactly one
// winner.
func (r *Repository) TransitionStatus(ctx context.Context, tenantID, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, from).
		Update("status", to)
	if res.Error != nil {
		return false, apperrors.Wrap(apperrors.CodeDependency, res.Error, "updating order status")
	}
	return res.RowsAffected == 1, nil
}
