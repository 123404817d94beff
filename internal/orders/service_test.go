package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/internal/inventory"
	"github.com/avelarsoft/shoplane-backend/pkg/db/dbtest"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	"github.com/avelarsoft/shoplane-backend/pkg/enums"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

type gormTxRunner struct {
	conn *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.conn.WithContext(ctx).Transaction(fn)
}

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	conn := dbtest.Open(t)
	service, err := NewService(gormTxRunner{conn: conn}, NewRepository(conn), inventory.NewLedger(conn), nil)
	require.NoError(t, err)
	return service, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      "Filter Paper",
		UnitPrice: decimal.NewFromInt(300),
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedOrder(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, product *models.Product, quantity int, status enums.OrderStatus) *models.Order {
	t.Helper()

	unit := product.UnitPrice
	total := unit.Mul(decimal.NewFromInt(int64(quantity)))
	order := &models.Order{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Subtotal:       total,
		DiscountAmount: decimal.Zero,
		FinalAmount:    total,
		Status:         status,
		Items: []models.OrderLine{{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			Quantity:    quantity,
			UnitPrice:   unit,
			LineTotal:   total,
		}},
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestCancelRestocksAndFlipsStatus(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 7)
	order := seedOrder(t, conn, tenantID, product, 3, enums.OrderStatusPending)

	canceled, err := service.Cancel(context.Background(), tenantID, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCanceled, canceled.Status)

	var reloaded models.Product
	require.NoError(t, conn.Where("id = ?", product.ID).First(&reloaded).Error)
	require.Equal(t, 10, reloaded.Stock, "canceled quantities must return to stock")
}

func TestCancelDoesNotReturnDiscountUsage(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 5)

	limit := 5
	code := &models.DiscountCode{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Code:       "KEEP",
		Amount:     decimal.NewFromInt(100),
		StartsAt:   time.Now().Add(-time.Hour),
		EndsAt:     time.Now().AddDate(0, 1, 0),
		UsageLimit: &limit,
		UsedCount:  3,
		IsActive:   true,
	}
	require.NoError(t, conn.Create(code).Error)

	order := seedOrder(t, conn, tenantID, product, 1, enums.OrderStatusPending)
	appliedCode := code.Code
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]any{"applied_code": appliedCode, "discount_code_id": code.ID}).Error)

	_, err := service.Cancel(context.Background(), tenantID, order.ID)
	require.NoError(t, err)

	var reloaded models.DiscountCode
	require.NoError(t, conn.Where("id = ?", code.ID).First(&reloaded).Error)
	require.Equal(t, 3, reloaded.UsedCount, "cancellation must not hand back discount usage")
}

func TestCancelAlreadyCanceledConflicts(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 5)
	order := seedOrder(t, conn, tenantID, product, 2, enums.OrderStatusCanceled)

	_, err := service.Cancel(context.Background(), tenantID, order.ID)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeConflict, appErr.Code())

	var reloaded models.Product
	require.NoError(t, conn.Where("id = ?", product.ID).First(&reloaded).Error)
	require.Equal(t, 5, reloaded.Stock, "refused cancellation must not restock")
}

func TestCancelScopedToTenant(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 5)
	order := seedOrder(t, conn, tenantID, product, 2, enums.OrderStatusPending)

	_, err := service.Cancel(context.Background(), uuid.New(), order.ID)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeNotFound, appErr.Code())
}

func TestCompleteTransitions(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 5)
	order := seedOrder(t, conn, tenantID, product, 1, enums.OrderStatusPending)

	completed, err := service.Complete(context.Background(), tenantID, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCompleted, completed.Status)

	_, err = service.Complete(context.Background(), tenantID, order.ID)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeConflict, appErr.Code())
}

func TestCancelCompletedOrderConflicts(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 5)
	order := seedOrder(t, conn, tenantID, product, 1, enums.OrderStatusCompleted)

	_, err := service.Cancel(context.Background(), tenantID, order.ID)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeConflict, appErr.Code())
}

func TestListFiltersByStatusAndTenant(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 50)

	seedOrder(t, conn, tenantID, product, 1, enums.OrderStatusPending)
	seedOrder(t, conn, tenantID, product, 1, enums.OrderStatusCompleted)

	otherProduct := seedProduct(t, conn, uuid.New(), 10)
	seedOrder(t, conn, otherProduct.TenantID, otherProduct, 1, enums.OrderStatusPending)

	pending := enums.OrderStatusPending
	found, next, err := service.List(context.Background(), tenantID, ListFilter{Status: &pending}, pagination.Params{})
	require.NoError(t, err)
	require.Empty(t, next)
	require.Len(t, found, 1)
	require.Equal(t, enums.OrderStatusPending, found[0].Status)

	all, _, err := service.List(context.Background(), tenantID, ListFilter{}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, all, 2, "other tenants' orders must not leak into the listing")
}
