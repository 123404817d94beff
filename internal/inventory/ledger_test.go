package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/pkg/db/dbtest"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
)

func seedProduct(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      "Espresso Beans",
		UnitPrice: decimal.NewFromInt(1200),
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func stockOf(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var product models.Product
	require.NoError(t, conn.Where("id = ?", id).First(&product).Error)
	return product.Stock
}

func TestReserveDeductsStock(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	ledger := NewLedger(conn)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 10)

	require.NoError(t, ledger.Reserve(context.Background(), tenantID, product.ID, 4))
	require.Equal(t, 6, stockOf(t, conn, product.ID))
}

func TestReserveInsufficientStock(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	ledger := NewLedger(conn)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 3)

	err := ledger.Reserve(context.Background(), tenantID, product.ID, 5)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeInsufficientStock, appErr.Code())

	shortage, ok := appErr.Details().(StockShortage)
	require.True(t, ok)
	require.Equal(t, product.ID, shortage.ProductID)
	require.Equal(t, 5, shortage.Requested)
	require.Equal(t, 3, shortage.Available)

	require.Equal(t, 3, stockOf(t, conn, product.ID), "failed reservation must not touch stock")
}

func TestReserveExactRemainingStock(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	ledger := NewLedger(conn)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 2)

	require.NoError(t, ledger.Reserve(context.Background(), tenantID, product.ID, 2))
	require.Equal(t, 0, stockOf(t, conn, product.ID))

	err := ledger.Reserve(context.Background(), tenantID, product.ID, 1)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeInsufficientStock, appErr.Code())
}

func TestReserveUnknownProduct(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	ledger := NewLedger(conn)

	err := ledger.Reserve(context.Background(), uuid.New(), uuid.New(), 1)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeNotFound, appErr.Code())
}

func TestReserveScopedToTenant(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	ledger := NewLedger(conn)
	product := seedProduct(t, conn, uuid.New(), 10)

	err := ledger.Reserve(context.Background(), uuid.New(), product.ID, 1)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeNotFound, appErr.Code(), "other tenants must not see the product")
	require.Equal(t, 10, stockOf(t, conn, product.ID))
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	ledger := NewLedger(conn)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 10)

	for _, quantity := range []int{0, -2} {
		err := ledger.Reserve(context.Background(), tenantID, product.ID, quantity)
		appErr := apperrors.As(err)
		require.NotNil(t, appErr)
		require.Equal(t, apperrors.CodeValidation, appErr.Code())
	}
}

func TestReleaseRestoresStock(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	ledger := NewLedger(conn)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 5)

	require.NoError(t, ledger.Reserve(context.Background(), tenantID, product.ID, 5))
	require.NoError(t, ledger.Release(context.Background(), tenantID, product.ID, 5))
	require.Equal(t, 5, stockOf(t, conn, product.ID))
}

func TestReleaseUnknownProduct(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	ledger := NewLedger(conn)

	err := ledger.Release(context.Background(), uuid.New(), uuid.New(), 1)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeNotFound, appErr.Code())
}
