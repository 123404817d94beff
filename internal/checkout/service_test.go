package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/internal/discounts"
	"github.com/avelarsoft/shoplane-backend/pkg/config"
	"github.com/avelarsoft/shoplane-backend/pkg/db/dbtest"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	"github.com/avelarsoft/shoplane-backend/pkg/enums"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
)

type gormTxRunner struct {
	conn *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.conn.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, strict bool) (*Service, *gorm.DB) {
	t.Helper()

	conn := dbtest.Open(t)
	service, err := NewService(
		gormTxRunner{conn: conn},
		&GormStores{conn: conn},
		config.CheckoutConfig{StrictCoupons: strict},
		nil,
		nil,
	)
	require.NoError(t, err)
	return service, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, price int64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      "Pour Over Kit",
		UnitPrice: decimal.NewFromInt(price),
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedCode(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, code string, amount int64, usageLimit *int, usedCount int, mutate func(*models.DiscountCode)) *models.DiscountCode {
	t.Helper()

	record := &models.DiscountCode{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Code:       code,
		Amount:     decimal.NewFromInt(amount),
		StartsAt:   time.Now().Add(-time.Hour),
		EndsAt:     time.Now().Add(time.Hour),
		UsageLimit: usageLimit,
		UsedCount:  usedCount,
		IsActive:   true,
	}
	if mutate != nil {
		mutate(record)
	}
	require.NoError(t, conn.Create(record).Error)
	return record
}

func stockOf(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var product models.Product
	require.NoError(t, conn.Where("id = ?", id).First(&product).Error)
	return product.Stock
}

func usedCountOf(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var record models.DiscountCode
	require.NoError(t, conn.Where("id = ?", id).First(&record).Error)
	return record.UsedCount
}

func orderCount(t *testing.T, conn *gorm.DB, tenantID uuid.UUID) int64 {
	t.Helper()

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Where("tenant_id = ?", tenantID).Count(&count).Error)
	return count
}

func intPtr(v int) *int { return &v }

func TestExecuteCommitsDiscountedOrder(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 100000, 10)
	code := seedCode(t, conn, tenantID, "SUMMER10", 50000, intPtr(5), 4, nil)

	order, err := service.Execute(context.Background(), tenantID, Input{
		Code:  "summer10",
		Items: []ItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	require.True(t, order.Subtotal.Equal(decimal.NewFromInt(300000)), "subtotal: %s", order.Subtotal)
	require.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(50000)))
	require.True(t, order.FinalAmount.Equal(decimal.NewFromInt(250000)))
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.NotNil(t, order.AppliedCode)
	require.Equal(t, "SUMMER10", *order.AppliedCode)
	require.Len(t, order.Items, 1)
	require.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(100000)), "line must snapshot the unit price")

	require.Equal(t, 7, stockOf(t, conn, product.ID))
	require.Equal(t, 5, usedCountOf(t, conn, code.ID))

	// The code is now exhausted; a strict follow-up must be rejected whole.
	_, err = service.Execute(context.Background(), tenantID, Input{
		Code:  "SUMMER10",
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeDiscountRejected, appErr.Code())
	require.Equal(t, 7, stockOf(t, conn, product.ID), "rejected checkout must not touch stock")
	require.Equal(t, int64(1), orderCount(t, conn, tenantID))
}

func TestExecuteWithoutCode(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 2500, 4)

	order, err := service.Execute(context.Background(), tenantID, Input{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.True(t, order.DiscountAmount.IsZero())
	require.True(t, order.FinalAmount.Equal(decimal.NewFromInt(5000)))
	require.Nil(t, order.AppliedCode)
	require.Equal(t, 2, stockOf(t, conn, product.ID))
}

func TestExecuteNonStrictProceedsAtFullPrice(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, false)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 1000, 5)
	code := seedCode(t, conn, tenantID, "EXPIRED", 200, nil, 0, func(c *models.DiscountCode) {
		c.StartsAt = time.Now().Add(-48 * time.Hour)
		c.EndsAt = time.Now().Add(-24 * time.Hour)
	})

	order, err := service.Execute(context.Background(), tenantID, Input{
		Code:  "EXPIRED",
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.True(t, order.DiscountAmount.IsZero())
	require.True(t, order.FinalAmount.Equal(decimal.NewFromInt(1000)))
	require.Nil(t, order.AppliedCode)
	require.Equal(t, 0, usedCountOf(t, conn, code.ID))
	require.Equal(t, 4, stockOf(t, conn, product.ID))
}

func TestExecuteStrictRejectsExpiredCode(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 1000, 5)
	seedCode(t, conn, tenantID, "EXPIRED", 200, nil, 0, func(c *models.DiscountCode) {
		c.StartsAt = time.Now().Add(-48 * time.Hour)
		c.EndsAt = time.Now().Add(-24 * time.Hour)
	})

	_, err := service.Execute(context.Background(), tenantID, Input{
		Code:  "EXPIRED",
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeDiscountRejected, appErr.Code())
	require.Equal(t, 5, stockOf(t, conn, product.ID))
	require.Equal(t, int64(0), orderCount(t, conn, tenantID))
}

func TestExecuteInsufficientStockAbortsWhole(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()
	plenty := seedProduct(t, conn, tenantID, 500, 10)
	scarce := seedProduct(t, conn, tenantID, 800, 1)

	_, err := service.Execute(context.Background(), tenantID, Input{
		Items: []ItemInput{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 5},
		},
	})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeInsufficientStock, appErr.Code())

	require.Equal(t, 10, stockOf(t, conn, plenty.ID), "earlier reservation must be unwound")
	require.Equal(t, 1, stockOf(t, conn, scarce.ID))
	require.Equal(t, int64(0), orderCount(t, conn, tenantID))
}

func TestExecuteUnknownProduct(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()

	_, err := service.Execute(context.Background(), tenantID, Input{
		Items: []ItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeNotFound, appErr.Code())
	require.Equal(t, int64(0), orderCount(t, conn, tenantID))
}

func TestExecuteTenantIsolation(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	owner := uuid.New()
	product := seedProduct(t, conn, owner, 1000, 5)

	intruder := uuid.New()
	_, err := service.Execute(context.Background(), intruder, Input{
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeNotFound, appErr.Code())
	require.Equal(t, 5, stockOf(t, conn, product.ID))
}

func TestExecuteMergesDuplicateLines(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 100, 10)

	order, err := service.Execute(context.Background(), tenantID, Input{
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.Equal(t, 5, order.Items[0].Quantity)
	require.Equal(t, 5, stockOf(t, conn, product.ID))
}

func TestPreviewHasNoSideEffects(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 100000, 10)
	code := seedCode(t, conn, tenantID, "SUMMER10", 50000, intPtr(5), 4, nil)

	quote, err := service.Preview(context.Background(), tenantID, Input{
		Code:  "SUMMER10",
		Items: []ItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.True(t, quote.Subtotal.Equal(decimal.NewFromInt(300000)))
	require.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(250000)))
	require.Equal(t, discounts.StatusValid, quote.CouponStatus)
	require.NotNil(t, quote.AppliedCode)

	require.Equal(t, 10, stockOf(t, conn, product.ID), "preview must not reserve stock")
	require.Equal(t, 4, usedCountOf(t, conn, code.ID), "preview must not consume usage")
	require.Equal(t, int64(0), orderCount(t, conn, tenantID))
}

func TestPreviewReportsInapplicableCoupon(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 1000, 3)
	seedCode(t, conn, tenantID, "SOLDOUT", 100, intPtr(2), 2, nil)

	quote, err := service.Preview(context.Background(), tenantID, Input{
		Code:  "SOLDOUT",
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err, "preview never fails on an inapplicable coupon")
	require.Equal(t, discounts.StatusLimitReached, quote.CouponStatus)
	require.NotEmpty(t, quote.CouponMessage)
	require.True(t, quote.DiscountAmount.IsZero())
	require.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(1000)))
	require.Nil(t, quote.AppliedCode)
}

func TestPreviewUnknownCode(t *testing.T) {
	t.Parallel()

	service, conn := newTestService(t, true)
	tenantID := uuid.New()
	product := seedProduct(t, conn, tenantID, 1000, 3)

	quote, err := service.Preview(context.Background(), tenantID, Input{
		Code:  "NOPE",
		Items: []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, discounts.StatusNotFound, quote.CouponStatus)
	require.True(t, quote.FinalAmount.Equal(decimal.NewFromInt(1000)))
}
