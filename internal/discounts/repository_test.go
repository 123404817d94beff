package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/pkg/db/dbtest"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
)

func seedCode(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, code string, usageLimit *int, usedCount int) *models.DiscountCode {
	t.Helper()

	record := &models.DiscountCode{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Code:       code,
		Amount:     decimal.NewFromInt(50000),
		StartsAt:   time.Now().Add(-time.Hour),
		EndsAt:     time.Now().Add(time.Hour),
		UsageLimit: usageLimit,
		UsedCount:  usedCount,
		IsActive:   true,
	}
	require.NoError(t, conn.Create(record).Error)
	return record
}

func intPtr(v int) *int { return &v }

func TestIncrementUsageStopsAtLimit(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	tenantID := uuid.New()
	record := seedCode(t, conn, tenantID, "SUMMER10", intPtr(5), 4)

	ok, err := repo.IncrementUsage(context.Background(), tenantID, record.ID)
	require.NoError(t, err)
	require.True(t, ok)

	reloaded, err := repo.FindByID(context.Background(), tenantID, record.ID)
	require.NoError(t, err)
	require.Equal(t, 5, reloaded.UsedCount)

	ok, err = repo.IncrementUsage(context.Background(), tenantID, record.ID)
	require.NoError(t, err)
	require.False(t, ok, "increment past the limit must be refused")

	reloaded, err = repo.FindByID(context.Background(), tenantID, record.ID)
	require.NoError(t, err)
	require.Equal(t, 5, reloaded.UsedCount, "refused increment must not change the counter")
}

func TestIncrementUsageUnlimited(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	tenantID := uuid.New()
	record := seedCode(t, conn, tenantID, "FOREVER", nil, 120)

	ok, err := repo.IncrementUsage(context.Background(), tenantID, record.ID)
	require.NoError(t, err)
	require.True(t, ok)

	reloaded, err := repo.FindByID(context.Background(), tenantID, record.ID)
	require.NoError(t, err)
	require.Equal(t, 121, reloaded.UsedCount)
}

func TestIncrementUsageScopedToTenant(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	record := seedCode(t, conn, uuid.New(), "SCOPED", intPtr(10), 0)

	ok, err := repo.IncrementUsage(context.Background(), uuid.New(), record.ID)
	require.NoError(t, err)
	require.False(t, ok, "another tenant must not consume the code")
}

func TestFindByCodeScopedToTenant(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	tenantA := uuid.New()
	tenantB := uuid.New()
	seedCode(t, conn, tenantA, "SHARED", intPtr(3), 1)
	seedCode(t, conn, tenantB, "SHARED", intPtr(9), 2)

	found, err := repo.FindByCode(context.Background(), tenantA, "SHARED")
	require.NoError(t, err)
	require.Equal(t, tenantA, found.TenantID)
	require.Equal(t, 1, found.UsedCount)

	_, err = repo.FindByCode(context.Background(), uuid.New(), "SHARED")
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeNotFound, appErr.Code())
}

func TestCreateDuplicateCodeConflict(t *testing.T) {
	t.Parallel()

	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	tenantID := uuid.New()
	seedCode(t, conn, tenantID, "ONCE", nil, 0)

	err := repo.Create(context.Background(), &models.DiscountCode{
		ID:       uuid.New(),
		TenantID: tenantID,
		Code:     "ONCE",
		Amount:   decimal.NewFromInt(100),
		StartsAt: time.Now(),
		EndsAt:   time.Now().Add(time.Hour),
		IsActive: true,
	})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeConflict, appErr.Code())
}
