package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/pkg/db/dbtest"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	conn := dbtest.Open(t)
	service, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return service, conn
}

func seed(t *testing.T, conn *gorm.DB, tenantID uuid.UUID, sku, name string, tags []string) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SKU:       sku,
		Name:      name,
		Tags:      pq.StringArray(tags),
		UnitPrice: decimal.NewFromInt(1000),
		Stock:     10,
		IsActive:  true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	t.Parallel()

	service, _ := newService(t)
	tenantID := uuid.New()

	_, err := service.Create(context.Background(), tenantID, CreateInput{
		SKU: "BEANS-01", Name: "Espresso Beans", UnitPrice: decimal.NewFromInt(1200), Stock: 5,
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), tenantID, CreateInput{
		SKU: "BEANS-01", Name: "Other Beans", UnitPrice: decimal.NewFromInt(900), Stock: 2,
	})
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeConflict, appErr.Code())
}

func TestCreateAllowsSameSKUAcrossTenants(t *testing.T) {
	t.Parallel()

	service, _ := newService(t)

	_, err := service.Create(context.Background(), uuid.New(), CreateInput{
		SKU: "SHARED-SKU", Name: "Tenant A Beans", UnitPrice: decimal.NewFromInt(100), Stock: 1,
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), uuid.New(), CreateInput{
		SKU: "SHARED-SKU", Name: "Tenant B Beans", UnitPrice: decimal.NewFromInt(200), Stock: 2,
	})
	require.NoError(t, err)
}

func TestGetScopedToTenant(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	product := seed(t, conn, uuid.New(), "SKU-1", "Latte Mix", nil)

	_, err := service.Get(context.Background(), uuid.New(), product.ID)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeNotFound, appErr.Code())
}

func TestSearchMatchesNameSkuAndTags(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()
	latte := seed(t, conn, tenantID, "LAT-01", "Iced Latte Grande", nil)
	byTag := seed(t, conn, tenantID, "MUG-01", "Ceramic Mug", []string{"latte", "drinkware"})
	seed(t, conn, tenantID, "TEA-01", "Green Tea", nil)

	hits, err := service.Search(context.Background(), tenantID, "latte", nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	ids := []uuid.UUID{hits[0].Product.ID, hits[1].Product.ID}
	require.Contains(t, ids, latte.ID)
	require.Contains(t, ids, byTag.ID)
	require.Equal(t, 100, hits[0].Score)
}

func TestSearchExcludesInactiveAndOtherTenants(t *testing.T) {
	t.Parallel()

	service, conn := newService(t)
	tenantID := uuid.New()

	inactive := seed(t, conn, tenantID, "LAT-02", "Latte Syrup", nil)
	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)
	seed(t, conn, uuid.New(), "LAT-03", "Latte Foam", nil)

	hits, err := service.Search(context.Background(), tenantID, "latte", nil)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestSearchRequiresKeyword(t *testing.T) {
	t.Parallel()

	service, _ := newService(t)

	_, err := service.Search(context.Background(), uuid.New(), "   ", nil)
	appErr := apperrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeValidation, appErr.Code())
}
