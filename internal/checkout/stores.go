package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/internal/discounts"
	"github.com/avelarsoft/shoplane-backend/internal/inventory"
	"github.com/avelarsoft/shoplane-backend/internal/orders"
	"github.com/avelarsoft/shoplane-backend/internal/products"
	"github.com/avelarsoft/shoplane-backend/pkg/db"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
)

// ProductSource loads catalog rows for the cart.
type ProductSource interface {
	FindManyByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}

// DiscountStore resolves codes and consumes usage slots.
type DiscountStore interface {
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.DiscountCode, error)
	IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}

// StockLedger reserves and releases product stock.
type StockLedger interface {
	Reserve(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error
	Release(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error
}

// OrderWriter persists the committed order with its lines.
type OrderWriter interface {
	Create(ctx context.Context, order *models.Order) error
}

// Stores bundles the collaborators checkout touches, all bound to the same
// database handle so a transaction covers them together.
type Stores struct {
	Products  ProductSource
	Discounts DiscountStore
	Ledger    StockLedger
	Orders    OrderWriter
}

// StoreBinder produces Stores bound to a transaction. Bind(nil) returns
// stores over the base connection for read-only work.
type StoreBinder interface {
	Bind(tx *gorm.DB) Stores
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GormStores is the production StoreBinder over the shared GORM client.
type GormStores struct {
	conn *gorm.DB
}

func NewGormStores(client *db.Client) *GormStores {
	return &GormStores{conn: client.DB()}
}

func (g *GormStores) Bind(tx *gorm.DB) Stores {
	conn := g.conn
	if tx != nil {
		conn = tx
	}
	return Stores{
		Products:  products.NewRepository(conn),
		Discounts: discounts.NewRepository(conn),
		Ledger:    inventory.NewLedger(conn),
		Orders:    orders.NewRepository(conn),
	}
}
