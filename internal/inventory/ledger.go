// Package inventory owns every stock mutation. Reservations and releases are
// single conditional UPDATE statements so stock can never be driven negative,
// regardless of how many checkouts race for the same product.
package inventory

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
)

// Ledger applies stock reservations and releases for one tenant's catalog.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(conn *gorm.DB) *Ledger {
	return &Ledger{db: conn}
}

// WithTx returns a ledger bound to the given transaction handle.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// StockShortage reports how far a reservation fell short. Attached as details
// to insufficient-stock errors so the response can name the product.
type StockShortage struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// Reserve deducts quantity from the product's stock if and only if enough is
// available. The availability check and the deduction are one statement; a
// zero-row result means either the product is missing or stock is short, and
// a follow-up read disambiguates the two.
func (l *Ledger) Reserve(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}

	res := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND tenant_id = ? AND stock >= ?", productID, tenantID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.CodeDependency, res.Error, "reserving stock")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	available, err := l.currentStock(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	return apperrors.New(apperrors.CodeInsufficientStock,
		fmt.Sprintf("product %s has %d in stock, %d requested", productID, available, quantity)).
		WithDetails(StockShortage{ProductID: productID, Requested: quantity, Available: available})
}

// Release returns previously reserved quantity to the product's stock. Used
// by checkout compensation and by order cancellation.
func (l *Ledger) Release(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}

	res := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND tenant_id = ?", productID, tenantID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.CodeDependency, res.Error, "releasing stock")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "product not found")
	}
	return nil
}

func (l *Ledger) currentStock(ctx context.Context, tenantID, productID uuid.UUID) (int, error) {
	var product models.Product
	err := l.db.WithContext(ctx).
		Select("id", "stock").
		Where("id = ? AND tenant_id = ?", productID, tenantID).
		First(&product).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return 0, apperrors.Wrap(apperrors.CodeDependency, err, "loading product stock")
	}
	return product.Stock, nil
}
