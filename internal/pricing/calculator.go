// Package pricing computes order totals. The calculator is a pure function:
// no I/O, deterministic, and all arithmetic stays in fixed-point decimals so
// preview and checkout agree on price for the same cart and code.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a single cart entry priced at the current catalog unit price.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// Breakdown is the computed totals for a cart. FinalAmount is always
// Subtotal - DiscountAmount and never negative.
type Breakdown struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
}

// Compute totals the lines and applies a flat discount, clamped so the
// deduction never exceeds the subtotal.
func Compute(lines []Line, discountAmount decimal.Decimal) Breakdown {
	subtotal := decimal.Zero
	for _, line := range lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
	}

	discount := discountAmount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return Breakdown{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		FinalAmount:    subtotal.Sub(discount),
	}
}

// LineTotal returns the snapshot total for one line.
func LineTotal(line Line) decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}
