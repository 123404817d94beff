package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelarsoft/shoplane-backend/pkg/enums"
)

// Order is created exactly once by the checkout transaction together with
// all of its lines; FinalAmount = Subtotal - DiscountAmount >= 0.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index"`
	CustomerID     *uuid.UUID        `gorm:"column:customer_id;type:uuid"`
	Subtotal       decimal.Decimal   `gorm:"column:subtotal;type:numeric(14,2);not null"`
	DiscountAmount decimal.Decimal   `gorm:"column:discount_amount;type:numeric(14,2);not null"`
	FinalAmount    decimal.Decimal   `gorm:"column:final_amount;type:numeric(14,2);not null"`
	AppliedCode    *string           `gorm:"column:applied_code"`
	DiscountCodeID *uuid.UUID        `gorm:"column:discount_code_id;type:uuid"`
	Status         enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Items          []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
