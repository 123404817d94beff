package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountCode grants a flat deduction within its validity window. UsedCount
// is mutated only by the checkout path via a conditional increment and never
// exceeds UsageLimit when one is set.
type DiscountCode struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_discount_codes_tenant_code"`
	Code       string          `gorm:"column:code;not null;uniqueIndex:idx_discount_codes_tenant_code"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	StartsAt   time.Time       `gorm:"column:starts_at;not null"`
	EndsAt     time.Time       `gorm:"column:ends_at;not null"`
	UsageLimit *int            `gorm:"column:usage_limit"`
	UsedCount  int             `gorm:"column:used_count;not null;default:0"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
