package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. Stock is mutated only by the
// inventory ledger and never goes negative.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_products_tenant_sku"`
	SKU         string          `gorm:"column:sku;not null;uniqueIndex:idx_products_tenant_sku"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[]"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
