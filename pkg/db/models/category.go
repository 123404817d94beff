package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products within a tenant's catalog.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_categories_tenant_name"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_categories_tenant_name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
