package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents an isolated shop partition. Every domain row carries a
// tenant id and every query is filtered by it.
type Tenant struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	ContactEmail *string   `gorm:"column:contact_email"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
