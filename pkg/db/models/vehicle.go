package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a tenant catalog entry. The catalog is maintained elsewhere; this
// service only reads it.
type Vehicle struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	TenantID   uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name       string     `gorm:"column:name;not null"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid"`
	IsActive   bool       `gorm:"column:is_active;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
