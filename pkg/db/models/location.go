package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/carhire-backend/pkg/enums"
)

// Location is a pickup/drop point. Locations form a two-level hierarchy:
// a child's parent is always a top-level location of the same tenant.
type Location struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null;index"`
	ParentID     *uuid.UUID         `gorm:"column:parent_id;type:uuid;index"`
	Name         string             `gorm:"column:name;not null"`
	Type         enums.LocationType `gorm:"column:type;type:text;not null"`
	SortOrder    int                `gorm:"column:sort_order;not null;default:0"`
	DeliveryFee  decimal.Decimal    `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	DropFee      decimal.Decimal    `gorm:"column:drop_fee;type:numeric(12,2);not null;default:0"`
	MinDays      int                `gorm:"column:min_days;not null;default:0"`
	CurrencyCode string             `gorm:"column:currency_code;type:char(3);not null;default:'EUR'"`
	IsActive     bool               `gorm:"column:is_active;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt     `gorm:"column:deleted_at;index"`

	Translations []LocationTranslation `gorm:"foreignKey:LocationID"`
}

// LocationTranslation is a read-only localized label for a location.
type LocationTranslation struct {
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;primaryKey"`
	Language   string    `gorm:"column:language;primaryKey"`
	Name       string    `gorm:"column:name;not null"`
}

// IsTopLevel reports whether the location has no parent.
func (l Location) IsTopLevel() bool {
	return l.ParentID == nil
}
