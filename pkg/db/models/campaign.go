package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/pkg/enums"
)

// Campaign is a time-bounded discount rule. Nil scope fields match everything.
type Campaign struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	TenantID          uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name              string             `gorm:"column:name;not null"`
	StartDate         time.Time          `gorm:"column:start_date;type:date;not null"`
	EndDate           time.Time          `gorm:"column:end_date;type:date;not null"`
	DiscountType      enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue     decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	LocationID        *uuid.UUID         `gorm:"column:location_id;type:uuid"`
	VehicleID         *uuid.UUID         `gorm:"column:vehicle_id;type:uuid"`
	VehicleCategoryID *uuid.UUID         `gorm:"column:vehicle_category_id;type:uuid"`
	MinRentalDays     int                `gorm:"column:min_rental_days;not null;default:0"`
	IsActive          bool               `gorm:"column:is_active;not null"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
