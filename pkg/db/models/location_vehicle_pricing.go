package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/pkg/enums"
)

// LocationVehiclePricing is one cell of the pricing matrix. Price is the total
// for a rental whose length falls in DayRange, picked up in Month.
type LocationVehiclePricing struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	LocationID uuid.UUID       `gorm:"column:location_id;type:uuid;not null;uniqueIndex:uq_location_vehicle_pricing,priority:1"`
	VehicleID  uuid.UUID       `gorm:"column:vehicle_id;type:uuid;not null;uniqueIndex:uq_location_vehicle_pricing,priority:2"`
	Month      int             `gorm:"column:month;not null;uniqueIndex:uq_location_vehicle_pricing,priority:3"`
	DayRange   enums.DayRange  `gorm:"column:day_range;type:text;not null;uniqueIndex:uq_location_vehicle_pricing,priority:4"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Discount   decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	MinDays    int             `gorm:"column:min_days;not null;default:0"`
	IsActive   bool            `gorm:"column:is_active;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (LocationVehiclePricing) TableName() string {
	return "location_vehicle_pricing"
}
