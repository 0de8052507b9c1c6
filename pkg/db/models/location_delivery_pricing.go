package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocationDeliveryPricing is the fee for delivering from an origin location to a
// destination. Pairs are directional; (A,B) and (B,A) are independent rows.
type LocationDeliveryPricing struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	LocationID         uuid.UUID       `gorm:"column:location_id;type:uuid;not null;uniqueIndex:uq_location_delivery_pricing,priority:1"`
	DeliveryLocationID uuid.UUID       `gorm:"column:delivery_location_id;type:uuid;not null;uniqueIndex:uq_location_delivery_pricing,priority:2"`
	Distance           decimal.Decimal `gorm:"column:distance;type:numeric(10,2);not null;default:0"`
	Fee                decimal.Decimal `gorm:"column:fee;type:numeric(12,2);not null;default:0"`
	IsActive           bool            `gorm:"column:is_active;not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (LocationDeliveryPricing) TableName() string {
	return "location_delivery_pricing"
}
