package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
)

// DeliveryPricingDTO is the API shape of a delivery pair.
type DeliveryPricingDTO struct {
	ID                   uuid.UUID       `json:"id"`
	LocationID           uuid.UUID       `json:"location_id"`
	DeliveryLocationID   uuid.UUID       `json:"delivery_location_id"`
	DeliveryLocationName string          `json:"delivery_location_name,omitempty"`
	Distance             decimal.Decimal `json:"distance"`
	Fee                  decimal.Decimal `json:"fee"`
	IsActive             bool            `json:"is_active"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ResolveResult carries a fee lookup. Found is false when no active pair exists.
type ResolveResult struct {
	Found bool                `json:"found"`
	Row   *DeliveryPricingDTO `json:"row,omitempty"`
}

// UpsertInput writes one directional pair. IsActive defaults to true.
type UpsertInput struct {
	LocationID         uuid.UUID
	DeliveryLocationID uuid.UUID
	Distance           decimal.Decimal
	Fee                decimal.Decimal
	IsActive           *bool
}

// BulkRow is one destination of a bulk upsert from a fixed origin.
type BulkRow struct {
	DeliveryLocationID uuid.UUID
	Distance           decimal.Decimal
	Fee                decimal.Decimal
	IsActive           *bool
}

// BulkUpsertInput writes many pairs sharing one origin.
type BulkUpsertInput struct {
	LocationID uuid.UUID
	Rows       []BulkRow
	Strict     bool
	DryRun     bool
}

const (
	SkipUnknownLocation = "unknown_location"
	SkipSameLocation    = "same_location"
	SkipNegativeValue   = "negative_value"
	SkipDuplicateKey    = "duplicate_key"
)

// SkippedRow identifies a rejected bulk row by its request position.
type SkippedRow struct {
	Index              int       `json:"index"`
	DeliveryLocationID uuid.UUID `json:"delivery_location_id"`
	Reason             string    `json:"reason"`
}

// BulkResult reports a bulk upsert.
type BulkResult struct {
	Upserted int          `json:"upserted"`
	Skipped  []SkippedRow `json:"skipped"`
	DryRun   bool         `json:"dry_run"`
}

// DeliveryRow is a pair joined with its destination name.
type DeliveryRow struct {
	models.LocationDeliveryPricing
	DeliveryLocationName string
}

// FromModel maps a persisted pair.
func FromModel(m *models.LocationDeliveryPricing) DeliveryPricingDTO {
	return DeliveryPricingDTO{
		ID:                 m.ID,
		LocationID:         m.LocationID,
		DeliveryLocationID: m.DeliveryLocationID,
		Distance:           m.Distance,
		Fee:                m.Fee,
		IsActive:           m.IsActive,
		UpdatedAt:          m.UpdatedAt,
	}
}
