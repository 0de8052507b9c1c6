package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
)

// PricingLookupKey addresses exactly one cell of the pricing matrix.
type PricingLookupKey struct {
	LocationID uuid.UUID
	VehicleID  uuid.UUID
	Month      int
	DayRange   enums.DayRange
}

// PricingDTO is the API shape of a matrix row.
type PricingDTO struct {
	ID          uuid.UUID       `json:"id"`
	LocationID  uuid.UUID       `json:"location_id"`
	VehicleID   uuid.UUID       `json:"vehicle_id"`
	VehicleName string          `json:"vehicle_name,omitempty"`
	Month       int             `json:"month"`
	DayRange    enums.DayRange  `json:"day_range"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	MinDays     int             `json:"min_days"`
	IsActive    bool            `json:"is_active"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UpsertInput writes one matrix cell. IsActive defaults to true.
type UpsertInput struct {
	LocationID uuid.UUID
	VehicleID  uuid.UUID
	Month      int
	DayRange   enums.DayRange
	Price      decimal.Decimal
	Discount   decimal.Decimal
	MinDays    int
	IsActive   *bool
}

// BulkRow is one entry of a bulk upsert for a fixed location and month.
type BulkRow struct {
	VehicleID uuid.UUID
	DayRange  enums.DayRange
	Price     decimal.Decimal
	Discount  decimal.Decimal
	MinDays   int
	IsActive  *bool
}

// BulkUpsertInput writes many cells of one location and month. Strict rejects
// the batch when any row would be skipped; DryRun only reports.
type BulkUpsertInput struct {
	LocationID uuid.UUID
	Month      int
	Rows       []BulkRow
	Strict     bool
	DryRun     bool
}

// Skip reasons reported by bulk operations.
const (
	SkipUnknownVehicle  = "unknown_vehicle"
	SkipInvalidDayRange = "invalid_day_range"
	SkipNegativeValue   = "negative_value"
	SkipDuplicateKey    = "duplicate_key"
)

// SkippedRow identifies a rejected bulk row by its position in the request.
type SkippedRow struct {
	Index     int            `json:"index"`
	VehicleID uuid.UUID      `json:"vehicle_id"`
	DayRange  enums.DayRange `json:"day_range"`
	Reason    string         `json:"reason"`
}

// BulkResult reports what a bulk call wrote (or would write on a dry run).
type BulkResult struct {
	Upserted int          `json:"upserted"`
	Skipped  []SkippedRow `json:"skipped"`
	DryRun   bool         `json:"dry_run"`
}

// BulkCopyInput sets one tier's price for every active vehicle and month of a
// location. When Price is nil the source row's price is used.
type BulkCopyInput struct {
	LocationID      uuid.UUID
	SourceVehicleID uuid.UUID
	SourceMonth     int
	DayRange        enums.DayRange
	Price           *decimal.Decimal
}

// BulkCopyResult summarizes a bulk copy.
type BulkCopyResult struct {
	Upserted int             `json:"upserted"`
	Vehicles int             `json:"vehicles"`
	Months   int             `json:"months"`
	Price    decimal.Decimal `json:"price"`
}

// PricingRow is a matrix row joined with its vehicle name.
type PricingRow struct {
	models.LocationVehiclePricing
	VehicleName string
}

// FromModel maps a persisted matrix row.
func FromModel(m *models.LocationVehiclePricing) PricingDTO {
	return PricingDTO{
		ID:         m.ID,
		LocationID: m.LocationID,
		VehicleID:  m.VehicleID,
		Month:      m.Month,
		DayRange:   m.DayRange,
		Price:      m.Price,
		Discount:   m.Discount,
		MinDays:    m.MinDays,
		IsActive:   m.IsActive,
		UpdatedAt:  m.UpdatedAt,
	}
}
