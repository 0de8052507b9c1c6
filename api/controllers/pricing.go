package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/api/responses"
	"github.com/angelmondragon/carhire-backend/api/validators"
	"github.com/angelmondragon/carhire-backend/internal/pricing"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
)

// PricingList returns the matrix of one location and month.
func PricingList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		locationID, err := validators.RequireQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.RequireQueryInt(r, "month", 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), tenantID, locationID, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// PricingResolve looks up the active price for a rental. The tier comes from
// ?day_range or is derived from ?rental_days.
func PricingResolve(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := pricing.PricingLookupKey{}
		if key.LocationID, err = validators.RequireQueryUUID(r, "location_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if key.VehicleID, err = validators.RequireQueryUUID(r, "vehicle_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if key.Month, err = validators.RequireQueryInt(r, "month", 1, 12); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("day_range")); raw != "" {
			key.DayRange = enums.DayRange(raw)
		} else {
			days, err := validators.RequireQueryInt(r, "rental_days", 1, 100000)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if key.DayRange, err = pricing.ClassifyRentalDays(days); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		row, err := svc.Resolve(r.Context(), tenantID, key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

type pricingUpsertRequest struct {
	LocationID uuid.UUID       `json:"location_id" validate:"required"`
	VehicleID  uuid.UUID       `json:"vehicle_id" validate:"required"`
	Month      int             `json:"month" validate:"min=1,max=12"`
	DayRange   enums.DayRange  `json:"day_range" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	Discount   decimal.Decimal `json:"discount"`
	MinDays    int             `json:"min_days"`
	IsActive   *bool           `json:"is_active,omitempty"`
}

// PricingUpsert writes one matrix cell.
func PricingUpsert(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload pricingUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Upsert(r.Context(), tenantID, pricing.UpsertInput{
			LocationID: payload.LocationID,
			VehicleID:  payload.VehicleID,
			Month:      payload.Month,
			DayRange:   payload.DayRange,
			Price:      payload.Price,
			Discount:   payload.Discount,
			MinDays:    payload.MinDays,
			IsActive:   payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

type pricingBulkRow struct {
	VehicleID uuid.UUID       `json:"vehicle_id"`
	DayRange  enums.DayRange  `json:"day_range"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	MinDays   int             `json:"min_days"`
	IsActive  *bool           `json:"is_active,omitempty"`
}

type pricingBulkRequest struct {
	LocationID uuid.UUID        `json:"location_id" validate:"required"`
	Month      int              `json:"month" validate:"min=1,max=12"`
	Pricings   []pricingBulkRow `json:"pricings" validate:"required,min=1"`
	Strict     bool             `json:"strict"`
	DryRun     bool             `json:"dry_run"`
}

// PricingBulkUpsert writes many cells of one location and month. Rows that
// cannot be written are reported back instead of failing the batch unless
// strict is set.
func PricingBulkUpsert(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload pricingBulkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := pricing.BulkUpsertInput{
			LocationID: payload.LocationID,
			Month:      payload.Month,
			Strict:     payload.Strict,
			DryRun:     payload.DryRun,
			Rows:       make([]pricing.BulkRow, 0, len(payload.Pricings)),
		}
		for _, row := range payload.Pricings {
			input.Rows = append(input.Rows, pricing.BulkRow{
				VehicleID: row.VehicleID,
				DayRange:  row.DayRange,
				Price:     row.Price,
				Discount:  row.Discount,
				MinDays:   row.MinDays,
				IsActive:  row.IsActive,
			})
		}

		result, err := svc.BulkUpsert(r.Context(), tenantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type pricingBulkCopyRequest struct {
	LocationID      uuid.UUID        `json:"location_id" validate:"required"`
	SourceVehicleID uuid.UUID        `json:"source_vehicle_id" validate:"required"`
	SourceMonth     int              `json:"source_month" validate:"omitempty,min=1,max=12"`
	DayRange        enums.DayRange   `json:"day_range" validate:"required"`
	Price           *decimal.Decimal `json:"price,omitempty"`
}

// PricingBulkCopy applies one tier price to every active vehicle and month of
// a location.
func PricingBulkCopy(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload pricingBulkCopyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkCopy(r.Context(), tenantID, pricing.BulkCopyInput{
			LocationID:      payload.LocationID,
			SourceVehicleID: payload.SourceVehicleID,
			SourceMonth:     payload.SourceMonth,
			DayRange:        payload.DayRange,
			Price:           payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PricingRemove deletes every row of one location and month.
func PricingRemove(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		locationID, err := validators.RequireQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.RequireQueryInt(r, "month", 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		removed, err := svc.RemoveByLocationAndMonth(r.Context(), tenantID, locationID, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"removed": removed})
	}
}
