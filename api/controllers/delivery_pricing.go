package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/api/responses"
	"github.com/angelmondragon/carhire-backend/api/validators"
	"github.com/angelmondragon/carhire-backend/internal/delivery"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
)

// DeliveryPricingList returns every fee configured from one origin.
func DeliveryPricingList(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery pricing"))
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

		rows, err := svc.ListByLocation(r.Context(), tenantID, locationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// DeliveryPricingResolve reports the fee between two locations. A missing
// pair is not an error; the response carries found=false.
func DeliveryPricingResolve(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		originID, err := validators.RequireQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		destinationID, err := validators.RequireQueryUUID(r, "delivery_location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Resolve(r.Context(), tenantID, originID, destinationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type deliveryUpsertRequest struct {
	LocationID         uuid.UUID       `json:"location_id" validate:"required"`
	DeliveryLocationID uuid.UUID       `json:"delivery_location_id" validate:"required"`
	Distance           decimal.Decimal `json:"distance"`
	Fee                decimal.Decimal `json:"fee"`
	IsActive           *bool           `json:"is_active,omitempty"`
}

// DeliveryPricingUpsert writes one directional pair.
func DeliveryPricingUpsert(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deliveryUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Upsert(r.Context(), tenantID, delivery.UpsertInput{
			LocationID:         payload.LocationID,
			DeliveryLocationID: payload.DeliveryLocationID,
			Distance:           payload.Distance,
			Fee:                payload.Fee,
			IsActive:           payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

type deliveryBulkRow struct {
	DeliveryLocationID uuid.UUID       `json:"delivery_location_id"`
	Distance           decimal.Decimal `json:"distance"`
	Fee                decimal.Decimal `json:"fee"`
	IsActive           *bool           `json:"is_active,omitempty"`
}

type deliveryBulkRequest struct {
	LocationID uuid.UUID         `json:"location_id" validate:"required"`
	Rows       []deliveryBulkRow `json:"rows" validate:"required,min=1"`
	Strict     bool              `json:"strict"`
	DryRun     bool              `json:"dry_run"`
}

// DeliveryPricingBulkUpsert writes many destinations for one origin.
func DeliveryPricingBulkUpsert(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("delivery pricing"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deliveryBulkRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := delivery.BulkUpsertInput{
			LocationID: payload.LocationID,
			Strict:     payload.Strict,
			DryRun:     payload.DryRun,
			Rows:       make([]delivery.BulkRow, 0, len(payload.Rows)),
		}
		for _, row := range payload.Rows {
			input.Rows = append(input.Rows, delivery.BulkRow{
				DeliveryLocationID: row.DeliveryLocationID,
				Distance:           row.Distance,
				Fee:                row.Fee,
				IsActive:           row.IsActive,
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
