package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/carhire-backend/api/responses"
	"github.com/angelmondragon/carhire-backend/api/validators"
	"github.com/angelmondragon/carhire-backend/internal/quotes"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
)

// QuoteComposer prices a rental end to end.
type QuoteComposer interface {
	Compose(ctx context.Context, tenantID uuid.UUID, req quotes.QuoteRequest) (*quotes.Breakdown, error)
}

type quoteRequest struct {
	VehicleID         uuid.UUID  `json:"vehicle_id" validate:"required"`
	PickupLocationID  uuid.UUID  `json:"pickup_location_id" validate:"required"`
	DropLocationID    *uuid.UUID `json:"drop_location_id,omitempty"`
	VehicleCategoryID *uuid.UUID `json:"vehicle_category_id,omitempty"`
	PickupDate        string     `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	RentalDays        int        `json:"rental_days" validate:"min=1"`
}

// QuoteCreate composes a full price breakdown for a rental.
func QuoteCreate(composer QuoteComposer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if composer == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("quote"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pickup, err := parseDate("pickup_date", payload.PickupDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := quotes.QuoteRequest{
			VehicleID:         payload.VehicleID,
			PickupLocationID:  payload.PickupLocationID,
			VehicleCategoryID: payload.VehicleCategoryID,
			PickupDate:        pickup,
			RentalDays:        payload.RentalDays,
		}
		if payload.DropLocationID != nil {
			req.DropLocationID = *payload.DropLocationID
		}

		breakdown, err := composer.Compose(r.Context(), tenantID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, breakdown)
	}
}
