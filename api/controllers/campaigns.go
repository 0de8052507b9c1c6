package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/api/responses"
	"github.com/angelmondragon/carhire-backend/api/validators"
	"github.com/angelmondragon/carhire-backend/internal/campaigns"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
)

type campaignRequest struct {
	Name              string             `json:"name" validate:"required,max=200"`
	StartDate         string             `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           string             `json:"end_date" validate:"required,datetime=2006-01-02"`
	DiscountType      enums.DiscountType `json:"discount_type" validate:"required,oneof=percent fixed"`
	DiscountValue     decimal.Decimal    `json:"discount_value"`
	LocationID        *uuid.UUID         `json:"location_id,omitempty"`
	VehicleID         *uuid.UUID         `json:"vehicle_id,omitempty"`
	VehicleCategoryID *uuid.UUID         `json:"vehicle_category_id,omitempty"`
	MinRentalDays     int                `json:"min_rental_days" validate:"gte=0"`
	IsActive          *bool              `json:"is_active,omitempty"`
}

func (r campaignRequest) toInput() (campaigns.CampaignInput, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return campaigns.CampaignInput{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return campaigns.CampaignInput{}, err
	}
	return campaigns.CampaignInput{
		Name:              r.Name,
		StartDate:         start,
		EndDate:           end,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		LocationID:        r.LocationID,
		VehicleID:         r.VehicleID,
		VehicleCategoryID: r.VehicleCategoryID,
		MinRentalDays:     r.MinRentalDays,
		IsActive:          r.IsActive,
	}, nil
}

// rentalRequest is shared by check-applicable, where base_price is optional,
// and quote, where it is required.
type rentalRequest struct {
	PickupLocationID  uuid.UUID        `json:"pickup_location_id" validate:"required"`
	VehicleID         uuid.UUID        `json:"vehicle_id" validate:"required"`
	VehicleCategoryID *uuid.UUID       `json:"vehicle_category_id,omitempty"`
	PickupDate        string           `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	RentalDays        int              `json:"rental_days" validate:"min=1"`
	BasePrice         *decimal.Decimal `json:"base_price,omitempty"`
}

func (r rentalRequest) toCandidate() (campaigns.MatchCandidate, error) {
	pickup, err := parseDate("pickup_date", r.PickupDate)
	if err != nil {
		return campaigns.MatchCandidate{}, err
	}
	return campaigns.MatchCandidate{
		LocationID:        r.PickupLocationID,
		VehicleID:         r.VehicleID,
		VehicleCategoryID: r.VehicleCategoryID,
		PickupDate:        pickup,
		RentalDays:        r.RentalDays,
	}, nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(campaigns.DateLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").WithDetails(map[string]any{"field": field})
	}
	return t, nil
}

// CampaignList returns the tenant's campaigns, newest start date first.
func CampaignList(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("campaign"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), tenantID, active != nil && *active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CampaignGet(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("campaign"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.GetByID(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

func CampaignCreate(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("campaign"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload campaignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.Create(r.Context(), tenantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, c)
	}
}

// CampaignUpdate replaces every writable field of a campaign.
func CampaignUpdate(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("campaign"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload campaignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		c, err := svc.Update(r.Context(), tenantID, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, c)
	}
}

// CampaignDeactivate switches a campaign off; campaigns are never hard deleted.
func CampaignDeactivate(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("campaign"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), tenantID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CampaignCheckApplicable lists the campaigns covering a rental and the one
// that would be applied.
func CampaignCheckApplicable(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("campaign"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rentalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cand, err := payload.toCandidate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CheckApplicable(r.Context(), tenantID, campaigns.CheckInput{
			Candidate: cand,
			BasePrice: payload.BasePrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CampaignQuote applies the best campaign to a caller supplied base price.
func CampaignQuote(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("campaign"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rentalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.BasePrice == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{"base_price": "is required"}))
			return
		}
		cand, err := payload.toCandidate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), tenantID, campaigns.QuoteInput{
			Candidate: cand,
			BasePrice: *payload.BasePrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
