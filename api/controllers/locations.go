package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/api/responses"
	"github.com/angelmondragon/carhire-backend/api/validators"
	"github.com/angelmondragon/carhire-backend/internal/locations"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
	"github.com/angelmondragon/carhire-backend/pkg/types"
)

// LocationList returns the tenant's locations, optionally narrowed to one
// parent or to the top level.
func LocationList(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("location"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		parentID, err := validators.ParseQueryUUID(r, "parent_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		topLevel, err := validators.ParseQueryBool(r, "top_level")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := locations.ListFilter{
			ParentID: parentID,
			Language: strings.TrimSpace(r.URL.Query().Get("language")),
			Active:   active,
		}
		if topLevel != nil {
			filter.TopLevelOnly = *topLevel
		}

		list, err := svc.List(r.Context(), tenantID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// LocationGet returns one location, localized when ?language is given.
func LocationGet(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("location"))
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

		loc, err := svc.GetByID(r.Context(), tenantID, id, strings.TrimSpace(r.URL.Query().Get("language")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loc)
	}
}

type locationCreateRequest struct {
	ParentID     *uuid.UUID         `json:"parent_id,omitempty"`
	Name         string             `json:"name" validate:"required,max=200"`
	Type         enums.LocationType `json:"type" validate:"required,oneof=province office hotel airport address"`
	SortOrder    int                `json:"sort_order"`
	DeliveryFee  decimal.Decimal    `json:"delivery_fee"`
	DropFee      decimal.Decimal    `json:"drop_fee"`
	MinDays      int                `json:"min_days" validate:"gte=0"`
	CurrencyCode string             `json:"currency_code" validate:"omitempty,len=3"`
	IsActive     *bool              `json:"is_active,omitempty"`
}

func (r locationCreateRequest) toInput() locations.CreateLocationInput {
	return locations.CreateLocationInput{
		ParentID:     r.ParentID,
		Name:         strings.TrimSpace(r.Name),
		Type:         r.Type,
		SortOrder:    r.SortOrder,
		DeliveryFee:  r.DeliveryFee,
		DropFee:      r.DropFee,
		MinDays:      r.MinDays,
		CurrencyCode: strings.ToUpper(strings.TrimSpace(r.CurrencyCode)),
		IsActive:     r.IsActive,
	}
}

// LocationCreate adds a location to the tenant.
func LocationCreate(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("location"))
			return
		}
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload locationCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		loc, err := svc.Create(r.Context(), tenantID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, loc)
	}
}

// locationUpdateRequest treats an explicit "parent_id": null as a request to
// move the location to the top level.
type locationUpdateRequest struct {
	ParentID     types.NullableUUID  `json:"parent_id,omitempty"`
	Name         *string             `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Type         *enums.LocationType `json:"type,omitempty" validate:"omitempty,oneof=province office hotel airport address"`
	SortOrder    *int                `json:"sort_order,omitempty"`
	DeliveryFee  *decimal.Decimal    `json:"delivery_fee,omitempty"`
	DropFee      *decimal.Decimal    `json:"drop_fee,omitempty"`
	MinDays      *int                `json:"min_days,omitempty" validate:"omitempty,gte=0"`
	CurrencyCode *string             `json:"currency_code,omitempty" validate:"omitempty,len=3"`
	IsActive     *bool               `json:"is_active,omitempty"`
}

func (r locationUpdateRequest) toInput() locations.UpdateLocationInput {
	input := locations.UpdateLocationInput{
		Name:         r.Name,
		Type:         r.Type,
		SortOrder:    r.SortOrder,
		DeliveryFee:  r.DeliveryFee,
		DropFee:      r.DropFee,
		MinDays:      r.MinDays,
		CurrencyCode: r.CurrencyCode,
		IsActive:     r.IsActive,
	}
	if r.ParentID.Valid {
		if r.ParentID.Value == nil {
			input.ClearParent = true
		} else {
			input.ParentID = r.ParentID.Value
		}
	}
	if input.CurrencyCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.CurrencyCode))
		input.CurrencyCode = &code
	}
	return input
}

// LocationUpdate applies a partial update.
func LocationUpdate(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("location"))
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

		var payload locationUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		loc, err := svc.Update(r.Context(), tenantID, id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loc)
	}
}

// LocationDelete soft-deletes a location without active children.
func LocationDelete(svc locations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("location"))
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

		if err := svc.Delete(r.Context(), tenantID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
