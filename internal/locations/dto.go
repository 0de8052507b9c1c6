package locations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
)

// LocationDTO is the API shape of a location. Name is localized when a
// translation exists for the requested language.
type LocationDTO struct {
	ID           uuid.UUID          `json:"id"`
	ParentID     *uuid.UUID         `json:"parent_id,omitempty"`
	Name         string             `json:"name"`
	DefaultName  string             `json:"default_name"`
	Type         enums.LocationType `json:"type"`
	SortOrder    int                `json:"sort_order"`
	DeliveryFee  decimal.Decimal    `json:"delivery_fee"`
	DropFee      decimal.Decimal    `json:"drop_fee"`
	MinDays      int                `json:"min_days"`
	CurrencyCode string             `json:"currency_code"`
	IsActive     bool               `json:"is_active"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ListFilter narrows List. ParentID and TopLevelOnly are mutually exclusive;
// ParentID wins when both are set.
type ListFilter struct {
	ParentID     *uuid.UUID
	TopLevelOnly bool
	Language     string
	Active       *bool
}

// CreateLocationInput captures the fields accepted on create.
type CreateLocationInput struct {
	ParentID     *uuid.UUID
	Name         string
	Type         enums.LocationType
	SortOrder    int
	DeliveryFee  decimal.Decimal
	DropFee      decimal.Decimal
	MinDays      int
	CurrencyCode string
	IsActive     *bool
}

// UpdateLocationInput carries optional changes. ClearParent promotes the
// location to top level and takes precedence over ParentID.
type UpdateLocationInput struct {
	ParentID     *uuid.UUID
	ClearParent  bool
	Name         *string
	Type         *enums.LocationType
	SortOrder    *int
	DeliveryFee  *decimal.Decimal
	DropFee      *decimal.Decimal
	MinDays      *int
	CurrencyCode *string
	IsActive     *bool
}

// FromModel maps a persisted location; label overrides the name when set.
func FromModel(m *models.Location, label string) LocationDTO {
	dto := LocationDTO{
		ID:           m.ID,
		ParentID:     m.ParentID,
		Name:         m.Name,
		DefaultName:  m.Name,
		Type:         m.Type,
		SortOrder:    m.SortOrder,
		DeliveryFee:  m.DeliveryFee,
		DropFee:      m.DropFee,
		MinDays:      m.MinDays,
		CurrencyCode: m.CurrencyCode,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if label != "" {
		dto.Name = label
	}
	return dto
}
