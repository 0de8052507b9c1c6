package campaigns

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
)

// DateLayout is the wire format of campaign dates.
const DateLayout = "2006-01-02"

// CampaignDTO is the API shape of a campaign.
type CampaignDTO struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	StartDate         string             `json:"start_date"`
	EndDate           string             `json:"end_date"`
	DiscountType      enums.DiscountType `json:"discount_type"`
	DiscountValue     decimal.Decimal    `json:"discount_value"`
	LocationID        *uuid.UUID         `json:"location_id,omitempty"`
	VehicleID         *uuid.UUID         `json:"vehicle_id,omitempty"`
	VehicleCategoryID *uuid.UUID         `json:"vehicle_category_id,omitempty"`
	MinRentalDays     int                `json:"min_rental_days"`
	IsActive          bool               `json:"is_active"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// CampaignInput is the full writable state of a campaign. Update replaces
// every field.
type CampaignInput struct {
	Name              string
	StartDate         time.Time
	EndDate           time.Time
	DiscountType      enums.DiscountType
	DiscountValue     decimal.Decimal
	LocationID        *uuid.UUID
	VehicleID         *uuid.UUID
	VehicleCategoryID *uuid.UUID
	MinRentalDays     int
	IsActive          *bool
}

// MatchCandidate describes the rental a campaign has to cover.
type MatchCandidate struct {
	LocationID        uuid.UUID
	VehicleID         uuid.UUID
	VehicleCategoryID *uuid.UUID
	PickupDate        time.Time
	RentalDays        int
}

// CheckInput asks which campaigns apply. Without BasePrice the price is
// resolved from the pricing matrix.
type CheckInput struct {
	Candidate MatchCandidate
	BasePrice *decimal.Decimal
}

// DiscountDTO is the effect of one campaign on a base price.
type DiscountDTO struct {
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
}

// CheckResult lists every applicable campaign and the one that would win.
type CheckResult struct {
	ApplicableCampaigns []CampaignDTO    `json:"applicable_campaigns"`
	BestCampaign        *CampaignDTO     `json:"best_campaign"`
	Discount            *DiscountDTO     `json:"discount,omitempty"`
	BasePrice           *decimal.Decimal `json:"base_price,omitempty"`
}

// QuoteInput prices a campaign discount against a known base.
type QuoteInput struct {
	Candidate MatchCandidate
	BasePrice decimal.Decimal
}

// CampaignQuote is a base price with the best campaign applied.
type CampaignQuote struct {
	BasePrice         decimal.Decimal `json:"base_price"`
	CampaignDiscount  decimal.Decimal `json:"campaign_discount"`
	FinalPrice        decimal.Decimal `json:"final_price"`
	AppliedCampaignID *uuid.UUID      `json:"applied_campaign_id"`
}

// FromModel maps a persisted campaign.
func FromModel(m *models.Campaign) CampaignDTO {
	return CampaignDTO{
		ID:                m.ID,
		Name:              m.Name,
		StartDate:         m.StartDate.Format(DateLayout),
		EndDate:           m.EndDate.Format(DateLayout),
		DiscountType:      m.DiscountType,
		DiscountValue:     m.DiscountValue,
		LocationID:        m.LocationID,
		VehicleID:         m.VehicleID,
		VehicleCategoryID: m.VehicleCategoryID,
		MinRentalDays:     m.MinRentalDays,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
