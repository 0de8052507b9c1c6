package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/carhire-backend/pkg/enums"
)

// QuoteRequest describes a rental to price.
type QuoteRequest struct {
	VehicleID         uuid.UUID
	PickupLocationID  uuid.UUID
	DropLocationID    uuid.UUID
	VehicleCategoryID *uuid.UUID
	PickupDate        time.Time
	RentalDays        int
}

// Breakdown is a composed quote. It is computed per request and never stored.
type Breakdown struct {
	BasePrice         decimal.Decimal `json:"base_price"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee"`
	CampaignDiscount  decimal.Decimal `json:"campaign_discount"`
	FinalPrice        decimal.Decimal `json:"final_price"`
	AppliedCampaignID *uuid.UUID      `json:"applied_campaign_id"`
	DayRange          enums.DayRange  `json:"day_range"`
	Month             int             `json:"month"`
	MinDays           int             `json:"min_days"`
	CurrencyCode      string          `json:"currency_code"`
}
