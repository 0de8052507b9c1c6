package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/carhire-backend/internal/campaigns"
	"github.com/angelmondragon/carhire-backend/internal/delivery"
	"github.com/angelmondragon/carhire-backend/internal/locations"
	"github.com/angelmondragon/carhire-backend/internal/pricing"
	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
	"github.com/angelmondragon/carhire-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultTimeout = 3 * time.Second

type priceResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, key pricing.PricingLookupKey) (*pricing.PricingDTO, error)
}

type deliveryResolver interface {
	Resolve(ctx context.Context, tenantID, originID, destinationID uuid.UUID) (delivery.ResolveResult, error)
}

type campaignFinder interface {
	FindApplicable(ctx context.Context, tenantID uuid.UUID, cand campaigns.MatchCandidate) ([]models.Campaign, error)
}

type locationReader interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID, language string) (*locations.LocationDTO, error)
}

type vehicleLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error)
}

// Options carries the composer's optional collaborators.
type Options struct {
	Timeout time.Duration
	Metrics *metrics.QuoteMetrics
	Logger  *logger.Logger
}

// Composer turns a rental request into a priced breakdown.
type Composer struct {
	prices    priceResolver
	delivery  deliveryResolver
	campaigns campaignFinder
	locations locationReader
	vehicles  vehicleLookup
	timeout   time.Duration
	metrics   *metrics.QuoteMetrics
	logg      *logger.Logger
}

// NewComposer wires a composer. A zero timeout falls back to DefaultTimeout.
func NewComposer(prices priceResolver, deliveryFees deliveryResolver, finder campaignFinder, locs locationReader, vehicles vehicleLookup, opts Options) (*Composer, error) {
	if prices == nil || deliveryFees == nil || finder == nil || locs == nil || vehicles == nil {
		return nil, fmt.Errorf("quote composer requires pricing, delivery, campaign, location and vehicle sources")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Composer{
		prices:    prices,
		delivery:  deliveryFees,
		campaigns: finder,
		locations: locs,
		vehicles:  vehicles,
		timeout:   timeout,
		metrics:   opts.Metrics,
		logg:      opts.Logger,
	}, nil
}

// Compose prices req for the tenant. The whole pipeline shares one deadline;
// overrunning it anywhere yields UPSTREAM_TIMEOUT.
func (c *Composer) Compose(ctx context.Context, tenantID uuid.UUID, req QuoteRequest) (*Breakdown, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.compose(ctx, tenantID, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = pkgerrors.Wrap(pkgerrors.CodeUpstreamTimeout, err, "quote composition timed out")
	}
	c.observe(ctx, err, time.Since(start))
	return out, err
}

func (c *Composer) compose(ctx context.Context, tenantID uuid.UUID, req QuoteRequest) (*Breakdown, error) {
	if req.PickupDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup_date is required").
			WithDetails(map[string]any{"field": "pickup_date"})
	}
	tier, err := pricing.ClassifyRentalDays(req.RentalDays)
	if err != nil {
		return nil, err
	}
	month := int(req.PickupDate.Month())

	row, err := c.prices.Resolve(ctx, tenantID, pricing.PricingLookupKey{
		LocationID: req.PickupLocationID,
		VehicleID:  req.VehicleID,
		Month:      month,
		DayRange:   tier,
	})
	if err != nil {
		return nil, err
	}
	if req.RentalDays < row.MinDays {
		return nil, pkgerrors.New(pkgerrors.CodeMinimumDaysNotMet,
			fmt.Sprintf("rental of %d days is below the minimum of %d", req.RentalDays, row.MinDays)).
			WithDetails(map[string]any{"rental_days": req.RentalDays, "min_days": row.MinDays})
	}

	deliveryFee := decimal.Zero
	if req.DropLocationID != uuid.Nil && req.DropLocationID != req.PickupLocationID {
		res, err := c.delivery.Resolve(ctx, tenantID, req.PickupLocationID, req.DropLocationID)
		if err != nil {
			return nil, err
		}
		if res.Found {
			deliveryFee = res.Row.Fee
		}
	}

	category := req.VehicleCategoryID
	if category == nil {
		vehicle, err := c.vehicles.FindByID(ctx, tenantID, req.VehicleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.MissingReference("vehicle_id", "vehicle")
			}
			return nil, pkgerrors.Dependency(err, "load vehicle")
		}
		category = vehicle.CategoryID
	}
	matched, err := c.campaigns.FindApplicable(ctx, tenantID, campaigns.MatchCandidate{
		LocationID:        req.PickupLocationID,
		VehicleID:         req.VehicleID,
		VehicleCategoryID: category,
		PickupDate:        req.PickupDate,
		RentalDays:        req.RentalDays,
	})
	if err != nil {
		return nil, err
	}

	pickup, err := c.locations.GetByID(ctx, tenantID, req.PickupLocationID, "")
	if err != nil {
		return nil, err
	}

	out := &Breakdown{
		BasePrice:        row.Price,
		DeliveryFee:      deliveryFee,
		CampaignDiscount: decimal.Zero,
		DayRange:         tier,
		Month:            month,
		MinDays:          row.MinDays,
		CurrencyCode:     pickup.CurrencyCode,
	}
	if best := campaigns.SelectBest(row.Price, matched); best != nil {
		id := best.Campaign.ID
		out.AppliedCampaignID = &id
		out.CampaignDiscount = best.Discount.DiscountAmount
	}
	out.FinalPrice = decimal.Max(decimal.Zero, out.BasePrice.Add(out.DeliveryFee).Sub(out.CampaignDiscount))
	return out, nil
}

func (c *Composer) observe(ctx context.Context, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil {
			outcome = strings.ToLower(string(typed.Code()))
		} else {
			outcome = "internal_error"
		}
	}
	c.metrics.Observe(outcome, elapsed)

	if err != nil && c.logg != nil && outcome == "upstream_timeout" {
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
			"elapsed_ms": elapsed.Milliseconds(),
			"timeout_ms": c.timeout.Milliseconds(),
		}), "quote composition timed out")
	}
}
