package campaigns

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/carhire-backend/internal/pricing"
	"github.com/angelmondragon/carhire-backend/pkg/db/models"
	"github.com/angelmondragon/carhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/carhire-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type campaignRepository interface {
	Create(ctx context.Context, c *models.Campaign) error
	Update(ctx context.Context, c *models.Campaign) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]models.Campaign, error)
	FindCandidates(ctx context.Context, tenantID uuid.UUID, cand MatchCandidate) ([]models.Campaign, error)
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
}

type locationLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error)
}

type vehicleLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Vehicle, error)
}

type priceResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, key pricing.PricingLookupKey) (*pricing.PricingDTO, error)
}

// Service administers campaigns and answers which of them apply to a rental.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CampaignInput) (*CampaignDTO, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input CampaignInput) (*CampaignDTO, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CampaignDTO, error)
	List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]CampaignDTO, error)
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
	FindApplicable(ctx context.Context, tenantID uuid.UUID, cand MatchCandidate) ([]models.Campaign, error)
	CheckApplicable(ctx context.Context, tenantID uuid.UUID, input CheckInput) (*CheckResult, error)
	Quote(ctx context.Context, tenantID uuid.UUID, input QuoteInput) (*CampaignQuote, error)
}

type service struct {
	repo      campaignRepository
	locations locationLookup
	vehicles  vehicleLookup
	prices    priceResolver
}

// NewService wires the campaign service.
func NewService(repo campaignRepository, locations locationLookup, vehicles vehicleLookup, prices priceResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaign repository required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location lookup required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle lookup required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	return &service{repo: repo, locations: locations, vehicles: vehicles, prices: prices}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CampaignInput) (*CampaignDTO, error) {
	c := &models.Campaign{TenantID: tenantID, IsActive: true}
	if err := s.apply(ctx, tenantID, c, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, pkgerrors.Dependency(err, "create campaign")
	}
	dto := FromModel(c)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, input CampaignInput) (*CampaignDTO, error) {
	c, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, tenantID, c, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, pkgerrors.Dependency(err, "update campaign")
	}
	dto := FromModel(c)
	return &dto, nil
}

func (s *service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CampaignDTO, error) {
	c, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(c)
	return &dto, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]CampaignDTO, error) {
	rows, err := s.repo.List(ctx, tenantID, activeOnly)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "list campaigns")
	}
	return toDTOs(rows), nil
}

func (s *service) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, tenantID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return pkgerrors.Dependency(err, "deactivate campaign")
	}
	return nil
}

// FindApplicable returns every campaign covering cand ordered by id.
func (s *service) FindApplicable(ctx context.Context, tenantID uuid.UUID, cand MatchCandidate) ([]models.Campaign, error) {
	rows, err := s.repo.FindCandidates(ctx, tenantID, cand)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "find campaigns")
	}
	out := make([]models.Campaign, 0, len(rows))
	for i := range rows {
		if Matches(&rows[i], cand) {
			out = append(out, rows[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *service) CheckApplicable(ctx context.Context, tenantID uuid.UUID, input CheckInput) (*CheckResult, error) {
	cand, err := s.candidate(ctx, tenantID, input.Candidate)
	if err != nil {
		return nil, err
	}
	matched, err := s.FindApplicable(ctx, tenantID, cand)
	if err != nil {
		return nil, err
	}
	result := &CheckResult{ApplicableCampaigns: toDTOs(matched)}

	base := input.BasePrice
	if base == nil {
		resolved, err := s.resolveBase(ctx, tenantID, cand)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodePricingUnavailable {
				return result, nil
			}
			return nil, err
		}
		base = &resolved
	}
	result.BasePrice = base

	if best := SelectBest(*base, matched); best != nil {
		dto := FromModel(&best.Campaign)
		result.BestCampaign = &dto
		result.Discount = &DiscountDTO{
			DiscountAmount: best.Discount.DiscountAmount,
			FinalPrice:     best.Discount.FinalPrice,
		}
	}
	return result, nil
}

func (s *service) Quote(ctx context.Context, tenantID uuid.UUID, input QuoteInput) (*CampaignQuote, error) {
	if input.BasePrice.IsNegative() {
		return nil, validationError("base_price must not be negative", "base_price")
	}
	cand, err := s.candidate(ctx, tenantID, input.Candidate)
	if err != nil {
		return nil, err
	}
	matched, err := s.FindApplicable(ctx, tenantID, cand)
	if err != nil {
		return nil, err
	}

	quote := &CampaignQuote{
		BasePrice:        input.BasePrice,
		CampaignDiscount: decimal.Zero,
		FinalPrice:       input.BasePrice,
	}
	if best := SelectBest(input.BasePrice, matched); best != nil {
		id := best.Campaign.ID
		quote.AppliedCampaignID = &id
		quote.CampaignDiscount = best.Discount.DiscountAmount
		quote.FinalPrice = best.Discount.FinalPrice
	}
	return quote, nil
}

// candidate validates the rental and fills the category from the vehicle
// when the caller left it out.
func (s *service) candidate(ctx context.Context, tenantID uuid.UUID, cand MatchCandidate) (MatchCandidate, error) {
	if _, err := pricing.ClassifyRentalDays(cand.RentalDays); err != nil {
		return cand, err
	}
	if cand.PickupDate.IsZero() {
		return cand, validationError("pickup_date is required", "pickup_date")
	}
	vehicle, err := s.vehicles.FindByID(ctx, tenantID, cand.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cand, pkgerrors.MissingReference("vehicle_id", "vehicle")
		}
		return cand, pkgerrors.Dependency(err, "load vehicle")
	}
	if cand.VehicleCategoryID == nil {
		cand.VehicleCategoryID = vehicle.CategoryID
	}
	return cand, nil
}

func (s *service) resolveBase(ctx context.Context, tenantID uuid.UUID, cand MatchCandidate) (decimal.Decimal, error) {
	tier, err := pricing.ClassifyRentalDays(cand.RentalDays)
	if err != nil {
		return decimal.Zero, err
	}
	row, err := s.prices.Resolve(ctx, tenantID, pricing.PricingLookupKey{
		LocationID: cand.LocationID,
		VehicleID:  cand.VehicleID,
		Month:      int(cand.PickupDate.Month()),
		DayRange:   tier,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return row.Price, nil
}

func (s *service) load(ctx context.Context, tenantID, id uuid.UUID) (*models.Campaign, error) {
	c, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Dependency(err, "load campaign")
	}
	return c, nil
}

// apply validates input and copies it onto c.
func (s *service) apply(ctx context.Context, tenantID uuid.UUID, c *models.Campaign, input CampaignInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return validationError("name is required", "name")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return validationError("start_date and end_date are required", "start_date")
	}
	start, end := calendarDate(input.StartDate), calendarDate(input.EndDate)
	if end.Before(start) {
		return validationError("end_date must not be before start_date", "end_date")
	}
	switch input.DiscountType {
	case enums.DiscountTypePercent:
		if !input.DiscountValue.IsPositive() || input.DiscountValue.GreaterThan(hundred) {
			return validationError("percent discount must be in (0, 100]", "discount_value")
		}
	case enums.DiscountTypeFixed:
		if !input.DiscountValue.IsPositive() {
			return validationError("fixed discount must be positive", "discount_value")
		}
	default:
		return validationError(fmt.Sprintf("invalid discount type %q", input.DiscountType), "discount_type")
	}
	if input.MinRentalDays < 0 {
		return validationError("min_rental_days must not be negative", "min_rental_days")
	}
	if input.LocationID != nil {
		if _, err := s.locations.FindByID(ctx, tenantID, *input.LocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.MissingReference("location_id", "location")
			}
			return pkgerrors.Dependency(err, "load location")
		}
	}
	if input.VehicleID != nil {
		if _, err := s.vehicles.FindByID(ctx, tenantID, *input.VehicleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.MissingReference("vehicle_id", "vehicle")
			}
			return pkgerrors.Dependency(err, "load vehicle")
		}
	}

	c.Name = name
	c.StartDate = start
	c.EndDate = end
	c.DiscountType = input.DiscountType
	c.DiscountValue = input.DiscountValue
	c.LocationID = input.LocationID
	c.VehicleID = input.VehicleID
	c.VehicleCategoryID = input.VehicleCategoryID
	c.MinRentalDays = input.MinRentalDays
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	return nil
}

func toDTOs(rows []models.Campaign) []CampaignDTO {
	out := make([]CampaignDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

func validationError(msg, field string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}
