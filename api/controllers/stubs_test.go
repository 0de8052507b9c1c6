package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/carhire-backend/api/middleware"
	"github.com/angelmondragon/carhire-backend/internal/campaigns"
	"github.com/angelmondragon/carhire-backend/internal/delivery"
	"github.com/angelmondragon/carhire-backend/internal/locations"
	"github.com/angelmondragon/carhire-backend/internal/pricing"
	"github.com/angelmondragon/carhire-backend/internal/quotes"
	"github.com/angelmondragon/carhire-backend/pkg/db/models"
)

func withTenant(req *http.Request, tenantID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithTenantID(req.Context(), tenantID))
}

func withPathID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

type stubLocationService struct {
	dto *locations.LocationDTO
	err error

	lastFilter locations.ListFilter
	lastCreate locations.CreateLocationInput
	lastUpdate locations.UpdateLocationInput
	deleted    uuid.UUID
}

func (s *stubLocationService) List(ctx context.Context, tenantID uuid.UUID, filter locations.ListFilter) ([]locations.LocationDTO, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	if s.dto == nil {
		return []locations.LocationDTO{}, nil
	}
	return []locations.LocationDTO{*s.dto}, nil
}

func (s *stubLocationService) GetByID(ctx context.Context, tenantID, id uuid.UUID, language string) (*locations.LocationDTO, error) {
	return s.dto, s.err
}

func (s *stubLocationService) Create(ctx context.Context, tenantID uuid.UUID, input locations.CreateLocationInput) (*locations.LocationDTO, error) {
	s.lastCreate = input
	return s.dto, s.err
}

func (s *stubLocationService) Update(ctx context.Context, tenantID, id uuid.UUID, input locations.UpdateLocationInput) (*locations.LocationDTO, error) {
	s.lastUpdate = input
	return s.dto, s.err
}

func (s *stubLocationService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

type stubPricingService struct {
	row    *pricing.PricingDTO
	bulk   *pricing.BulkResult
	copied *pricing.BulkCopyResult
	err    error

	lastKey    pricing.PricingLookupKey
	lastBulk   pricing.BulkUpsertInput
	lastCopy   pricing.BulkCopyInput
	lastMonth  int
	removedCnt int64
}

func (s *stubPricingService) Resolve(ctx context.Context, tenantID uuid.UUID, key pricing.PricingLookupKey) (*pricing.PricingDTO, error) {
	s.lastKey = key
	return s.row, s.err
}

func (s *stubPricingService) List(ctx context.Context, tenantID, locationID uuid.UUID, month int) ([]pricing.PricingDTO, error) {
	s.lastMonth = month
	if s.err != nil {
		return nil, s.err
	}
	return []pricing.PricingDTO{}, nil
}

func (s *stubPricingService) Upsert(ctx context.Context, tenantID uuid.UUID, input pricing.UpsertInput) (*pricing.PricingDTO, error) {
	return s.row, s.err
}

func (s *stubPricingService) BulkUpsert(ctx context.Context, tenantID uuid.UUID, input pricing.BulkUpsertInput) (*pricing.BulkResult, error) {
	s.lastBulk = input
	return s.bulk, s.err
}

func (s *stubPricingService) BulkCopy(ctx context.Context, tenantID uuid.UUID, input pricing.BulkCopyInput) (*pricing.BulkCopyResult, error) {
	s.lastCopy = input
	return s.copied, s.err
}

func (s *stubPricingService) RemoveByLocationAndMonth(ctx context.Context, tenantID, locationID uuid.UUID, month int) (int64, error) {
	s.lastMonth = month
	return s.removedCnt, s.err
}

type stubDeliveryService struct {
	result delivery.ResolveResult
	err    error

	lastOrigin, lastDestination uuid.UUID
	lastBulk                    delivery.BulkUpsertInput
}

func (s *stubDeliveryService) Resolve(ctx context.Context, tenantID, originID, destinationID uuid.UUID) (delivery.ResolveResult, error) {
	s.lastOrigin, s.lastDestination = originID, destinationID
	return s.result, s.err
}

func (s *stubDeliveryService) ListByLocation(ctx context.Context, tenantID, originID uuid.UUID) ([]delivery.DeliveryPricingDTO, error) {
	return []delivery.DeliveryPricingDTO{}, s.err
}

func (s *stubDeliveryService) Upsert(ctx context.Context, tenantID uuid.UUID, input delivery.UpsertInput) (*delivery.DeliveryPricingDTO, error) {
	return &delivery.DeliveryPricingDTO{LocationID: input.LocationID, DeliveryLocationID: input.DeliveryLocationID, Fee: input.Fee}, s.err
}

func (s *stubDeliveryService) BulkUpsert(ctx context.Context, tenantID uuid.UUID, input delivery.BulkUpsertInput) (*delivery.BulkResult, error) {
	s.lastBulk = input
	if s.err != nil {
		return nil, s.err
	}
	return &delivery.BulkResult{Upserted: len(input.Rows), Skipped: []delivery.SkippedRow{}}, nil
}

type stubCampaignService struct {
	dto   *campaigns.CampaignDTO
	check *campaigns.CheckResult
	quote *campaigns.CampaignQuote
	err   error

	lastInput campaigns.CampaignInput
	lastCheck campaigns.CheckInput
	lastQuote campaigns.QuoteInput
	activeArg bool
}

func (s *stubCampaignService) Create(ctx context.Context, tenantID uuid.UUID, input campaigns.CampaignInput) (*campaigns.CampaignDTO, error) {
	s.lastInput = input
	return s.dto, s.err
}

func (s *stubCampaignService) Update(ctx context.Context, tenantID, id uuid.UUID, input campaigns.CampaignInput) (*campaigns.CampaignDTO, error) {
	s.lastInput = input
	return s.dto, s.err
}

func (s *stubCampaignService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*campaigns.CampaignDTO, error) {
	return s.dto, s.err
}

func (s *stubCampaignService) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]campaigns.CampaignDTO, error) {
	s.activeArg = activeOnly
	return []campaigns.CampaignDTO{}, s.err
}

func (s *stubCampaignService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.err
}

func (s *stubCampaignService) FindApplicable(ctx context.Context, tenantID uuid.UUID, cand campaigns.MatchCandidate) ([]models.Campaign, error) {
	return nil, s.err
}

func (s *stubCampaignService) CheckApplicable(ctx context.Context, tenantID uuid.UUID, input campaigns.CheckInput) (*campaigns.CheckResult, error) {
	s.lastCheck = input
	return s.check, s.err
}

func (s *stubCampaignService) Quote(ctx context.Context, tenantID uuid.UUID, input campaigns.QuoteInput) (*campaigns.CampaignQuote, error) {
	s.lastQuote = input
	return s.quote, s.err
}

type stubComposer struct {
	breakdown *quotes.Breakdown
	err       error
	last      quotes.QuoteRequest
}

func (s *stubComposer) Compose(ctx context.Context, tenantID uuid.UUID, req quotes.QuoteRequest) (*quotes.Breakdown, error) {
	s.last = req
	return s.breakdown, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
