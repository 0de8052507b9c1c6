package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/carhire-backend/api/controllers"
	"github.com/angelmondragon/carhire-backend/api/middleware"
	"github.com/angelmondragon/carhire-backend/internal/campaigns"
	"github.com/angelmondragon/carhire-backend/internal/delivery"
	"github.com/angelmondragon/carhire-backend/internal/locations"
	"github.com/angelmondragon/carhire-backend/internal/pricing"
	"github.com/angelmondragon/carhire-backend/pkg/config"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
	"github.com/angelmondragon/carhire-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	locationService locations.Service,
	pricingService pricing.Service,
	deliveryService delivery.Service,
	campaignService campaigns.Service,
	composer controllers.QuoteComposer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	// A nil *redis.Client must not reach the pinger map or rate limiter as a
	// non-nil interface.
	deps := map[string]controllers.Pinger{"db": dbP}
	var rateStore middleware.FixedWindowStore
	if redisClient != nil {
		deps["redis"] = redisClient
		rateStore = redisClient
	}

	quotePolicy := middleware.NewTenantRateLimitPolicy("quotes", cfg.RateLimit.QuoteWindow, cfg.RateLimit.QuoteLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		manage := middleware.RequirePricingManager(logg)

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", controllers.LocationList(locationService, logg))
			r.Get("/{id}", controllers.LocationGet(locationService, logg))
			r.With(manage).Post("/", controllers.LocationCreate(locationService, logg))
			r.With(manage).Put("/{id}", controllers.LocationUpdate(locationService, logg))
			r.With(manage).Delete("/{id}", controllers.LocationDelete(locationService, logg))
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Get("/", controllers.PricingList(pricingService, logg))
			r.Get("/resolve", controllers.PricingResolve(pricingService, logg))
			r.With(manage).Post("/", controllers.PricingUpsert(pricingService, logg))
			r.With(manage).Post("/bulk", controllers.PricingBulkUpsert(pricingService, logg))
			r.With(manage).Post("/bulk-copy", controllers.PricingBulkCopy(pricingService, logg))
			r.With(manage).Delete("/", controllers.PricingRemove(pricingService, logg))
		})

		r.Route("/delivery-pricing", func(r chi.Router) {
			r.Get("/", controllers.DeliveryPricingList(deliveryService, logg))
			r.Get("/resolve", controllers.DeliveryPricingResolve(deliveryService, logg))
			r.With(manage).Post("/", controllers.DeliveryPricingUpsert(deliveryService, logg))
			r.With(manage).Post("/bulk", controllers.DeliveryPricingBulkUpsert(deliveryService, logg))
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", controllers.CampaignList(campaignService, logg))
			r.Post("/check-applicable", controllers.CampaignCheckApplicable(campaignService, logg))
			r.Post("/quote", controllers.CampaignQuote(campaignService, logg))
			r.Get("/{id}", controllers.CampaignGet(campaignService, logg))
			r.With(manage).Post("/", controllers.CampaignCreate(campaignService, logg))
			r.With(manage).Put("/{id}", controllers.CampaignUpdate(campaignService, logg))
			r.With(manage).Delete("/{id}", controllers.CampaignDeactivate(campaignService, logg))
		})

		r.With(middleware.TenantRateLimit(quotePolicy, rateStore, logg)).
			Post("/quotes", controllers.QuoteCreate(composer, logg))
	})

	return r
}
