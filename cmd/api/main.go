package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/carhire-backend/api/routes"
	"github.com/angelmondragon/carhire-backend/internal/campaigns"
	"github.com/angelmondragon/carhire-backend/internal/delivery"
	"github.com/angelmondragon/carhire-backend/internal/locations"
	"github.com/angelmondragon/carhire-backend/internal/pricing"
	"github.com/angelmondragon/carhire-backend/internal/quotes"
	"github.com/angelmondragon/carhire-backend/internal/vehicles"
	"github.com/angelmondragon/carhire-backend/pkg/cache"
	"github.com/angelmondragon/carhire-backend/pkg/config"
	"github.com/angelmondragon/carhire-backend/pkg/db"
	"github.com/angelmondragon/carhire-backend/pkg/logger"
	"github.com/angelmondragon/carhire-backend/pkg/metrics"
	"github.com/angelmondragon/carhire-backend/pkg/migrate"
	"github.com/angelmondragon/carhire-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured; quote rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var store cache.RedisStore
	if redisClient != nil {
		store = redisClient
	}
	backend, err := cache.BackendFromConfig(cfg.Cache, store)
	if err != nil {
		logg.Error(ctx, "failed to configure cache", err)
		os.Exit(1)
	}
	readCache := cache.New(backend, cfg.Cache.TTL, logg, metrics.NewCacheMetrics(registry))

	conn := dbClient.DB()
	locationRepo := locations.NewRepository(conn)
	vehicleRepo := vehicles.NewRepository(conn)

	locationService, err := locations.NewService(locationRepo, readCache)
	requireService(ctx, logg, "location", err)

	pricingService, err := pricing.NewService(pricing.NewRepository(conn), locationRepo, vehicleRepo, dbClient, readCache)
	requireService(ctx, logg, "pricing", err)

	deliveryService, err := delivery.NewService(delivery.NewRepository(conn), locationRepo, dbClient, readCache)
	requireService(ctx, logg, "delivery pricing", err)

	campaignService, err := campaigns.NewService(campaigns.NewRepository(conn), locationRepo, vehicleRepo, pricingService)
	requireService(ctx, logg, "campaign", err)

	composer, err := quotes.NewComposer(pricingService, deliveryService, campaignService, locationService, vehicleRepo, quotes.Options{
		Timeout: cfg.Quote.Timeout,
		Metrics: metrics.NewQuoteMetrics(registry),
		Logger:  logg,
	})
	requireService(ctx, logg, "quote", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"cache": cfg.Cache.Backend(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, registry, locationService, pricingService, deliveryService, campaignService, composer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	shutdownErr = multierr.Append(shutdownErr, dbClient.Close())
	if redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
	}
	if shutdownErr != nil {
		logg.Error(serverCtx, "shutdown completed with errors", shutdownErr)
		exitCode = 1
	} else {
		logg.Info(serverCtx, "api server stopped")
	}
	os.Exit(exitCode)
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name+" service", err)
	os.Exit(1)
}
