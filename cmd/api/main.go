package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quotedesk/quotedesk-backend/api/routes"
	"github.com/quotedesk/quotedesk-backend/internal/quotes"
	"github.com/quotedesk/quotedesk-backend/internal/shipping"
	"github.com/quotedesk/quotedesk-backend/pkg/config"
	"github.com/quotedesk/quotedesk-backend/pkg/db"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
	"github.com/quotedesk/quotedesk-backend/pkg/metrics"
	"github.com/quotedesk/quotedesk-backend/pkg/migrate"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
	"github.com/quotedesk/quotedesk-backend/pkg/redis"
	"github.com/quotedesk/quotedesk-backend/pkg/shippo"
	"github.com/quotedesk/quotedesk-backend/pkg/shopify"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	shopifyClient, err := shopify.NewClient(context.Background(), cfg.Shopify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap shopify client", err)
		os.Exit(1)
	}

	shippoClient, err := shippo.NewClient(context.Background(), cfg.Shippo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap shippo client", err)
		os.Exit(1)
	}

	quoteRepo := quotes.NewRepository(dbClient.DB())
	taskService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	quoteService := quotes.NewService(dbClient, quoteRepo, taskService, shopifyClient, logg)
	shippingService := shipping.NewService(dbClient, quoteRepo, taskService, shippoClient, cfg.Shippo, logg)

	registry := prometheus.NewRegistry()
	requestMetrics := metrics.NewRequestMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, quoteService, shippingService, requestMetrics, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
