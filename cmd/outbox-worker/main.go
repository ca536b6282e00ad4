package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quotedesk/quotedesk-backend/internal/tasks"
	"github.com/quotedesk/quotedesk-backend/pkg/config"
	"github.com/quotedesk/quotedesk-backend/pkg/db"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
	"github.com/quotedesk/quotedesk-backend/pkg/mailer"
	"github.com/quotedesk/quotedesk-backend/pkg/metrics"
	"github.com/quotedesk/quotedesk-backend/pkg/migrate"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
	"github.com/quotedesk/quotedesk-backend/pkg/shopify"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "outbox-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "outbox-worker",
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

	shopifyClient, err := shopify.NewClient(context.Background(), cfg.Shopify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap shopify client", err)
		os.Exit(1)
	}

	var mailClient *mailer.Client
	if cfg.Sendgrid.Enabled() {
		mailClient, err = mailer.NewClient(context.Background(), cfg.Sendgrid, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap mailer", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "sendgrid not configured, email tasks will be skipped")
	}

	registry := outbox.NewExecutorRegistry()
	if mailClient != nil {
		tasks.NewExecutors(shopifyClient, mailClient, logg).Register(registry)
	} else {
		tasks.NewExecutors(shopifyClient, nil, logg).Register(registry)
	}

	outboxMetrics := metrics.NewOutboxMetrics(prometheus.NewRegistry())

	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Repository:    outbox.NewRepository(dbClient.DB()),
		DLQRepository: outbox.NewDLQRepository(dbClient.DB()),
		Registry:      registry,
		Metrics:       outboxMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "outbox-worker",
	})
	logg.Info(ctx, "starting outbox worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "outbox worker shutting down gracefully")
}
