package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quotedesk/quotedesk-backend/api/controllers"
	"github.com/quotedesk/quotedesk-backend/api/middleware"
	"github.com/quotedesk/quotedesk-backend/internal/quotes"
	"github.com/quotedesk/quotedesk-backend/internal/shipping"
	"github.com/quotedesk/quotedesk-backend/pkg/config"
	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
	"github.com/quotedesk/quotedesk-backend/pkg/metrics"
	"github.com/quotedesk/quotedesk-backend/pkg/redis"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type QuoteService interface {
	Submit(ctx context.Context, params quotes.SubmissionParams) (*models.Quote, error)
	Approve(ctx context.Context, params quotes.ApprovalParams) error
}

type ShippingService interface {
	PurchaseLabel(ctx context.Context, params shipping.LabelParams) (*shipping.Result, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP Pinger,
	redisClient *redis.Client,
	quoteService QuoteService,
	shippingService ShippingService,
	requestMetrics *metrics.RequestMetrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(requestMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	quotePolicy := middleware.NewQuoteRateLimitPolicy(
		"quote",
		cfg.RateLimit.QuoteWindow,
		cfg.RateLimit.QuoteIPLimit,
	)

	var redisP Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Get("/", controllers.Root())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	quoteHandler := controllers.SubmitQuote(quoteService, cfg.Upload, logg)
	if redisClient != nil {
		r.With(middleware.QuoteRateLimit(quotePolicy, redisClient, logg)).Post("/quote", quoteHandler)
	} else {
		r.Post("/quote", quoteHandler)
	}
	r.Post("/quote-approval", controllers.ApproveQuote(quoteService, logg))
	r.Post("/shipping-label", controllers.PurchaseShippingLabel(shippingService, logg))

	return r
}
