package controllers

import (
	"context"
	"net/http"

	"github.com/quotedesk/quotedesk-backend/api/responses"
	"github.com/quotedesk/quotedesk-backend/pkg/config"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuoteDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the datasources this service cannot run without.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuoteDesk-Env", cfg.App.Env)

		checks := map[string]pinger{
			"database": dbP,
			"redis":    redisP,
		}
		statuses := map[string]string{}
		for name, p := range checks {
			if p == nil {
				statuses[name] = "skipped"
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				if logg != nil {
					logCtx := logg.WithField(r.Context(), "check", name)
					logg.Error(logCtx, "health check failed", err)
				}
				responses.WriteError(r.Context(), nil, w,
					pkgerrors.New(pkgerrors.CodeDependency, name+" unavailable"))
				return
			}
			statuses[name] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
