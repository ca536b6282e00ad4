package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/quotedesk/quotedesk-backend/api/responses"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// QuoteRateLimitPolicy throttles quote submissions per client IP.
type QuoteRateLimitPolicy struct {
	name    string
	window  time.Duration
	ipLimit int
}

func NewQuoteRateLimitPolicy(name string, window time.Duration, ipLimit int) QuoteRateLimitPolicy {
	return QuoteRateLimitPolicy{
		name:    strings.ToLower(strings.TrimSpace(name)),
		window:  window,
		ipLimit: ipLimit,
	}
}

func (p QuoteRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.ipLimit > 0
}

func (p QuoteRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "quote"
	}
	return p.name
}

func (p QuoteRateLimitPolicy) ipKey(ip string) string {
	if ip == "" {
		return ""
	}
	return fmt.Sprintf("rl:ip:%s:%s", p.normalizedName(), ip)
}

// QuoteRateLimit enforces the per-IP counter on the public quote surface.
func QuoteRateLimit(policy QuoteRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			key := policy.ipKey(ip)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			count, err := store.IncrWithTTL(ctx, key, policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if count > int64(policy.ipLimit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"policy":         policy.normalizedName(),
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.ipLimit,
						"window_seconds": int(policy.window.Seconds()),
					})
					logg.Warn(logCtx, "quote.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
