package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeStore struct {
	counts map[string]int64
	err    error
}

func (f *fakeStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestQuoteRateLimitAllowsUnderLimit(t *testing.T) {
	policy := NewQuoteRateLimitPolicy("quote", time.Minute, 2)
	store := &fakeStore{}
	handler := QuoteRateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/quote", nil)
		req.RemoteAddr = "198.51.100.7:4411"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestQuoteRateLimitBlocksOverLimit(t *testing.T) {
	policy := NewQuoteRateLimitPolicy("quote", time.Minute, 1)
	store := &fakeStore{}
	handler := QuoteRateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/quote", nil)
		req.RemoteAddr = "198.51.100.7:4411"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i == 0 && rec.Code != http.StatusOK {
			t.Fatalf("first request status = %d, want 200", rec.Code)
		}
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second request status = %d, want 429", rec.Code)
		}
	}
}

func TestQuoteRateLimitSeparatesClients(t *testing.T) {
	policy := NewQuoteRateLimitPolicy("quote", time.Minute, 1)
	store := &fakeStore{}
	handler := QuoteRateLimit(policy, store, nil)(okHandler())

	first := httptest.NewRequest(http.MethodPost, "/quote", nil)
	first.Header.Set("X-Forwarded-For", "203.0.113.1")
	second := httptest.NewRequest(http.MethodPost, "/quote", nil)
	second.Header.Set("X-Forwarded-For", "203.0.113.2")

	for _, req := range []*http.Request{first, second} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 for distinct clients", rec.Code)
		}
	}
}

func TestQuoteRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewQuoteRateLimitPolicy("quote", 0, 0)
	handler := QuoteRateLimit(policy, &fakeStore{err: errors.New("should not be called")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/quote", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestQuoteRateLimitStoreErrorFailsClosed(t *testing.T) {
	policy := NewQuoteRateLimitPolicy("quote", time.Minute, 5)
	handler := QuoteRateLimit(policy, &fakeStore{err: errors.New("redis down")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/quote", nil)
	req.RemoteAddr = "198.51.100.7:4411"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
