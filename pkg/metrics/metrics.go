package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics records latency and outcomes for inbound HTTP requests.
type RequestMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewRequestMetrics registers the HTTP metrics on the provided registerer.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	if reg == nil {
		return &RequestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of inbound HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Inbound HTTP requests by route and status class.",
	}, []string{"route", "status"})
	reg.MustRegister(duration, total)
	return &RequestMetrics{duration: duration, total: total}
}

// Observe records one completed request.
func (m *RequestMetrics) Observe(route string, status string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(route)).Observe(elapsed.Seconds())
	m.total.WithLabelValues(normalizeLabel(route), normalizeLabel(status)).Inc()
}

// OutboxMetrics records outbox worker task outcomes.
type OutboxMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	dead     *prometheus.CounterVec
}

// NewOutboxMetrics registers the worker metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_task_duration_seconds",
		Help:    "Duration of outbox task executions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_task_success",
		Help: "Successful outbox task executions.",
	}, []string{"kind"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_task_failure",
		Help: "Failed outbox task attempts.",
	}, []string{"kind"})
	dead := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_task_dead",
		Help: "Outbox tasks moved to the dead letter table.",
	}, []string{"kind"})
	reg.MustRegister(duration, success, failure, dead)
	return &OutboxMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		dead:     dead,
	}
}

// ObserveDuration records the duration for the named task kind.
func (m *OutboxMetrics) ObserveDuration(kind string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(kind)).Observe(elapsed.Seconds())
}

// IncSuccess increments the success counter for the named task kind.
func (m *OutboxMetrics) IncSuccess(kind string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFailure increments the failure counter for the named task kind.
func (m *OutboxMetrics) IncFailure(kind string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDead increments the dead-letter counter for the named task kind.
func (m *OutboxMetrics) IncDead(kind string) {
	if m == nil || m.dead == nil {
		return
	}
	m.dead.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
