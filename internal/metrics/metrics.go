package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Movie provider
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_provider_requests_total",
			Help: "Calls to the external movie provider by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: success, failure, rejected
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Cache
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// Sessions
	SessionVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_verifications_total",
			Help: "Session verification outcomes by middleware variant",
		},
		[]string{"variant", "outcome"},
	)

	UsageAccountingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_accounting_failures_total",
			Help: "Usage counter updates that failed to persist",
		},
	)
)
