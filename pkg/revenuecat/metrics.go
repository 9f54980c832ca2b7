package revenuecat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revenuecat",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "RevenueCat API requests by method and status code",
		},
		[]string{"method", "code"}, // code: HTTP status, or "error" for transport failures
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "revenuecat",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "RevenueCat API request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	catalogCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revenuecat",
			Subsystem: "client",
			Name:      "catalog_cache_lookups_total",
			Help:      "Catalog cache lookups by result",
		},
		[]string{"result"},
	)

	circuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "revenuecat",
			Subsystem: "client",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)
