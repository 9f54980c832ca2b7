package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "revenuecat",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Completed synchronisation runs by outcome.",
	}, []string{"result"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "revenuecat",
		Subsystem: "sync",
		Name:      "run_duration_seconds",
		Help:      "Duration of full synchronisation runs.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	customersSynced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "revenuecat",
		Subsystem: "sync",
		Name:      "customers_synced_total",
		Help:      "Customers written to the database.",
	})

	customersRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "revenuecat",
		Subsystem: "sync",
		Name:      "customers_removed_total",
		Help:      "Customers deleted from the database because RevenueCat no longer knows them.",
	})
)
