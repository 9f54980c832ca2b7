package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "revenuecat",
	Subsystem: "webhook",
	Name:      "events_total",
	Help:      "Webhook deliveries by event type and outcome.",
}, []string{"type", "result"})
