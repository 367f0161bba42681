package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plateup_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// VerificationOutcomes counts verification token consumptions (consumed|rejected).
	VerificationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plateup_verification_tokens_total",
			Help: "Total number of verification token consumption attempts",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks sessions that have not expired or been deleted.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plateup_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// OrderTransitions counts driver order-status transitions by outcome (applied|rejected|lost).
	OrderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plateup_order_transitions_total",
			Help: "Total number of driver order status transition attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plateup_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
