// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipebox_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthEvents counts signup/login/logout attempts by outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_auth_events_total",
		Help: "Authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// RecipesCreated counts successfully created recipes.
	RecipesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipebox_recipes_created_total",
		Help: "Total number of recipes created",
	})

	// ActiveSessions tracks sessions issued minus sessions revoked by this process.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recipebox_sessions_active",
		Help: "Sessions issued minus sessions revoked by this process",
	})
)

// Outcome labels for AuthEvents.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// RecordAuthEvent increments the auth counter for event and outcome.
func RecordAuthEvent(event, outcome string) {
	AuthEvents.WithLabelValues(event, outcome).Inc()
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
