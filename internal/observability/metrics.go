package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"op"})

	// LikeToggles counts like toggles by resulting action (like or unlike).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_story_like_toggles_total",
		Help: "Total number of story like toggles by action",
	}, []string{"action"})

	// ValidationFailures counts rejected form submissions by form.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_validation_failures_total",
		Help: "Total number of rejected form submissions",
	}, []string{"form"})

	// DatabaseQueryLatency records database latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
