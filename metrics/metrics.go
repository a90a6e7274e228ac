// Package metrics provides Prometheus metrics for hn-pulse.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoriesFetched counts stories normalized by the fetcher.
	StoriesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hnpulse",
			Name:      "stories_fetched_total",
			Help:      "Total number of stories fetched and normalized",
		},
	)

	// FetchErrors counts fetch failures by stage.
	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hnpulse",
			Name:      "fetch_errors_total",
			Help:      "Total number of fetch failures",
		},
		[]string{"stage"},
	)

	// FetchCycleDuration observes full poll cycle durations.
	FetchCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hnpulse",
			Name:      "fetch_cycle_duration_seconds",
			Help:      "Duration of fetch poll cycles",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// PublishTotal counts publish operations by status.
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hnpulse",
			Name:      "publish_total",
			Help:      "Total number of publish operations",
		},
		[]string{"status"},
	)

	// StoriesDropped counts stories lost after the publish retry ceiling.
	StoriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hnpulse",
			Name:      "stories_dropped_total",
			Help:      "Total number of stories dropped after exhausting publish retries",
		},
	)

	// StoriesConsumed counts stories accepted by the aggregator.
	StoriesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hnpulse",
			Name:      "stories_consumed_total",
			Help:      "Total number of stories consumed from the stream",
		},
	)

	// ConsumeErrors counts consumer-side failures by type.
	ConsumeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hnpulse",
			Name:      "consume_errors_total",
			Help:      "Total number of consumer failures",
		},
		[]string{"error_type"},
	)

	// BucketsFinalized counts hourly bucket finalizations.
	BucketsFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hnpulse",
			Name:      "buckets_finalized_total",
			Help:      "Total number of finalized hourly buckets",
		},
	)

	// DuplicatesDropped counts events dropped by the aggregator's
	// duplicate-ID guard.
	DuplicatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hnpulse",
			Name:      "duplicates_dropped_total",
			Help:      "Total number of duplicate story events dropped before aggregation",
		},
	)

	// RedisConnectionStatus tracks Redis connection status.
	RedisConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hnpulse",
			Name:      "redis_connection_status",
			Help:      "Redis connection status (1 = connected, 0 = disconnected)",
		},
	)
)

// RecordPublish records a publish operation outcome.
func RecordPublish(status string) {
	PublishTotal.WithLabelValues(status).Inc()
}

// RecordFetchError records a fetch failure for a stage (listing, item).
func RecordFetchError(stage string) {
	FetchErrors.WithLabelValues(stage).Inc()
}

// RecordConsumeError records a consumer failure by type.
func RecordConsumeError(errorType string) {
	ConsumeErrors.WithLabelValues(errorType).Inc()
}

// SetRedisConnected sets Redis connection status to connected.
func SetRedisConnected() {
	RedisConnectionStatus.Set(1)
}

// SetRedisDisconnected sets Redis connection status to disconnected.
func SetRedisDisconnected() {
	RedisConnectionStatus.Set(0)
}
