// Package metrics holds the process-wide Prometheus collectors exposed on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "headcount"

var (
	// CacheRequests counts response cache lookups by kind and result (hit|miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Response cache lookups by kind and result",
	}, []string{"kind", "result"})

	// CacheInvalidations counts invalidation calls by scope.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Response cache invalidations by scope",
	}, []string{"scope"})

	// AggregationRuns counts rollup runs by outcome (success|noop|failure).
	AggregationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregation",
		Name:      "runs_total",
		Help:      "Rollup runs by outcome",
	}, []string{"outcome"})

	// AggregationDuration tracks rollup run latency.
	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "aggregation",
		Name:      "run_duration_seconds",
		Help:      "Rollup run duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})

	// AggregationEvents counts raw events folded into daily rollups.
	AggregationEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "aggregation",
		Name:      "events_processed_total",
		Help:      "Raw events folded into daily rollups",
	})

	// IngestedEvents counts accepted detection payloads by form (detailed|simple).
	IngestedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "events_total",
		Help:      "Accepted detection payloads by form",
	}, []string{"form"})

	// QueriesByTier counts range queries by the storage tier that served them.
	QueriesByTier = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "range_total",
		Help:      "Range queries by serving tier",
	}, []string{"tier"})
)
