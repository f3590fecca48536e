// Package metrics exports processing counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed processing runs by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cruncher_runs_total",
			Help: "Total number of processing runs",
		},
		[]string{"status"},
	)

	// RowsProcessed counts successfully decoded rows.
	RowsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cruncher_rows_processed_total",
			Help: "Total number of rows decoded and aggregated",
		},
	)

	// RowsRetained counts rows that passed the threshold filter.
	RowsRetained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cruncher_rows_retained_total",
			Help: "Total number of rows that passed the filter",
		},
	)

	// RowsSkipped counts rows dropped due to decode errors.
	RowsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cruncher_rows_skipped_total",
			Help: "Total number of malformed rows skipped during parsing",
		},
	)

	// ProcessingDuration observes wall-clock time per run, load through merge.
	ProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cruncher_processing_duration_seconds",
			Help:    "Wall-clock duration of a full run",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// CacheHits counts summary cache hits in the server.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cruncher_cache_hits_total",
			Help: "Total number of summary cache hits",
		},
	)

	// CacheMisses counts summary cache misses in the server.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cruncher_cache_misses_total",
			Help: "Total number of summary cache misses",
		},
	)

	// HTTPRequestsTotal counts API requests by endpoint and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cruncher_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestDuration observes API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cruncher_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveRun records one finished run.
func ObserveRun(processed, retained, skipped uint64, seconds float64) {
	RowsProcessed.Add(float64(processed))
	RowsRetained.Add(float64(retained))
	RowsSkipped.Add(float64(skipped))
	ProcessingDuration.Observe(seconds)
	RunsTotal.WithLabelValues("ok").Inc()
}
