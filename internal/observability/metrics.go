// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	PagesFetched     *prometheus.CounterVec
	RecordsWritten   *prometheus.CounterVec
	RecordsSkipped   *prometheus.CounterVec
	RecordsFailed    *prometheus.CounterVec
	PoolWriteErrors  prometheus.Counter
	RateLimited      *prometheus.CounterVec
	CyclesTotal      *prometheus.CounterVec
	CycleDuration    *prometheus.HistogramVec
	CheckpointSecond *prometheus.GaugeVec

	// Upstream metrics
	UpstreamLatency *prometheus.HistogramVec
	MalformedFields *prometheus.CounterVec

	// Query metrics
	QueryRequests *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	CacheResults  *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers the metrics on reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "midgard_history"
	}
	f := promauto.With(reg)

	return &Metrics{
		PagesFetched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pages_fetched_total",
			Help:      "Total number of upstream pages fetched by series",
		}, []string{"series"}),
		RecordsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_written_total",
			Help:      "Total number of interval records inserted by series",
		}, []string{"series"}),
		RecordsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_skipped_total",
			Help:      "Total number of interval records already present",
		}, []string{"series"}),
		RecordsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_failed_total",
			Help:      "Total number of interval records that could not be written",
		}, []string{"series"}),
		PoolWriteErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pool_write_errors_total",
			Help:      "Total number of earnings pool rows that could not be written",
		}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rate_limited_total",
			Help:      "Total number of upstream 429 responses and transport retries",
		}, []string{"series", "reason"}),
		CyclesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cycles_total",
			Help:      "Total number of sync cycles by outcome",
		}, []string{"series", "status"}),
		CycleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cycle_duration_seconds",
			Help:      "Sync cycle duration in seconds",
			Buckets:   []float64{0.1, 1, 5, 30, 60, 300, 900, 3600},
		}, []string{"series"}),
		CheckpointSecond: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "checkpoint_timestamp",
			Help:      "Latest persisted end time per series",
		}, []string{"series"}),

		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_latency_seconds",
			Help:      "Upstream history request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"series", "code"}),
		MalformedFields: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "malformed_fields_total",
			Help:      "Numeric upstream fields that failed to parse and were zeroed",
		}, []string{"series", "field"}),

		QueryRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of history queries by series and outcome",
		}, []string{"series", "status"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "History query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"series"}),
		CacheResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "cache_results_total",
			Help:      "Response cache lookups by result",
		}, []string{"result"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPage counts one fetched page.
func RecordPage(series string) {
	DefaultMetrics.PagesFetched.WithLabelValues(series).Inc()
}

// RecordWrites records the outcome of persisting one page.
func RecordWrites(series string, written, skipped, failed int) {
	DefaultMetrics.RecordsWritten.WithLabelValues(series).Add(float64(written))
	DefaultMetrics.RecordsSkipped.WithLabelValues(series).Add(float64(skipped))
	DefaultMetrics.RecordsFailed.WithLabelValues(series).Add(float64(failed))
}

// RecordPoolWriteErrors counts earnings pool rows that failed to insert.
func RecordPoolWriteErrors(n int) {
	DefaultMetrics.PoolWriteErrors.Add(float64(n))
}

// RecordRetry counts a backoff wait. reason is "rate_limited" or "transport".
func RecordRetry(series, reason string) {
	DefaultMetrics.RateLimited.WithLabelValues(series, reason).Inc()
}

// RecordCycle records a finished sync cycle.
func RecordCycle(series, status string, durationSeconds float64) {
	DefaultMetrics.CyclesTotal.WithLabelValues(series, status).Inc()
	DefaultMetrics.CycleDuration.WithLabelValues(series).Observe(durationSeconds)
}

// UpdateCheckpoint sets the checkpoint gauge for a series.
func UpdateCheckpoint(series string, ts int64) {
	DefaultMetrics.CheckpointSecond.WithLabelValues(series).Set(float64(ts))
}

// RecordUpstreamLatency records an upstream request.
func RecordUpstreamLatency(series, code string, seconds float64) {
	DefaultMetrics.UpstreamLatency.WithLabelValues(series, code).Observe(seconds)
}

// RecordMalformedField counts a numeric field that could not be parsed.
func RecordMalformedField(series, field string) {
	DefaultMetrics.MalformedFields.WithLabelValues(series, field).Inc()
}

// RecordQuery records a served history query.
func RecordQuery(series, status string, seconds float64) {
	DefaultMetrics.QueryRequests.WithLabelValues(series, status).Inc()
	DefaultMetrics.QueryDuration.WithLabelValues(series).Observe(seconds)
}

// RecordCache counts a response cache hit or miss.
func RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DefaultMetrics.CacheResults.WithLabelValues(result).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
