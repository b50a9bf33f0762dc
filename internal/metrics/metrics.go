// Package metrics provides Prometheus metrics for docdiff
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for docdiff
type Metrics struct {
	// gRPC request metrics
	GrpcRequestsTotal    *prometheus.CounterVec
	GrpcRequestDuration  *prometheus.HistogramVec
	GrpcRequestsInFlight prometheus.Gauge

	// Comparison metrics
	ComparisonsTotal      *prometheus.CounterVec
	ComparisonDuration    prometheus.Histogram
	RawDifferencesTotal   *prometheus.CounterVec
	FieldDifferencesTotal prometheus.Counter
	NonFieldDifferences   prometheus.Counter

	// Result cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Snapshot store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates all metrics and registers them on reg. A nil
// registerer creates unregistered metrics, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// gRPC request metrics
	m.GrpcRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdiff_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status"},
	)

	m.GrpcRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docdiff_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	m.GrpcRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "docdiff_grpc_requests_in_flight",
			Help: "Number of gRPC requests currently being processed",
		},
	)

	// Comparison metrics
	m.ComparisonsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdiff_comparisons_total",
			Help: "Total number of document comparisons",
		},
		[]string{"status"},
	)

	m.ComparisonDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docdiff_comparison_duration_seconds",
			Help:    "Duration of document comparisons in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	m.RawDifferencesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdiff_raw_differences_total",
			Help: "Total number of raw XML differences by kind",
		},
		[]string{"kind"},
	)

	m.FieldDifferencesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docdiff_field_differences_total",
			Help: "Total number of differences located within a schema field",
		},
	)

	m.NonFieldDifferences = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docdiff_non_field_differences_total",
			Help: "Total number of differences outside any schema field",
		},
	)

	// Result cache metrics
	m.CacheHitsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docdiff_cache_hits_total",
			Help: "Total number of comparison results served from cache",
		},
	)

	m.CacheMissesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "docdiff_cache_misses_total",
			Help: "Total number of comparison cache misses",
		},
	)

	// Snapshot store metrics
	m.StoreOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdiff_store_operations_total",
			Help: "Total number of snapshot store operations",
		},
		[]string{"operation", "status"},
	)

	m.StoreOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docdiff_store_operation_duration_seconds",
			Help:    "Duration of snapshot store operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	// Server metrics
	m.ServerUptimeSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "docdiff_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	return m
}

// RecordGrpcRequest records a gRPC request
func (m *Metrics) RecordGrpcRequest(method, status string, duration time.Duration) {
	m.GrpcRequestsTotal.WithLabelValues(method, status).Inc()
	m.GrpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordComparison records the outcome of a document comparison
func (m *Metrics) RecordComparison(status string, duration time.Duration) {
	m.ComparisonsTotal.WithLabelValues(status).Inc()
	m.ComparisonDuration.Observe(duration.Seconds())
}

// RecordRawDifference records a raw XML difference
func (m *Metrics) RecordRawDifference(kind string) {
	m.RawDifferencesTotal.WithLabelValues(kind).Inc()
}

// RecordFieldDifference records a difference within a schema field
func (m *Metrics) RecordFieldDifference() {
	m.FieldDifferencesTotal.Inc()
}

// RecordNonFieldDifference records a difference outside any field
func (m *Metrics) RecordNonFieldDifference() {
	m.NonFieldDifferences.Inc()
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// RecordStoreOperation records a snapshot store operation
func (m *Metrics) RecordStoreOperation(operation, status string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateUptime updates the server uptime metric
func (m *Metrics) UpdateUptime() {
	m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
}
