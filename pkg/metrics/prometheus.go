// Package metrics provides Prometheus metrics for the ringside analysis service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the ringside service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Engine metrics
	benchmarksComputed   *prometheus.CounterVec
	populationSize       prometheus.Histogram
	zscoresComputed      prometheus.Counter
	zscoresUndefined     prometheus.Counter
	trainingLoadAnalyses *prometheus.CounterVec
	computeLatency       *prometheus.HistogramVec

	// Data store metrics
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
	storeRecords      *prometheus.GaugeVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ringside",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per series
	auto := promauto.With(m.registry)

	m.benchmarksComputed = m.counterVec("benchmarks_computed_total",
		"Benchmarks computed by reference group, source and status",
		"reference_group", "source", "status")

	m.populationSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "population_size",
		Help:        "Number of sample points per computed benchmark",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 14),
		ConstLabels: m.constLabels,
	})

	m.zscoresComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "zscores_computed_total",
		Help:        "Total number of z-scores produced",
		ConstLabels: m.constLabels,
	})

	m.zscoresUndefined = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "zscores_undefined_total",
		Help:        "Z-scores that were undefined (no spread or no benchmark)",
		ConstLabels: m.constLabels,
	})

	m.trainingLoadAnalyses = m.counterVec("training_load_analyses_total",
		"Training load analyses by ACWR zone", "zone")

	m.computeLatency = m.histogramVec("compute_latency_milliseconds",
		"Engine operation latency in milliseconds", m.histogramBuckets, "operation")

	m.storeQueryLatency = m.histogramVec("store_query_latency_milliseconds",
		"Data store query latency in milliseconds", m.histogramBuckets, "operation")

	m.storeErrors = m.counterVec("store_errors_total",
		"Data store failures by operation", "operation")

	m.storeRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_records",
		Help:        "Records held by the data store by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")

	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets,
		"endpoint", "method", "status_code")

	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint, method and kind", "endpoint", "method", "error_type")

	m.rateLimited = m.counterVec("rate_limited_total",
		"Requests rejected by the per-caller rate limiter", "endpoint")

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// Engine Metrics Functions.

// RecordBenchmark records one computed benchmark and its population size.
func RecordBenchmark(referenceGroup, source, status string, count int) {
	globalManager.benchmarksComputed.WithLabelValues(referenceGroup, source, status).Inc()
	globalManager.populationSize.Observe(float64(count))
}

// RecordZScore records one produced z-score; defined is false for a null score.
func RecordZScore(defined bool) {
	globalManager.zscoresComputed.Inc()
	if !defined {
		globalManager.zscoresUndefined.Inc()
	}
}

// RecordTrainingLoadAnalysis records a training load analysis by ACWR zone.
func RecordTrainingLoadAnalysis(zone string) {
	if zone == "" {
		zone = "none"
	}
	globalManager.trainingLoadAnalyses.WithLabelValues(zone).Inc()
}

// RecordComputeLatency records engine operation latency in milliseconds.
func RecordComputeLatency(operation string, latencyMs float64) {
	globalManager.computeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// Data Store Metrics Functions.

// RecordStoreQueryLatency records data store query latency.
func RecordStoreQueryLatency(operation string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreError increments the data store error counter.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// UpdateStoreRecords sets the number of records of a kind held by the store.
func UpdateStoreRecords(kind string, count int) {
	globalManager.storeRecords.WithLabelValues(kind).Set(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited increments the rate limited counter for an endpoint.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
