// Package metrics provides Prometheus metrics for the evaluation sheet service.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Grid reads
	gridReads        *prometheus.CounterVec
	gridReadDuration *prometheus.HistogramVec
	gridRows         prometheus.Gauge
	gridColumns      prometheus.Gauge

	// Extraction and aggregation
	projectsExtracted prometheus.Gauge
	pairsSkipped      prometheus.Counter
	reports           *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "evalsheet",
		subsystem:        "reader",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_errors_total",
		Help:        "Failure envelopes returned, by endpoint and error type",
		ConstLabels: labels,
	}, []string{"endpoint", "error_type"})

	m.gridReads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "grid_reads_total",
		Help:        "Grid reads by source kind and outcome",
		ConstLabels: labels,
	}, []string{"source", "outcome"})

	m.gridReadDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "grid_read_duration_milliseconds",
		Help:        "Time to read one sheet in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"source"})

	m.gridRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "grid_rows",
		Help:        "Row count of the last grid read",
		ConstLabels: labels,
	})

	m.gridColumns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "grid_columns",
		Help:        "Column count of the last grid read",
		ConstLabels: labels,
	})

	m.projectsExtracted = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "projects_extracted",
		Help:        "Projects found by the last extraction",
		ConstLabels: labels,
	})

	m.pairsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "column_pairs_skipped_total",
		Help:        "Column pairs treated as blank (no name or zero total)",
		ConstLabels: labels,
	})

	m.reports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reports_total",
		Help:        "Reports built by mode",
		ConstLabels: labels,
	}, []string{"mode"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes in use",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutine_count",
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})
}

// RecordHTTPRequest records one request and its duration in milliseconds.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts a failure envelope.
func (m *Manager) RecordHTTPError(endpoint, errorType string) {
	m.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// RecordGridRead records one read attempt. rows and cols are ignored on
// failure.
func (m *Manager) RecordGridRead(source string, durationMs float64, rows, cols int, err error) {
	m.gridReadDuration.WithLabelValues(source).Observe(durationMs)
	if err != nil {
		m.gridReads.WithLabelValues(source, "error").Inc()
		return
	}
	m.gridReads.WithLabelValues(source, "ok").Inc()
	m.gridRows.Set(float64(rows))
	m.gridColumns.Set(float64(cols))
}

// RecordExtraction records the outcome of one extraction pass.
func (m *Manager) RecordExtraction(projects, skipped int) {
	m.projectsExtracted.Set(float64(projects))
	m.pairsSkipped.Add(float64(skipped))
}

// RecordReport counts a report built in mode.
func (m *Manager) RecordReport(mode string) {
	m.reports.WithLabelValues(mode).Inc()
}

// CollectSystem samples memory and goroutine gauges.
func (m *Manager) CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// Global recording functions delegate to the default manager.

// RecordHTTPRequest records an HTTP request on the default manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError counts a failure envelope on the default manager.
func RecordHTTPError(endpoint, errorType string) {
	globalManager.RecordHTTPError(endpoint, errorType)
}

// RecordGridRead records a grid read on the default manager.
func RecordGridRead(source string, durationMs float64, rows, cols int, err error) {
	globalManager.RecordGridRead(source, durationMs, rows, cols, err)
}

// RecordExtraction records an extraction on the default manager.
func RecordExtraction(projects, skipped int) {
	globalManager.RecordExtraction(projects, skipped)
}

// RecordReport counts a report on the default manager.
func RecordReport(mode string) {
	globalManager.RecordReport(mode)
}

// CollectSystem samples system gauges on the default manager.
func CollectSystem() {
	globalManager.CollectSystem()
}

// Configure rebuilds the default manager on a fresh registry with opts.
// Call it once at startup, before any handler captures GetRegistry.
func Configure(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(reg))...)
	customRegistry = reg
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
