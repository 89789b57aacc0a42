// Package metrics provides Prometheus metrics for the growthboard analytics service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the growthboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - analytics requests and how they were answered
	analyticsRequests    *prometheus.CounterVec
	sourceSelections     *prometheus.CounterVec
	noDataResponses      prometheus.Counter
	professionNotFound   prometheus.Counter
	assemblyLatency      *prometheus.HistogramVec
	professionsPerResult prometheus.Histogram

	// Upstream Metrics - feed health
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec

	// Cache Metrics - response cache effectiveness
	cacheLookups *prometheus.CounterVec
	cacheErrors  prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager with one built from opts on a fresh
// registry and returns that registry. Call it before serving; Record* calls
// are not synchronized with it.
func Configure(opts ...Option) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	opts = append(opts, WithPrometheusRegistry(registry))
	globalManager = NewManager(opts...)
	customRegistry = registry
	return registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "growthboard",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.analyticsRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "requests_total",
		Help:        "Analytics requests by mode and granularity",
		ConstLabels: m.customLabels,
	}, []string{"mode", "granularity"})

	m.sourceSelections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "source_selections_total",
		Help:        "Which upstream feed answered each request (fallback indicator)",
		ConstLabels: m.customLabels,
	}, []string{"source"})

	m.noDataResponses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "no_data_total",
		Help:        "Requests for which no upstream had data",
		ConstLabels: m.customLabels,
	})

	m.professionNotFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "profession_not_found_total",
		Help:        "Requests filtering by a profession the feed did not return",
		ConstLabels: m.customLabels,
	})

	m.assemblyLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "assembly_latency_milliseconds",
		Help:        "End to end time to fetch, aggregate and assemble a result",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"mode"})

	m.professionsPerResult = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "professions_per_result",
		Help:        "Number of professions in a summary result",
		Buckets:     []float64{0, 1, 5, 10, 25, 50, 100, 250},
		ConstLabels: m.customLabels,
	})

	m.upstreamCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "upstream_calls_total",
		Help:        "Upstream feed calls by feed and outcome",
		ConstLabels: m.customLabels,
	}, []string{"feed", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "upstream_latency_milliseconds",
		Help:        "Upstream feed call latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"feed"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "cache_lookups_total",
		Help:        "Response cache lookups by result (hit or miss)",
		ConstLabels: m.customLabels,
	}, []string{"result"})

	m.cacheErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "cache_errors_total",
		Help:        "Response cache read or write failures",
		ConstLabels: m.customLabels,
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds (user experience)",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "errors_by_component_total",
			Help:        "Total number of errors by component",
			ConstLabels: m.customLabels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "errors_by_type_total",
			Help:        "Total number of errors by type",
			ConstLabels: m.customLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "errors_by_endpoint_total",
			Help:        "Total number of errors by endpoint",
			ConstLabels: m.customLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "error_latency_milliseconds",
			Help:        "Latency of operations that resulted in errors",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.customLabels,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: m.customLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.customLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.customLabels,
	})
}

// RecordAnalyticsRequest counts an analytics request.
func RecordAnalyticsRequest(mode, granularity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.analyticsRequests.WithLabelValues(mode, granularity).Inc()
}

// RecordSourceSelection counts which feed answered a request.
func RecordSourceSelection(source string) {
	if !globalManager.enabled {
		return
	}
	globalManager.sourceSelections.WithLabelValues(source).Inc()
}

// RecordNoData counts a request no upstream could answer.
func RecordNoData() {
	if !globalManager.enabled {
		return
	}
	globalManager.noDataResponses.Inc()
}

// RecordProfessionNotFound counts a filter that matched nothing.
func RecordProfessionNotFound() {
	if !globalManager.enabled {
		return
	}
	globalManager.professionNotFound.Inc()
}

// RecordAssemblyLatency records end to end result latency in milliseconds.
func RecordAssemblyLatency(mode string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.assemblyLatency.WithLabelValues(mode).Observe(latencyMs)
}

// RecordProfessionsPerResult records the size of a summary's profession list.
func RecordProfessionsPerResult(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.professionsPerResult.Observe(float64(n))
}

// RecordUpstreamCall records one upstream feed call.
func RecordUpstreamCall(feed, outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.upstreamCalls.WithLabelValues(feed, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(feed).Observe(latencyMs)
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if !globalManager.enabled {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheError counts a cache failure.
func RecordCacheError() {
	if !globalManager.enabled {
		return
	}
	globalManager.cacheErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
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

// RefreshInterval returns how often gauge metrics should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
