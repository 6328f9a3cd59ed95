// Package metrics provides Prometheus metrics for the attribution scoring service.
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

// Breaker state values exported by the provider_breaker_state gauge.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Scoring
	indexComputations    *prometheus.CounterVec
	indexErrors          *prometheus.CounterVec
	indexScore           *prometheus.HistogramVec
	comparativeEdge      *prometheus.HistogramVec
	scoringLatency       prometheus.Histogram
	leverClassifications *prometheus.CounterVec

	// Game-data provider
	providerRequests  *prometheus.CounterVec
	providerLatency   *prometheus.HistogramVec
	providerFallbacks *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
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

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before anything records or serves the
// registry; handlers built earlier keep scraping the previous one.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := append([]Option{WithPrometheusRegistry(registry)}, opts...)
	globalManager = NewManager(all...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "attrib",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval is how often callers should refresh gauge metrics.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.indexComputations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_computations_total",
		Help:      "Total number of index computations by mode and sport",
	}, []string{"mode", "sport"})

	m.indexErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_errors_total",
		Help:      "Index computations rejected by reason",
	}, []string{"reason"})

	m.indexScore = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_score",
		Help:      "Distribution of logistic index scores",
		Buckets:   prometheus.LinearBuckets(10, 10, 9),
	}, []string{"sport"})

	m.comparativeEdge = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparative_edge",
		Help:      "Distribution of signed comparative edges",
		Buckets:   prometheus.LinearBuckets(-20, 5, 9),
	}, []string{"sport"})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of end-to-end scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leverClassifications = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lever_classifications_total",
		Help:      "Classified post-game levers by status",
	}, []string{"status"})

	m.providerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_requests_total",
		Help:      "Game-data provider fetches by provider and outcome",
	}, []string{"provider", "outcome"})

	m.providerLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_latency_milliseconds",
		Help:      "Game-data provider fetch latency in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"provider"})

	m.providerFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_fallbacks_total",
		Help:      "Computations that fell back to default inputs after a provider failure",
	}, []string{"provider"})

	m.breakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Error responses by endpoint, method and error code",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordIndexComputation counts one successful computation.
func (m *Manager) RecordIndexComputation(mode, sport string) {
	if m.enabled {
		m.indexComputations.WithLabelValues(mode, sport).Inc()
	}
}

// RecordIndexError counts one rejected computation.
func (m *Manager) RecordIndexError(reason string) {
	if m.enabled {
		m.indexErrors.WithLabelValues(reason).Inc()
	}
}

// ObserveIndexScore records a logistic score.
func (m *Manager) ObserveIndexScore(sport string, score float64) {
	if m.enabled {
		m.indexScore.WithLabelValues(sport).Observe(score)
	}
}

// ObserveComparativeEdge records a comparative edge.
func (m *Manager) ObserveComparativeEdge(sport string, edge float64) {
	if m.enabled {
		m.comparativeEdge.WithLabelValues(sport).Observe(edge)
	}
}

// RecordScoringLatency records scoring latency in milliseconds.
func (m *Manager) RecordScoringLatency(latencyMs float64) {
	if m.enabled {
		m.scoringLatency.Observe(latencyMs)
	}
}

// RecordLeverStatus counts one classified lever.
func (m *Manager) RecordLeverStatus(status string) {
	if m.enabled {
		m.leverClassifications.WithLabelValues(status).Inc()
	}
}

// RecordProviderRequest records the outcome and latency of one fetch.
func (m *Manager) RecordProviderRequest(provider, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordProviderFallback counts one fallback to default inputs.
func (m *Manager) RecordProviderFallback(provider string) {
	if m.enabled {
		m.providerFallbacks.WithLabelValues(provider).Inc()
	}
}

// UpdateBreakerState sets the circuit breaker gauge.
func (m *Manager) UpdateBreakerState(name string, state int) {
	if m.enabled {
		m.breakerState.WithLabelValues(name).Set(float64(state))
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if m.enabled {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// Package-level helpers recording on the global manager.

// RecordIndexComputation counts one successful computation.
func RecordIndexComputation(mode, sport string) { globalManager.RecordIndexComputation(mode, sport) }

// RecordIndexError counts one rejected computation.
func RecordIndexError(reason string) { globalManager.RecordIndexError(reason) }

// ObserveIndexScore records a logistic score.
func ObserveIndexScore(sport string, score float64) { globalManager.ObserveIndexScore(sport, score) }

// ObserveComparativeEdge records a comparative edge.
func ObserveComparativeEdge(sport string, edge float64) {
	globalManager.ObserveComparativeEdge(sport, edge)
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) { globalManager.RecordScoringLatency(latencyMs) }

// RecordLeverStatus counts one classified lever.
func RecordLeverStatus(status string) { globalManager.RecordLeverStatus(status) }

// RecordProviderRequest records the outcome and latency of one fetch.
func RecordProviderRequest(provider, outcome string, latencyMs float64) {
	globalManager.RecordProviderRequest(provider, outcome, latencyMs)
}

// RecordProviderFallback counts one fallback to default inputs.
func RecordProviderFallback(provider string) { globalManager.RecordProviderFallback(provider) }

// UpdateBreakerState sets the circuit breaker gauge.
func UpdateBreakerState(name string, state int) { globalManager.UpdateBreakerState(name, state) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
