// Package metrics provides Prometheus metrics for the eventpulse service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exposed by the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Event source
	snapshotUpdates prometheus.Counter
	snapshotSize    prometheus.Gauge
	decodeRejects   *prometheus.CounterVec

	// Pipeline
	viewComputeLatency   prometheus.Histogram
	viewEventsReturned   prometheus.Histogram
	recommendLatency     prometheus.Histogram
	recommendationsTotal prometheus.Counter
	personalityFallbacks prometheus.Counter

	// Calendar and sessions
	calendarLookups  *prometheus.CounterVec
	staleGenerations prometheus.Counter
	activeSessions   prometheus.Gauge

	// Writes
	eventWrites *prometheus.CounterVec

	// Importer
	importOutcomes *prometheus.CounterVec
	breakerState   *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // dedicated registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// Init rebuilds the global metrics on a fresh registry with the given
// options. Call it once at startup, before anything records.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithRegisterer(registry))...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "eventpulse",
		subsystem:      "discovery",
		latencyBuckets: DefaultLatencyBuckets(),
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// DefaultLatencyBuckets returns the millisecond buckets used when none are configured.
func DefaultLatencyBuckets() []float64 {
	return []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.snapshotUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "snapshot_updates_total",
		Help: "Number of event snapshots received from the store subscription",
	})
	m.snapshotSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "snapshot_events",
		Help: "Number of decoded events in the current snapshot",
	})
	m.decodeRejects = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "decode_rejects_total",
		Help: "Documents excluded at the collection boundary, by collection",
	}, []string{"collection"})

	m.viewComputeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "view_compute_milliseconds",
		Help:    "Time spent filtering, sorting and grouping a view",
		Buckets: m.latencyBuckets,
	})
	m.viewEventsReturned = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "view_events",
		Help:    "Number of events surviving the filter stage per view",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
	m.recommendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "recommendation_milliseconds",
		Help:    "Time spent scoring recommendations including calendar lookups",
		Buckets: m.latencyBuckets,
	})
	m.recommendationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "recommendations_total",
		Help: "Number of recommendation rails computed",
	})
	m.personalityFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "personality_filter_fallbacks_total",
		Help: "Personality filters discarded because they matched nothing",
	})

	m.calendarLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "calendar_lookups_total",
		Help: "Calendar availability lookups by outcome",
	}, []string{"outcome"})
	m.staleGenerations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "session_stale_results_total",
		Help: "Asynchronous session results dropped because inputs changed meanwhile",
	})
	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "sessions_active",
		Help: "Number of live view sessions",
	})

	m.eventWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "event_writes_total",
		Help: "Event create/delete attempts by operation and result",
	}, []string{"operation", "result"})

	m.importOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "importer", ConstLabels: labels,
		Name: "events_total",
		Help: "Imported events by outcome (inserted, duplicate, skipped, failed)",
	}, []string{"outcome"})
	m.breakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "importer", ConstLabels: labels,
		Name: "breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "http_requests_total",
		Help: "Total HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "http_errors_total",
		Help: "HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name: "memory_bytes",
		Help: "Allocated heap bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name: "goroutines",
		Help: "Number of goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name:    "gc_pause_milliseconds",
		Help:    "Average GC pause in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
	})
}

// RecordSnapshot records a new event snapshot of the given size.
func RecordSnapshot(size int) {
	globalManager.snapshotUpdates.Inc()
	globalManager.snapshotSize.Set(float64(size))
}

// RecordDecodeReject counts a document excluded during decoding.
func RecordDecodeReject(collection string) {
	globalManager.decodeRejects.WithLabelValues(collection).Inc()
}

// RecordViewCompute records the duration of a ComputeView call and its result size.
func RecordViewCompute(latencyMs float64, events int) {
	globalManager.viewComputeLatency.Observe(latencyMs)
	globalManager.viewEventsReturned.Observe(float64(events))
}

// RecordRecommendation records the duration of a recommendation pass.
func RecordRecommendation(latencyMs float64) {
	globalManager.recommendLatency.Observe(latencyMs)
	globalManager.recommendationsTotal.Inc()
}

// RecordPersonalityFallback counts a discarded personality filter.
func RecordPersonalityFallback() {
	globalManager.personalityFallbacks.Inc()
}

// RecordCalendarLookup counts a calendar lookup by outcome.
func RecordCalendarLookup(outcome string) {
	globalManager.calendarLookups.WithLabelValues(outcome).Inc()
}

// RecordStaleGeneration counts a session result dropped as stale.
func RecordStaleGeneration() {
	globalManager.staleGenerations.Inc()
}

// UpdateActiveSessions sets the number of live sessions.
func UpdateActiveSessions(n int) {
	globalManager.activeSessions.Set(float64(n))
}

// RecordEventWrite counts an event write attempt.
func RecordEventWrite(operation, result string) {
	globalManager.eventWrites.WithLabelValues(operation, result).Inc()
}

// RecordImport counts an importer outcome.
func RecordImport(outcome string) {
	globalManager.importOutcomes.WithLabelValues(outcome).Inc()
}

// UpdateBreakerState publishes a breaker state value.
func UpdateBreakerState(name string, state int) {
	globalManager.breakerState.WithLabelValues(name).Set(float64(state))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

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

// GetRegistry returns the registry backing the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
