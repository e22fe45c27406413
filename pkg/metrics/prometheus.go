// Package metrics provides Prometheus metrics for the wingmate coaching
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service registers.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Activity pipeline
	eventsRecorded  prometheus.Counter
	eventsDuplicate prometheus.Counter

	// Progress updater
	progressUpdates          prometheus.Counter
	progressConflicts        prometheus.Counter
	progressRetriesExhausted prometheus.Counter

	// Insights
	insightGenerations      prometheus.Counter
	insightGenerationErrors prometheus.Counter
	insightCacheHits        prometheus.Counter
	insightCacheMisses      prometheus.Counter

	// Coach calls
	coachRequests  prometheus.Counter
	coachFallbacks prometheus.Counter
	coachLatency   prometheus.Histogram

	// Best-effort read paths
	heatmapDegradations prometheus.Counter

	// Store and HTTP performance
	storeLatency        *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process health
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

// Default latency buckets in milliseconds.
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 15000, 30000}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wingmate",
		subsystem:        "coaching",
		histogramBuckets: defaultBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.eventsRecorded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_recorded_total",
		Help: "Approach and timer events accepted and persisted.",
	})
	m.eventsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_duplicate_total",
		Help: "Event submissions acknowledged as duplicates.",
	})

	m.progressUpdates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "progress_updates_total",
		Help: "Profile aggregate writes that landed.",
	})
	m.progressConflicts = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "progress_conflicts_total",
		Help: "Optimistic-concurrency conflicts on the profile row.",
	})
	m.progressRetriesExhausted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "progress_retries_exhausted_total",
		Help: "Progress updates abandoned after the retry budget.",
	})

	m.insightGenerations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "insight_generations_total",
		Help: "Weekly insight batches generated and persisted.",
	})
	m.insightGenerationErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "insight_generation_errors_total",
		Help: "Insight generations aborted by store failures.",
	})
	m.insightCacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "insight_cache_hits_total",
		Help: "Latest-insight lookups served from Redis.",
	})
	m.insightCacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "insight_cache_misses_total",
		Help: "Latest-insight lookups that fell through to Postgres.",
	})

	m.coachRequests = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "coach_requests_total",
		Help: "Debrief requests sent to the completion API.",
	})
	m.coachFallbacks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "coach_fallbacks_total",
		Help: "Debriefs answered with the canned fallback after timeout or failure.",
	})
	m.coachLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "coach_latency_ms",
		Help:    "Completion API round-trip latency in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.heatmapDegradations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "heatmap_degradations_total",
		Help: "Heatmap reads degraded to an empty result by store failures.",
	})

	m.storeLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "store_latency_ms",
		Help:    "Postgres operation latency in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"operation"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method, and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_bytes",
		Help: "Allocated heap bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutines",
		Help: "Current goroutine count.",
	})
	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "system_gc_pause_ms",
		Help:    "Average GC pause time in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	return m
}

// GetRegistry returns the registry behind the global manager, for the
// /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func RecordEventRecorded()  { globalManager.eventsRecorded.Inc() }
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

func RecordProgressUpdate()          { globalManager.progressUpdates.Inc() }
func RecordProgressConflict()        { globalManager.progressConflicts.Inc() }
func RecordProgressRetryExhausted()  { globalManager.progressRetriesExhausted.Inc() }

func RecordInsightGeneration()      { globalManager.insightGenerations.Inc() }
func RecordInsightGenerationError() { globalManager.insightGenerationErrors.Inc() }
func RecordInsightCacheHit()        { globalManager.insightCacheHits.Inc() }
func RecordInsightCacheMiss()       { globalManager.insightCacheMisses.Inc() }

func RecordCoachRequest()                  { globalManager.coachRequests.Inc() }
func RecordCoachFallback()                 { globalManager.coachFallbacks.Inc() }
func RecordCoachLatency(durationMs float64) { globalManager.coachLatency.Observe(durationMs) }

func RecordHeatmapDegradation() { globalManager.heatmapDegradations.Inc() }

func RecordStoreLatency(operation string, durationMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(durationMs)
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }
func RecordSystemGCPauseTime(durationMs float64) {
	globalManager.systemGCPauseTime.Observe(durationMs)
}
