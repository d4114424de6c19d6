// Package metrics provides Prometheus metrics for the burst coverage evaluator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the evaluator service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Evaluation metrics
	evaluationsTotal   prometheus.Counter
	evaluationsFailed  prometheus.Counter
	evaluationDuration prometheus.Histogram
	burstsObserved     prometheus.Counter
	malformedBursts    prometheus.Counter
	windowsProduced    prometheus.Counter
	matchesByTier      *prometheus.CounterVec
	selectedByTier     *prometheus.CounterVec
	taskFailures       *prometheus.CounterVec

	// Reference database metrics
	referenceLoads      *prometheus.CounterVec
	referencePartitions prometheus.Gauge
	referenceCacheHits  prometheus.Counter

	// Worker metrics
	workerTaskLatency *prometheus.HistogramVec
	workerActiveTasks *prometheus.GaugeVec

	// Store metrics
	storedBursts prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "burstcov",
		subsystem:        "evaluator",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.evaluationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("evaluations_total"),
		Help: "Total number of evaluation runs started",
	})
	m.evaluationsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("evaluations_failed_total"),
		Help: "Evaluation runs that could not run at all (reference data unavailable)",
	})
	m.evaluationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("evaluation_duration_milliseconds"),
		Help:    "Wall time of one evaluation run in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	m.burstsObserved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("bursts_observed_total"),
		Help: "Burst products fed into evaluations",
	})
	m.malformedBursts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("malformed_burst_identifiers_total"),
		Help: "Product identifiers skipped because they could not be parsed",
	})
	m.windowsProduced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("time_windows_total"),
		Help: "Acquisition time windows produced by the clusterer",
	})
	m.matchesByTier = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("matches_total"),
		Help: "Non-empty (partition, window) matches by coverage tier",
	}, []string{"tier"})
	m.selectedByTier = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("selected_product_sets_total"),
		Help: "Product sets selected after redundant-subset elimination, by tier",
	}, []string{"tier"})
	m.taskFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("task_failures_total"),
		Help: "Orbit or window tasks that failed and were excluded from aggregation",
	}, []string{"level"})

	m.referenceLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("reference_loads_total"),
		Help: "Reference database load attempts by outcome",
	}, []string{"outcome"})
	m.referencePartitions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("reference_partitions"),
		Help: "Tile partitions in the most recently loaded reference table",
	})
	m.referenceCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("reference_cache_fallbacks_total"),
		Help: "Reference loads served from the local cache after a remote failure",
	})

	m.workerTaskLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("worker_task_latency_milliseconds"),
		Help:    "Latency of individual pool tasks in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"pool"})
	m.workerActiveTasks = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("worker_active_tasks"),
		Help: "Tasks currently executing per pool",
	}, []string{"pool"})

	m.storedBursts = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("stored_bursts"),
		Help: "Burst products currently held by the ingest store",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    m.name("http_request_duration_milliseconds"),
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordEvaluation counts a started evaluation.
func RecordEvaluation() {
	if globalManager.enabled {
		globalManager.evaluationsTotal.Inc()
	}
}

// RecordEvaluationFailed counts an evaluation that could not run.
func RecordEvaluationFailed() {
	if globalManager.enabled {
		globalManager.evaluationsFailed.Inc()
	}
}

// RecordEvaluationDuration observes the wall time of one evaluation.
func RecordEvaluationDuration(latencyMs float64) {
	if globalManager.enabled {
		globalManager.evaluationDuration.Observe(latencyMs)
	}
}

// RecordBurstsObserved adds n bursts to the observed counter.
func RecordBurstsObserved(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.burstsObserved.Add(float64(n))
	}
}

// RecordMalformedBursts adds n skipped identifiers.
func RecordMalformedBursts(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.malformedBursts.Add(float64(n))
	}
}

// RecordWindows adds n produced time windows.
func RecordWindows(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.windowsProduced.Add(float64(n))
	}
}

// RecordMatch counts one non-empty match for tier.
func RecordMatch(tier string) {
	if globalManager.enabled {
		globalManager.matchesByTier.WithLabelValues(tier).Inc()
	}
}

// RecordSelected counts one finalized product set for tier.
func RecordSelected(tier string) {
	if globalManager.enabled {
		globalManager.selectedByTier.WithLabelValues(tier).Inc()
	}
}

// RecordTaskFailure counts one failed task at level ("orbit" or "window").
func RecordTaskFailure(level string) {
	if globalManager.enabled {
		globalManager.taskFailures.WithLabelValues(level).Inc()
	}
}

// RecordReferenceLoad counts a reference load attempt by outcome.
func RecordReferenceLoad(outcome string) {
	if globalManager.enabled {
		globalManager.referenceLoads.WithLabelValues(outcome).Inc()
	}
}

// UpdateReferencePartitions sets the partition gauge.
func UpdateReferencePartitions(count int) {
	if globalManager.enabled {
		globalManager.referencePartitions.Set(float64(count))
	}
}

// RecordReferenceCacheFallback counts a load served from the local cache.
func RecordReferenceCacheFallback() {
	if globalManager.enabled {
		globalManager.referenceCacheHits.Inc()
	}
}

// RecordWorkerTaskLatency observes one task's latency for pool.
func RecordWorkerTaskLatency(pool string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerTaskLatency.WithLabelValues(pool).Observe(latencyMs)
	}
}

// AddWorkerActiveTasks moves the active task gauge for pool by delta.
func AddWorkerActiveTasks(pool string, delta int) {
	if globalManager.enabled {
		globalManager.workerActiveTasks.WithLabelValues(pool).Add(float64(delta))
	}
}

// UpdateStoredBursts sets the ingest store gauge.
func UpdateStoredBursts(count int) {
	if globalManager.enabled {
		globalManager.storedBursts.Set(float64(count))
	}
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
