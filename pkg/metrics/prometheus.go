// Package metrics provides Prometheus metrics for lineup pipeline runs and the report API.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the module exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline
	runsTotal          *prometheus.CounterVec
	runDuration        prometheus.Histogram
	filesRead          prometheus.Counter
	stintRowsRead      prometheus.Counter
	stintRowsFiltered  prometheus.Counter
	intervalsProcessed prometheus.Counter
	lineupsInScope     *prometheus.GaugeVec
	runErrors          *prometheus.CounterVec
	lastRunUnix        prometheus.Gauge

	// Sinks
	rowsWritten *prometheus.CounterVec

	// Workers
	workersActive prometheus.Gauge
	workerLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lineups",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
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

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Pipeline runs by mode and outcome",
	}, []string{"mode", "outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Wall time of a full pipeline run in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.filesRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "files_read_total",
		Help:      "Per-game stint files read",
	})

	m.stintRowsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stint_rows_read_total",
		Help:      "Stint rows decoded from input files",
	})

	m.stintRowsFiltered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stint_rows_filtered_total",
		Help:      "Stint rows dropped by the team filter",
	})

	m.intervalsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "intervals_processed_total",
		Help:      "Intervals aggregated and derived",
	})

	m.lineupsInScope = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lineups_in_scope",
		Help:      "Distinct lineups in the most recent table for a scope",
	}, []string{"scope"})

	m.runErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Fatal run errors by kind (config, discovery, schema, io)",
	}, []string{"kind"})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_success_unixtime",
		Help:      "Unix time of the last successful run",
	})

	m.rowsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_written_total",
		Help:      "Output rows written by sink",
	}, []string{"sink"})

	m.workersActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "active",
		Help:      "Workers currently processing an interval",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "task_duration_milliseconds",
		Help:      "Time a worker spends on one interval in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordRun records a finished run. outcome is "ok" or "error".
func RecordRun(mode, outcome string, durationMs float64) {
	globalManager.runsTotal.WithLabelValues(mode, outcome).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// RecordFileRead increments the files-read counter.
func RecordFileRead() {
	globalManager.filesRead.Inc()
}

// RecordStintRows adds decoded and filtered row counts.
func RecordStintRows(read, filtered int) {
	globalManager.stintRowsRead.Add(float64(read))
	globalManager.stintRowsFiltered.Add(float64(filtered))
}

// RecordIntervalProcessed increments the intervals counter.
func RecordIntervalProcessed() {
	globalManager.intervalsProcessed.Inc()
}

// UpdateLineupsInScope sets the lineup count for a scope label.
func UpdateLineupsInScope(scope string, count int) {
	globalManager.lineupsInScope.WithLabelValues(scope).Set(float64(count))
}

// RecordError counts a fatal error of the given kind.
func RecordError(kind string) {
	globalManager.runErrors.WithLabelValues(kind).Inc()
}

// MarkSuccess stamps the last successful run time.
func MarkSuccess(unix int64) {
	globalManager.lastRunUnix.Set(float64(unix))
}

// RecordRowsWritten adds rows written by a sink.
func RecordRowsWritten(sink string, rows int) {
	globalManager.rowsWritten.WithLabelValues(sink).Add(float64(rows))
}

// AddActiveWorkers adjusts the busy-worker gauge by delta.
func AddActiveWorkers(delta int) {
	globalManager.workersActive.Add(float64(delta))
}

// RecordWorkerTask records the duration of one worker task.
func RecordWorkerTask(durationMs float64) {
	globalManager.workerLatency.Observe(durationMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards RegisterRuntimeCollectors

// RegisterRuntimeCollectors adds Go runtime and process collectors to the
// custom registry. Only long-running processes call it; repeated calls are
// no-ops.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
