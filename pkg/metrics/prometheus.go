// Package metrics provides Prometheus metrics for spresults runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store query latency buckets in milliseconds.
var defaultQueryBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Manager manages all Prometheus metrics for a run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Document flow
	documentsFetched *prometheus.CounterVec
	documentsSkipped *prometheus.CounterVec
	malformedStages  prometheus.Counter

	// Report output
	rowsWritten  *prometheus.CounterVec
	schemaGroups prometheus.Gauge

	// Store
	queryLatency prometheus.Histogram
	queryErrors  prometheus.Counter

	runDuration prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics in the exported textfile.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "spresults",
		subsystem:        "report",
		histogramBuckets: defaultQueryBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.documentsFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "documents_fetched_total",
		Help:        "Documents returned by the store, by processing mode",
		ConstLabels: m.constLabels,
	}, []string{"mode"})

	m.documentsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "documents_skipped_total",
		Help:        "Documents that produced no row, by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.malformedStages = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "malformed_stages_total",
		Help:        "Stages skipped for missing name, start or end",
		ConstLabels: m.constLabels,
	})

	m.rowsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_written_total",
		Help:        "CSV rows written, by report",
		ConstLabels: m.constLabels,
	}, []string{"report"})

	m.schemaGroups = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "schema_groups",
		Help:        "Distinct (command, schema version) tables written",
		ConstLabels: m.constLabels,
	})

	m.queryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_query_latency_milliseconds",
		Help:        "Serial number range query latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.queryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_query_errors_total",
		Help:        "Failed serial number range queries",
		ConstLabels: m.constLabels,
	})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of the last run",
		ConstLabels: m.constLabels,
	})
}

// DocumentFetched counts a document returned for the given mode.
func (m *Manager) DocumentFetched(mode string) { m.documentsFetched.WithLabelValues(mode).Inc() }

// DocumentSkipped counts a document that produced no row.
func (m *Manager) DocumentSkipped(reason string) { m.documentsSkipped.WithLabelValues(reason).Inc() }

// MalformedStages adds n skipped stages.
func (m *Manager) MalformedStages(n int) { m.malformedStages.Add(float64(n)) }

// RowWritten counts a CSV row for the given report.
func (m *Manager) RowWritten(report string) { m.rowsWritten.WithLabelValues(report).Inc() }

// SchemaGroups sets the number of grouped tables.
func (m *Manager) SchemaGroups(n int) { m.schemaGroups.Set(float64(n)) }

// QueryLatency records one store query latency in milliseconds.
func (m *Manager) QueryLatency(ms float64) { m.queryLatency.Observe(ms) }

// QueryError counts a failed store query.
func (m *Manager) QueryError() { m.queryErrors.Inc() }

// RunDuration sets the wall time of the run in seconds.
func (m *Manager) RunDuration(seconds float64) { m.runDuration.Set(seconds) }

// WriteTextfile writes every metric in the node-exporter textfile format.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	return nil
}

// Registry returns the registry the manager's metrics live in.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
