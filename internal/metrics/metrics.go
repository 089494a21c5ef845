// Package metrics exposes Prometheus collectors for the file pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datasweeper"

// Outcome labels for ingested files.
const (
	OutcomeOK          = "ok"
	OutcomeUnsupported = "unsupported"
	OutcomeFailed      = "failed"
)

// Metrics holds the collectors recorded by the service and web layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	filesIngested *prometheus.CounterVec
	transforms    *prometheus.CounterVec
	exports       *prometheus.CounterVec
	rowsRemoved   prometheus.Counter
	cellsFilled   prometheus.Counter
	sessions      prometheus.Gauge
}

// New creates a Metrics instance with its own registry, including Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_ingested_total",
			Help:      "Uploaded files by detected format and outcome.",
		}, []string{"format", "outcome"}),
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transforms_total",
			Help:      "Cleaning transforms applied, by kind.",
		}, []string{"kind"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Artifacts produced, by target format.",
		}, []string{"format"}),
		rowsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_rows_removed_total",
			Help:      "Rows dropped by duplicate removal.",
		}),
		cellsFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_cells_filled_total",
			Help:      "Absent numeric cells replaced by a column mean.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "File sessions currently held in memory.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.filesIngested, m.transforms, m.exports,
		m.rowsRemoved, m.cellsFilled, m.sessions,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FileIngested records one file of a batch.
func (m *Metrics) FileIngested(format, outcome string) {
	if m == nil {
		return
	}
	if format == "" {
		format = "unknown"
	}
	m.filesIngested.WithLabelValues(format, outcome).Inc()
}

// DuplicatesRemoved records a duplicate removal pass.
func (m *Metrics) DuplicatesRemoved(rows int) {
	if m == nil {
		return
	}
	m.transforms.WithLabelValues("dedupe").Inc()
	m.rowsRemoved.Add(float64(rows))
}

// MissingFilled records a missing-value fill pass.
func (m *Metrics) MissingFilled(cells int) {
	if m == nil {
		return
	}
	m.transforms.WithLabelValues("fill").Inc()
	m.cellsFilled.Add(float64(cells))
}

// ColumnsSelected records a projection change.
func (m *Metrics) ColumnsSelected() {
	if m == nil {
		return
	}
	m.transforms.WithLabelValues("select").Inc()
}

// Exported records a produced artifact.
func (m *Metrics) Exported(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// SetSessions updates the live session gauge.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}
