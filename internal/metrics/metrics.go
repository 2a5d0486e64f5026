// Package metrics provides Prometheus instrumentation for ingestion runs.
// Runs are short-lived, so metrics are written to a node_exporter textfile
// instead of being served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"featurestore/internal/errors"
)

// Metrics holds the collectors for one process. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	documentsExported prometheus.Counter
	pagesFetched      prometheus.Counter
	rowsWritten       *prometheus.CounterVec
	runDuration       prometheus.Gauge
	lastSuccess       prometheus.Gauge
	runFailures       *prometheus.CounterVec
}

// New registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documentsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "featurestore_documents_exported_total",
			Help: "Total number of documents fetched from the document store",
		}),
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "featurestore_pages_fetched_total",
			Help: "Total number of non-empty pages fetched",
		}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "featurestore_rows_written_total",
			Help: "Total number of rows written by output file",
		}, []string{"file"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "featurestore_run_duration_seconds",
			Help: "Duration of the last ingestion run in seconds",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "featurestore_last_success_timestamp_seconds",
			Help: "Unix time of the last successful ingestion run",
		}),
		runFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "featurestore_run_failures_total",
			Help: "Total number of failed ingestion runs by error code",
		}, []string{"code"}),
	}
	m.registry.MustRegister(
		m.documentsExported,
		m.pagesFetched,
		m.rowsWritten,
		m.runDuration,
		m.lastSuccess,
		m.runFailures,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) PageFetched(documents int) {
	if m == nil {
		return
	}
	m.pagesFetched.Inc()
	m.documentsExported.Add(float64(documents))
}

// RowsWritten counts rows persisted to one of "feature_store", "train" or "test".
func (m *Metrics) RowsWritten(file string, rows int) {
	if m == nil {
		return
	}
	m.rowsWritten.WithLabelValues(file).Add(float64(rows))
}

// RunFinished records the outcome of a run that started at start.
func (m *Metrics) RunFinished(start time.Time, err error) {
	if m == nil {
		return
	}
	m.runDuration.Set(time.Since(start).Seconds())
	if err != nil {
		m.runFailures.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return
	}
	m.lastSuccess.SetToCurrentTime()
}

// WriteTextfile writes every collector to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(errors.ErrStorage, err, "writing metrics to %s", path)
	}
	return nil
}
