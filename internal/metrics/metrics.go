// Package metrics exposes Prometheus metrics for classification runs and the report API.
package metrics

import (
	"FlowTagger/internal/model"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flowtagger"

// RunMetrics collects the metrics of a single batch run in its own registry.
type RunMetrics struct {
	registry *prometheus.Registry

	lines     prometheus.Counter
	records   *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	tagged    *prometheus.GaugeVec
	duration  prometheus.Gauge
	lastRunTS prometheus.Gauge
}

// NewRunMetrics creates and registers the run metrics.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Flow-log lines read.",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Flow-log records by validation result.",
		}, []string{"result"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_records_total",
			Help:      "Rejected flow-log records by reason.",
		}, []string{"reason"}),
		tagged: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tag_records",
			Help:      "Accepted records per tag in the last run.",
		}, []string{"tag"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRunTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last report was generated.",
		}),
	}

	m.registry.MustRegister(m.lines, m.records, m.rejected, m.tagged, m.duration, m.lastRunTS)
	return m
}

// Observe records the outcome of a run.
func (m *RunMetrics) Observe(report *model.Report, elapsed time.Duration) {
	m.lines.Add(float64(report.Stats.Lines))
	m.records.WithLabelValues("accepted").Add(float64(report.Stats.Accepted))
	m.records.WithLabelValues("rejected").Add(float64(report.Stats.RejectedTotal()))
	for reason, n := range report.Stats.Rejected {
		m.rejected.WithLabelValues(reason).Add(float64(n))
	}
	for _, row := range report.Tags {
		m.tagged.WithLabelValues(row.Tag).Set(float64(row.Count))
	}
	m.duration.Set(elapsed.Seconds())
	m.lastRunTS.Set(float64(report.GeneratedAt.Unix()))
}

// WriteTextfile writes the metrics in the text exposition format for the
// node exporter textfile collector.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
