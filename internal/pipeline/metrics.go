package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records the outcome of one run in a private registry so it can be
// written as a node_exporter textfile. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	rows         *prometheus.GaugeVec
	dropped      *prometheus.GaugeVec
	categories   prometheus.Gauge
	stageSeconds *prometheus.GaugeVec
	lastSuccess  prometheus.Gauge
	failed       prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "disaster_etl_rows",
			Help: "Rows seen at each stage of the last run.",
		}, []string{"stage"}),
		dropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "disaster_etl_rows_dropped",
			Help: "Rows dropped by the last run, by reason.",
		}, []string{"reason"}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "disaster_etl_categories",
			Help: "Category columns derived by the last run.",
		}),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "disaster_etl_stage_duration_seconds",
			Help: "Wall time of each stage of the last run.",
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "disaster_etl_last_success_timestamp_seconds",
			Help: "Unix time the last successful run finished.",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "disaster_etl_last_run_failed",
			Help: "1 if the last run failed, 0 otherwise.",
		}),
	}
	m.registry.MustRegister(m.rows, m.dropped, m.categories, m.stageSeconds, m.lastSuccess, m.failed)
	return m
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile writes the registry in text exposition format, atomically.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageSeconds.WithLabelValues(stage).Set(d.Seconds())
}

func (m *Metrics) observeResult(res *Result) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues("messages").Set(float64(res.Load.MessageRows))
	m.rows.WithLabelValues("categories").Set(float64(res.Load.CategoryRows))
	m.rows.WithLabelValues("merged").Set(float64(res.Load.MergedRows))
	m.rows.WithLabelValues("cleaned").Set(float64(res.Clean.OutputRows))
	m.dropped.WithLabelValues("orphan_message").Set(float64(res.Load.OrphanMessages))
	m.dropped.WithLabelValues("orphan_category").Set(float64(res.Load.OrphanCategories))
	m.dropped.WithLabelValues("duplicate").Set(float64(res.Clean.Duplicates))
	m.categories.Set(float64(res.Clean.Schema.Len()))
}

func (m *Metrics) observeOutcome(err error, now time.Time) {
	if m == nil {
		return
	}
	if err != nil {
		m.failed.Set(1)
		return
	}
	m.failed.Set(0)
	m.lastSuccess.Set(float64(now.Unix()))
}
