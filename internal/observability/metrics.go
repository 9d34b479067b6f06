package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus collectors describing one report run. Each
// Metrics owns its registry so a run pushes exactly its own series.
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded   *prometheus.CounterVec // labels: table={geo,counts,states}
	RowsDropped  *prometheus.CounterVec // labels: reason={missing_lat,missing_lon}
	RowsJoined   prometheus.Gauge
	StatesRanked prometheus.Gauge

	StageDuration  *prometheus.HistogramVec // labels: stage={load,build,print,render,export,publish}
	ChartsRendered *prometheus.CounterVec   // labels: outcome={success,error,skipped}

	RunSucceeded       prometheus.Gauge
	LastSuccessSeconds prometheus.Gauge
}

// NewMetrics creates the run metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homeless_report",
			Name:      "rows_loaded_total",
			Help:      "Rows read from each input table.",
		}, []string{"table"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homeless_report",
			Name:      "rows_dropped_total",
			Help:      "Geocode rows removed by the cleaner, by reason.",
		}, []string{"reason"}),
		RowsJoined: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "homeless_report",
			Name:      "rows_joined",
			Help:      "Count rows that matched a geocode row.",
		}),
		StatesRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "homeless_report",
			Name:      "states_ranked",
			Help:      "States present in the merged ranking before the drop policy.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "homeless_report",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each report stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homeless_report",
			Name:      "charts_total",
			Help:      "Charts handled by the renderer, by outcome.",
		}, []string{"outcome"}),
		RunSucceeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "homeless_report",
			Name:      "run_succeeded",
			Help:      "1 when the last run completed, 0 when it failed.",
		}),
		LastSuccessSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "homeless_report",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	m.Registry.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.RowsJoined,
		m.StatesRanked,
		m.StageDuration,
		m.ChartsRendered,
		m.RunSucceeded,
		m.LastSuccessSeconds,
	)

	return m
}

// Push sends the registry to a Prometheus Pushgateway under job, replacing
// the previous push for that job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
