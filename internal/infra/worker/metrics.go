package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tlwd-backend/internal/pkg/config"
)

// Metrics covers sweep runs. Per donation outcomes are counted by the
// donation service itself.
type Metrics struct {
	Config      *config.Metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram
	LastSuccess prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Config: config.NewMetrics(reg, "worker"),
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tlwd",
			Subsystem: "worker",
			Name:      "reconcile_runs_total",
			Help:      "Reconciliation sweeps by status (success, failure).",
		}, []string{"status"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tlwd",
			Subsystem: "worker",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of one reconciliation sweep.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 300, 600},
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tlwd",
			Subsystem: "worker",
			Name:      "reconcile_last_success_timestamp",
			Help:      "Unix time of the last successful sweep.",
		}),
	}
}

// RecordRun records one sweep that took d and ended with err.
func (m *Metrics) RecordRun(err error, d time.Duration) {
	m.RunDuration.Observe(d.Seconds())
	if err != nil {
		m.RunsTotal.WithLabelValues("failure").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("success").Inc()
	m.LastSuccess.SetToCurrentTime()
}
