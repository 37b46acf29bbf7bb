package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics reports configuration fallbacks for one component.
type Metrics struct {
	LoadTimestamp  prometheus.Gauge
	FallbacksTotal *prometheus.CounterVec
	FallbackActive prometheus.Gauge
}

// NewMetrics registers tlwd_<component>_config_* collectors with reg.
func NewMetrics(reg prometheus.Registerer, component string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tlwd",
			Subsystem: component,
			Name:      "config_load_timestamp",
			Help:      "Unix time of the last configuration load.",
		}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tlwd",
			Subsystem: component,
			Name:      "config_fallbacks_total",
			Help:      "Configuration values replaced by their default.",
		}, []string{"field"}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tlwd",
			Subsystem: component,
			Name:      "config_fallback_active",
			Help:      "1 while any configuration value uses a fallback.",
		}),
	}
}

// Loaded records a completed load.
func (m *Metrics) Loaded(fallbacks []string) {
	for _, field := range fallbacks {
		m.FallbacksTotal.WithLabelValues(field).Inc()
	}
	if len(fallbacks) > 0 {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
	m.LoadTimestamp.SetToCurrentTime()
}
