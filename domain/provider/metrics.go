package provider

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks provider switch outcomes and latency. Collectors are
// created unregistered so tests can construct a Metrics without touching
// the default registry; the fx module registers them at startup.
type Metrics struct {
	switchTotal    *prometheus.CounterVec
	switchDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		switchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sho",
			Subsystem: "provider",
			Name:      "switch_total",
			Help:      "Provider switch attempts by outcome.",
		}, []string{"outcome", "kind"}),
		switchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sho",
			Subsystem: "provider",
			Name:      "switch_duration_seconds",
			Help:      "End-to-end provider switch latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}
}

// Register adds the collectors to a registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if err := reg.Register(m.switchTotal); err != nil {
		return err
	}
	return reg.Register(m.switchDuration)
}

func (m *Metrics) observeSwitch(outcome string, kind Kind, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.switchTotal.WithLabelValues(outcome, string(kind)).Inc()
	m.switchDuration.Observe(elapsed.Seconds())
}
