package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides the backend provider configuration layer
var Module = fx.Module("provider",
	fx.Provide(
		NewStore,
		NewFactory,
		NewProbe,
		NewLogAuditSink,
		NewMetrics,
		NewService,
		NewHandler,
	),
	fx.Invoke(
		RegisterMetrics,
		RegisterRoutes,
	),
)

// RegisterMetrics adds the provider collectors to the default registry
func RegisterMetrics(m *Metrics) error {
	return m.Register(prometheus.DefaultRegisterer)
}
