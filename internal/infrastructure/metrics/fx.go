package metrics

import (
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
)

// Module provides metrics for fx DI
var Module = fx.Module("metrics",
	fx.Provide(
		GetDefaultMetrics,
		func(m *Metrics) deps.MetricsRecorder {
			return m
		},
	),
)
