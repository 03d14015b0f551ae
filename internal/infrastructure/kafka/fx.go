package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/config"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/metrics"
)

// Module provides the batch report publisher for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewReportPublisherFx),
)

// NewReportPublisherFx creates the Kafka report producer, or a no-op publisher when Kafka is disabled
func NewReportPublisherFx(
	lc fx.Lifecycle,
	kafkaCfg *config.KafkaConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (deps.ReportPublisher, error) {
	if !kafkaCfg.Enabled {
		logger.Info().Msg("Kafka disabled, batch reports will not be published")
		return NoopPublisher{}, nil
	}

	producer, err := NewReportProducer(kafkaCfg, m, logger.With().Str("component", "report-producer").Logger())
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})

	return producer, nil
}
