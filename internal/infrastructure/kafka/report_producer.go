package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/config"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/metrics"
)

// ReportProducer publishes finished batch reports
type ReportProducer struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewReportProducer creates a Kafka producer for batch reports
func NewReportProducer(cfg *config.KafkaConfig, m *metrics.Metrics, logger zerolog.Logger) (*ReportProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}
	if cfg.TopicBatchCompleted == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 500 * time.Millisecond
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.MaxMessageBytes = 4 << 20
	saramaConfig.Version = sarama.V2_6_0_0
	saramaConfig.ClientID = "account-checker-report-producer"

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create report Kafka producer")
		return nil, err
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.TopicBatchCompleted).
		Msg("Report Kafka producer initialized")

	return newReportProducer(producer, cfg.TopicBatchCompleted, m, logger), nil
}

func newReportProducer(producer sarama.SyncProducer, topic string, m *metrics.Metrics, logger zerolog.Logger) *ReportProducer {
	return &ReportProducer{
		producer: producer,
		topic:    topic,
		metrics:  m,
		logger:   logger,
	}
}

// PublishBatchReport sends the batch report keyed by batch id
func (p *ReportProducer) PublishBatchReport(ctx context.Context, report *entities.BatchReport) error {
	start := time.Now()

	bytes, err := json.Marshal(NewBatchCompletedEvent(report))
	if err != nil {
		p.metrics.RecordKafkaError("marshal_failed")
		return fmt.Errorf("failed to marshal batch report: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(report.ID),
		Value: sarama.ByteEncoder(bytes),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.metrics.RecordKafkaError("send_failed")
		p.logger.Error().Err(err).
			Str("topic", p.topic).
			Str("batch_id", report.ID).
			Msg("failed to send batch report")
		return err
	}

	p.metrics.RecordKafkaMessage(time.Since(start))
	p.logger.Info().
		Str("topic", p.topic).
		Str("batch_id", report.ID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Batch report sent")

	return nil
}

// Close closes the Kafka producer
func (p *ReportProducer) Close() error {
	if p.producer == nil {
		return nil
	}

	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("failed to close report producer")
		return err
	}

	p.logger.Info().Msg("Report producer closed")
	return nil
}

// NoopPublisher drops reports when Kafka is disabled
type NoopPublisher struct{}

func (NoopPublisher) PublishBatchReport(context.Context, *entities.BatchReport) error {
	return nil
}

var (
	_ deps.ReportPublisher = (*ReportProducer)(nil)
	_ deps.ReportPublisher = NoopPublisher{}
)
