package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// Metrics holds all Prometheus metrics for the account checker
type Metrics struct {
	// Account metrics
	AccountsChecked  *prometheus.CounterVec
	AccountDuration  prometheus.Histogram
	ActiveWorkers    prometheus.Gauge
	RecoveryAttempts prometheus.Counter

	// Batch metrics
	BatchesTotal  prometheus.Counter
	BatchAccounts prometheus.Histogram
	BatchDuration prometheus.Histogram

	// Kafka metrics
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
	KafkaProduceDuration  prometheus.Histogram
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return DefaultMetrics
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsChecked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_checker_accounts_checked_total",
				Help: "Total number of accounts checked by outcome",
			},
			[]string{"status"},
		),
		AccountDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "account_checker_account_duration_seconds",
			Help:    "Time spent processing one account in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "account_checker_active_workers",
			Help: "Current number of accounts being processed",
		}),
		RecoveryAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "account_checker_recovery_attempts_total",
			Help: "Total number of recovery attempts",
		}),

		BatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "account_checker_batches_total",
			Help: "Total number of finished batches",
		}),
		BatchAccounts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "account_checker_batch_accounts",
			Help:    "Number of accounts per batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "account_checker_batch_duration_seconds",
			Help:    "Duration of batches in seconds",
			Buckets: []float64{10, 30, 60, 300, 600, 1800, 3600},
		}),

		KafkaMessagesProduced: factory.NewCounter(prometheus.CounterOpts{
			Name: "account_checker_kafka_messages_produced_total",
			Help: "Total number of messages produced to Kafka",
		}),
		KafkaProduceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_checker_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"error_type"},
		),
		KafkaProduceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "account_checker_kafka_produce_duration_seconds",
			Help:    "Duration of Kafka produce operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// WorkerStarted marks an account as in progress
func (m *Metrics) WorkerStarted() {
	m.ActiveWorkers.Inc()
}

// WorkerFinished marks an account as done
func (m *Metrics) WorkerFinished() {
	m.ActiveWorkers.Dec()
}

// RecordOutcome records the terminal outcome of one account
func (m *Metrics) RecordOutcome(status entities.Status, duration time.Duration) {
	m.AccountsChecked.WithLabelValues(string(status)).Inc()
	m.AccountDuration.Observe(duration.Seconds())
}

// RecordRecoveryAttempt records one recovery attempt
func (m *Metrics) RecordRecoveryAttempt() {
	m.RecoveryAttempts.Inc()
}

// RecordBatch records a finished batch
func (m *Metrics) RecordBatch(accounts int, duration time.Duration) {
	m.BatchesTotal.Inc()
	m.BatchAccounts.Observe(float64(accounts))
	m.BatchDuration.Observe(duration.Seconds())
}

// RecordKafkaMessage records a Kafka message production with duration
func (m *Metrics) RecordKafkaMessage(duration time.Duration) {
	m.KafkaMessagesProduced.Inc()
	m.KafkaProduceDuration.Observe(duration.Seconds())
}

// RecordKafkaError records a Kafka production error with error type
func (m *Metrics) RecordKafkaError(errorType string) {
	if errorType == "" {
		errorType = "unknown"
	}
	m.KafkaProduceErrors.WithLabelValues(errorType).Inc()
}
