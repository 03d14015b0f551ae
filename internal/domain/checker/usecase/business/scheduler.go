package business

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/utils"
)

// BatchItem is one input of a batch: a loaded record or the error that prevented loading it
type BatchItem struct {
	Path   string
	Record *entities.AccountRecord
	Err    error
}

// BatchScheduler runs account workers with a fixed concurrency limit
type BatchScheduler struct {
	worker        deps.Worker
	store         deps.RecordStore
	metrics       deps.MetricsRecorder
	maxConcurrent int
	logger        zerolog.Logger
}

// NewBatchScheduler creates a scheduler that runs at most maxConcurrent workers at once
func NewBatchScheduler(
	worker deps.Worker,
	store deps.RecordStore,
	metrics deps.MetricsRecorder,
	maxConcurrent int,
	logger zerolog.Logger,
) *BatchScheduler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &BatchScheduler{
		worker:        worker,
		store:         store,
		metrics:       metrics,
		maxConcurrent: maxConcurrent,
		logger:        logger.With().Str("component", "batch_scheduler").Logger(),
	}
}

// Run processes every item exactly once and returns after all of them reached an outcome.
// Each item increments exactly one counter. Results are in completion order.
func (s *BatchScheduler) Run(ctx context.Context, items []BatchItem, counters *entities.BatchCounters) []entities.AccountResult {
	s.logger.Info().
		Int("accounts", len(items)).
		Int("max_concurrent", s.maxConcurrent).
		Msg("starting batch")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]entities.AccountResult, 0, len(items))
	)

	record := func(item BatchItem, outcome entities.Outcome, started time.Time) {
		duration := time.Since(started)
		counters.Inc(outcome.Status)
		s.metrics.RecordOutcome(outcome.Status, duration)

		result := entities.AccountResult{
			Path:     item.Path,
			Status:   outcome.Status,
			Detail:   outcome.Detail,
			Attempts: outcome.Attempts,
			Duration: duration,
		}
		if item.Record != nil {
			result.Phone = utils.MaskPhoneNumber(item.Record.Phone)
		}

		mu.Lock()
		results = append(results, result)
		mu.Unlock()
	}

	semaphore := make(chan struct{}, s.maxConcurrent)

	for _, item := range items {
		if item.Err != nil || item.Record == nil {
			detail := "record not loaded"
			if item.Err != nil {
				detail = item.Err.Error()
			}
			s.logger.Warn().Str("path", item.Path).Str("reason", detail).Msg("skipping record")
			record(item, entities.Error(detail), time.Now())
			continue
		}

		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			record(item, entities.Error(fmt.Sprintf("batch cancelled: %v", ctx.Err())), time.Now())
			continue
		}

		wg.Add(1)
		go func(item BatchItem) {
			defer wg.Done()
			defer func() { <-semaphore }()

			started := time.Now()
			outcome := s.process(ctx, item)
			record(item, outcome, started)
		}(item)
	}

	wg.Wait()

	s.logger.Info().
		Int("accounts", len(items)).
		Interface("counters", counters.Snapshot()).
		Msg("batch finished")

	return results
}

func (s *BatchScheduler) process(ctx context.Context, item BatchItem) (outcome entities.Outcome) {
	s.metrics.WorkerStarted()
	defer s.metrics.WorkerFinished()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("path", item.Path).Msg("worker panicked")
			outcome = entities.Error(fmt.Sprintf("panic: %v", r))
		}
	}()

	unlock, err := s.store.Lock(item.Path)
	if err != nil {
		if errors.Is(err, checkererrors.ErrRecordBusy) {
			s.logger.Warn().Str("path", item.Path).Msg("record is locked by another batch")
		}
		return entities.Error(fmt.Sprintf("lock record: %v", err))
	}
	defer unlock()

	return s.worker.Process(ctx, item.Record, item.Path)
}
