package business

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
)

// maxRetainedBatches bounds the number of reports kept for GetBatch
const maxRetainedBatches = 100

// UseCase runs account check batches and keeps their reports
type UseCase struct {
	scheduler  *BatchScheduler
	store      deps.RecordStore
	metrics    deps.MetricsRecorder
	publisher  deps.ReportPublisher
	repository deps.BatchRepository
	logger     zerolog.Logger

	mu      sync.RWMutex
	batches map[string]*batchRun
	order   []string

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// batchRun is a batch report together with its live counters
type batchRun struct {
	report   *entities.BatchReport
	counters *entities.BatchCounters
}

// NewUseCase creates a new checker use case
func NewUseCase(
	scheduler *BatchScheduler,
	store deps.RecordStore,
	metrics deps.MetricsRecorder,
	publisher deps.ReportPublisher,
	repository deps.BatchRepository,
	logger zerolog.Logger,
) *UseCase {
	ctx, cancel := context.WithCancel(context.Background())
	return &UseCase{
		scheduler:  scheduler,
		store:      store,
		metrics:    metrics,
		publisher:  publisher,
		repository: repository,
		logger:     logger,
		batches:    make(map[string]*batchRun),
		baseCtx:    ctx,
		cancel:     cancel,
	}
}

// ResolvePaths lists the record files under dir in lexical order
func (u *UseCase) ResolvePaths(dir string) ([]string, error) {
	paths, err := u.store.List(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list records in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// RunBatch processes the records at paths and returns the finished report
func (u *UseCase) RunBatch(ctx context.Context, paths []string) (*entities.BatchReport, error) {
	run := u.register(paths)
	u.execute(ctx, run, paths)
	return u.snapshot(run), nil
}

// StartBatch launches a batch in the background. The batch outlives the request
// context and is cancelled only by Close.
func (u *UseCase) StartBatch(ctx context.Context, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", checkererrors.ErrEmptyBatch
	}
	if err := u.baseCtx.Err(); err != nil {
		return "", checkererrors.ErrShuttingDown
	}

	run := u.register(paths)

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.execute(u.baseCtx, run, paths)
	}()

	u.logger.Info().
		Str("batch_id", run.report.ID).
		Int("accounts", len(paths)).
		Msg("Batch started")

	return run.report.ID, nil
}

// GetBatch returns a copy of a running or finished batch report
func (u *UseCase) GetBatch(ctx context.Context, id string) (*entities.BatchReport, error) {
	u.mu.RLock()
	run, ok := u.batches[id]
	u.mu.RUnlock()
	if !ok {
		return nil, checkererrors.ErrBatchNotFound
	}
	return u.snapshot(run), nil
}

// Close cancels running batches and waits for them to finish
func (u *UseCase) Close() {
	u.cancel()
	u.wg.Wait()
}

func (u *UseCase) register(paths []string) *batchRun {
	run := &batchRun{
		report: &entities.BatchReport{
			ID:        uuid.NewString(),
			State:     entities.BatchStateRunning,
			StartedAt: time.Now().UTC(),
			Results:   make([]entities.AccountResult, 0, len(paths)),
		},
		counters: entities.NewBatchCounters(),
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.batches[run.report.ID] = run
	u.order = append(u.order, run.report.ID)
	u.evictLocked()

	return run
}

// evictLocked drops the oldest completed reports beyond the retention limit
func (u *UseCase) evictLocked() {
	if len(u.order) <= maxRetainedBatches {
		return
	}

	kept := u.order[:0]
	excess := len(u.order) - maxRetainedBatches
	for _, id := range u.order {
		if excess > 0 && u.batches[id].report.State == entities.BatchStateCompleted {
			delete(u.batches, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	u.order = kept
}

func (u *UseCase) execute(ctx context.Context, run *batchRun, paths []string) {
	logger := u.logger.With().Str("batch_id", run.report.ID).Logger()

	items := u.load(paths, logger)
	results := u.scheduler.Run(ctx, items, run.counters)

	u.mu.Lock()
	run.report.Results = results
	run.report.State = entities.BatchStateCompleted
	run.report.FinishedAt = time.Now().UTC()
	run.report.Counters = run.counters.Snapshot()
	u.mu.Unlock()

	report := u.snapshot(run)
	u.metrics.RecordBatch(len(paths), report.FinishedAt.Sub(report.StartedAt))

	logger.Info().
		Int("accounts", report.Total()).
		Int("active", report.Counters[entities.StatusActive]).
		Int("recovered", report.Counters[entities.StatusRecovered]).
		Int("permanently_blocked", report.Counters[entities.StatusPermanentlyBlocked]).
		Int("errors", report.Counters[entities.StatusError]).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Batch completed")

	// Reporting must not be cut short by the batch context
	reportCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := u.publisher.PublishBatchReport(reportCtx, report); err != nil {
		logger.Error().Err(err).Msg("Failed to publish batch report")
	}
	if err := u.repository.SaveBatch(reportCtx, report); err != nil {
		logger.Error().Err(err).Msg("Failed to save batch report")
	}
}

func (u *UseCase) load(paths []string, logger zerolog.Logger) []BatchItem {
	items := make([]BatchItem, 0, len(paths))
	for _, path := range paths {
		record, err := u.store.Read(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to load account record")
			items = append(items, BatchItem{Path: path, Err: fmt.Errorf("%w: %v", checkererrors.ErrMalformedRecord, err)})
			continue
		}
		items = append(items, BatchItem{Path: path, Record: record})
	}
	return items
}

func (u *UseCase) snapshot(run *batchRun) *entities.BatchReport {
	u.mu.RLock()
	defer u.mu.RUnlock()

	report := *run.report
	report.Results = append([]entities.AccountResult(nil), run.report.Results...)
	if run.report.State == entities.BatchStateRunning {
		report.Counters = run.counters.Snapshot()
	} else {
		report.Counters = make(map[entities.Status]int, len(run.report.Counters))
		for status, n := range run.report.Counters {
			report.Counters[status] = n
		}
	}
	return &report
}

var _ deps.CheckService = (*UseCase)(nil)
