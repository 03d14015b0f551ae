package business

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

func TestSchedulerRespectsConcurrencyLimit(t *testing.T) {
	gate := &connectionGate{}
	factory := &mockFactory{build: func(_ int, record entities.AccountRecord, _ string) *mockSession {
		reply := okReply
		if record.Phone[len(record.Phone)-1]%3 == 0 {
			reply = restrictedReply
		}
		return &mockSession{authorized: true, reply: reply, token: "new-" + record.Phone, latency: 5 * time.Millisecond, gate: gate}
	}}
	store := newMockStore()
	metrics := &mockMetrics{}

	recovery := newTestRecovery(factory, store, metrics, 2)
	worker := NewAccountWorker(factory, testProbe(), recovery, &fixedPool{}, store, WorkerConfig{RecoverRestricted: true}, testLogger)
	scheduler := NewBatchScheduler(worker, store, metrics, 5, testLogger)

	items := make([]BatchItem, 0, 20)
	for i := 0; i < 20; i++ {
		record := testRecord(fmt.Sprintf("+1555000%04d", i))
		record.SessionString = "token"
		path := fmt.Sprintf("acc-%02d.json", i)
		store.put(path, record)
		items = append(items, BatchItem{Path: path, Record: &record})
	}

	counters := entities.NewBatchCounters()
	results := scheduler.Run(context.Background(), items, counters)

	if counters.Total() != 20 {
		t.Errorf("Total() = %d, want 20", counters.Total())
	}
	if len(results) != 20 {
		t.Errorf("results = %d, want 20", len(results))
	}
	if peak := gate.peak.Load(); peak > 5 {
		t.Errorf("peak open connections = %d, want <= 5", peak)
	}
	if peak := metrics.peak.Load(); peak > 5 {
		t.Errorf("peak active workers = %d, want <= 5", peak)
	}
	if gate.current.Load() != 0 {
		t.Errorf("%d connections left open", gate.current.Load())
	}
	if metrics.outcomes.Load() != 20 {
		t.Errorf("recorded outcomes = %d, want 20", metrics.outcomes.Load())
	}
}

func TestSchedulerCountsEveryItem(t *testing.T) {
	factory := &mockFactory{build: func(int, entities.AccountRecord, string) *mockSession {
		return &mockSession{authorized: true, reply: okReply}
	}}
	store := newMockStore()
	metrics := &mockMetrics{}
	worker := NewAccountWorker(factory, testProbe(), newTestRecovery(factory, store, metrics, 1), &fixedPool{}, store, WorkerConfig{}, testLogger)
	scheduler := NewBatchScheduler(worker, store, metrics, 3, testLogger)

	good := testRecord("+15550000001")
	busy := testRecord("+15550000002")
	store.put("good.json", good)
	store.put("busy.json", busy)

	unlock, err := store.Lock("busy.json")
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	defer unlock()

	items := []BatchItem{
		{Path: "good.json", Record: &good},
		{Path: "busy.json", Record: &busy},
		{Path: "broken.json", Err: errors.New("unexpected end of JSON input")},
		{Path: "missing.json"},
	}

	counters := entities.NewBatchCounters()
	results := scheduler.Run(context.Background(), items, counters)

	if counters.Total() != len(items) {
		t.Errorf("Total() = %d, want %d", counters.Total(), len(items))
	}
	if got := counters.Get(entities.StatusActive); got != 1 {
		t.Errorf("active = %d, want 1", got)
	}
	if got := counters.Get(entities.StatusError); got != 3 {
		t.Errorf("error = %d, want 3", got)
	}
	for _, r := range results {
		if r.Status == entities.StatusError && r.Detail == "" {
			t.Errorf("%s: error without detail", r.Path)
		}
	}
}

func TestSchedulerCancelledBeforeStart(t *testing.T) {
	factory := &mockFactory{build: func(int, entities.AccountRecord, string) *mockSession {
		return &mockSession{authorized: true, reply: okReply}
	}}
	store := newMockStore()
	worker := NewAccountWorker(factory, testProbe(), newTestRecovery(factory, store, &mockMetrics{}, 1), &fixedPool{}, store, WorkerConfig{}, testLogger)
	scheduler := NewBatchScheduler(worker, store, &mockMetrics{}, 1, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var items []BatchItem
	for i := 0; i < 4; i++ {
		record := testRecord(fmt.Sprintf("+1555000000%d", i))
		items = append(items, BatchItem{Path: fmt.Sprintf("%d.json", i), Record: &record})
	}

	counters := entities.NewBatchCounters()
	scheduler.Run(ctx, items, counters)

	if counters.Total() != 4 {
		t.Errorf("Total() = %d, want 4", counters.Total())
	}
}

// panicWorker panics for every account
type panicWorker struct{}

func (panicWorker) Process(context.Context, *entities.AccountRecord, string) entities.Outcome {
	panic("worker crashed")
}

func TestSchedulerIsolatesPanics(t *testing.T) {
	store := newMockStore()
	scheduler := NewBatchScheduler(panicWorker{}, store, &mockMetrics{}, 2, testLogger)

	record := testRecord("+15550000001")
	counters := entities.NewBatchCounters()
	scheduler.Run(context.Background(), []BatchItem{{Path: "a.json", Record: &record}}, counters)

	if counters.Get(entities.StatusError) != 1 {
		t.Errorf("error = %d, want 1", counters.Get(entities.StatusError))
	}
	if _, err := store.Lock("a.json"); err != nil {
		t.Errorf("record lock not released after panic: %v", err)
	}
}

func TestBatchCountersConcurrentInc(t *testing.T) {
	counters := entities.NewBatchCounters()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			counters.Inc(entities.Statuses[i%len(entities.Statuses)])
		}(i)
	}
	wg.Wait()

	if counters.Total() != 100 {
		t.Errorf("Total() = %d, want 100", counters.Total())
	}
}
