package business

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
)

var testLogger = zerolog.New(io.Discard)

const (
	okReply         = "Good news, no limits are currently applied to your account. You're free as a bird!"
	restrictedReply = "I'm afraid some Telegram users found your messages annoying and your account is now restricted."
	testCodeHash    = "8a1c2f4b9d7e"
)

// mockSession is a scripted deps.Session
type mockSession struct {
	mu sync.Mutex

	seed  string
	proxy *entities.ProxyDescriptor

	connectErr error
	authorized bool
	authErr    error
	// passwordPending makes IsAuthorized return ErrPasswordNeeded until CheckPassword succeeds
	passwordPending bool
	// passwordAfterSignIn makes SignIn require the two-factor password
	passwordAfterSignIn bool
	signInErr           error
	passwordErr         error
	reply               string
	sendErr             error
	token               string
	latency             time.Duration

	connected bool
	closes    int
	sent      int
	signIns   int
	codeHash  string

	gate *connectionGate
}

func (s *mockSession) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected = true
	if s.gate != nil {
		s.gate.open()
	}
	return nil
}

func (s *mockSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if s.connected {
		s.connected = false
		if s.gate != nil {
			s.gate.close()
		}
	}
	return nil
}

func (s *mockSession) IsAuthorized(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passwordPending {
		return false, checkererrors.ErrPasswordNeeded
	}
	if s.authErr != nil {
		return false, s.authErr
	}
	return s.authorized, nil
}

func (s *mockSession) SignIn(ctx context.Context, phone, code, codeHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signIns++
	s.codeHash = codeHash
	if s.signInErr != nil {
		return s.signInErr
	}
	if s.passwordAfterSignIn {
		s.passwordPending = true
		return checkererrors.ErrPasswordNeeded
	}
	s.authorized = true
	return nil
}

func (s *mockSession) CheckPassword(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passwordErr != nil {
		return s.passwordErr
	}
	s.passwordPending = false
	s.authorized = true
	return nil
}

func (s *mockSession) SendMessage(ctx context.Context, peer, text string) (string, error) {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent++
	if s.sendErr != nil {
		return "", s.sendErr
	}
	return s.reply, nil
}

func (s *mockSession) SessionToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *mockSession) isConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// mockFactory hands out sessions built by build; call is 0 for the first Create
type mockFactory struct {
	mu        sync.Mutex
	build     func(call int, record entities.AccountRecord, seed string) *mockSession
	createErr error
	sessions  []*mockSession
}

func (f *mockFactory) Create(record entities.AccountRecord, proxy *entities.ProxyDescriptor, seed string) (deps.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	s := f.build(len(f.sessions), record, seed)
	s.seed = seed
	s.proxy = proxy
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *mockFactory) created() []*mockSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*mockSession(nil), f.sessions...)
}

// connectionGate counts simultaneously open connections
type connectionGate struct {
	current atomic.Int64
	peak    atomic.Int64
}

func (g *connectionGate) open() {
	n := g.current.Add(1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (g *connectionGate) close() {
	g.current.Add(-1)
}

// mockStore is an in-memory deps.RecordStore
type mockStore struct {
	mu       sync.Mutex
	records  map[string]entities.AccountRecord
	writes   map[string]int
	locked   map[string]bool
	writeErr error
	readErr  error
}

func newMockStore() *mockStore {
	return &mockStore{
		records: make(map[string]entities.AccountRecord),
		writes:  make(map[string]int),
		locked:  make(map[string]bool),
	}
}

func (s *mockStore) put(path string, record entities.AccountRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[path] = record
}

func (s *mockStore) get(path string) entities.AccountRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[path]
}

func (s *mockStore) writeCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[path]
}

func (s *mockStore) Read(path string) (*entities.AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	record, ok := s.records[path]
	if !ok {
		return nil, errors.New("no such record")
	}
	return &record, nil
}

func (s *mockStore) Write(path string, record *entities.AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.records[path] = *record
	s.writes[path]++
	return nil
}

func (s *mockStore) Lock(path string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked[path] {
		return nil, checkererrors.ErrRecordBusy
	}
	s.locked[path] = true
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locked, path)
	}, nil
}

func (s *mockStore) List(dir string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.records))
	for path := range s.records {
		paths = append(paths, path)
	}
	return paths, nil
}

// mockMetrics counts recorder calls
type mockMetrics struct {
	active   atomic.Int64
	peak     atomic.Int64
	attempts atomic.Int64
	outcomes atomic.Int64
	batches  atomic.Int64
}

func (m *mockMetrics) WorkerStarted() {
	n := m.active.Add(1)
	for {
		peak := m.peak.Load()
		if n <= peak || m.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (m *mockMetrics) WorkerFinished() { m.active.Add(-1) }
func (m *mockMetrics) RecordOutcome(entities.Status, time.Duration) { m.outcomes.Add(1) }
func (m *mockMetrics) RecordRecoveryAttempt() { m.attempts.Add(1) }
func (m *mockMetrics) RecordBatch(int, time.Duration) { m.batches.Add(1) }

// mockPublisher records published reports
type mockPublisher struct {
	mu      sync.Mutex
	reports []*entities.BatchReport
	err     error
}

func (p *mockPublisher) PublishBatchReport(ctx context.Context, report *entities.BatchReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, report)
	return p.err
}

func (p *mockPublisher) published() []*entities.BatchReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*entities.BatchReport(nil), p.reports...)
}

// mockRepository records saved reports
type mockRepository struct {
	mu    sync.Mutex
	saved []string
}

func (r *mockRepository) SaveBatch(ctx context.Context, report *entities.BatchReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, report.ID)
	return nil
}

// fixedPool returns the proxies in order, cycling; ForAccount mimics the sticky selector when sticky is set
type fixedPool struct {
	mu      sync.Mutex
	proxies []entities.ProxyDescriptor
	next    int
	sticky  bool
}

func (p *fixedPool) Select() *entities.ProxyDescriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return nil
	}
	proxy := p.proxies[p.next%len(p.proxies)]
	p.next++
	return &proxy
}

func (p *fixedPool) ForAccount() deps.ProxySelector {
	if !p.sticky {
		return p
	}
	proxy := p.Select()
	return selectorFunc(func() *entities.ProxyDescriptor { return proxy })
}

type selectorFunc func() *entities.ProxyDescriptor

func (f selectorFunc) Select() *entities.ProxyDescriptor { return f() }

func testRecord(phone string) entities.AccountRecord {
	return entities.AccountRecord{
		Phone:      phone,
		AppID:      2040,
		AppHash:    "b18441a1ff607e10a989891a5462e627",
		Device:     "Desktop",
		AppVersion: "4.16.8 x64",
	}
}

// withCode supplies a sign-in code together with the hash of its code request
func withCode(record entities.AccountRecord, code string) entities.AccountRecord {
	record.PhoneCode = code
	record.PhoneCodeHash = testCodeHash
	return record
}

func testProbe() *RestrictionProbe {
	return NewRestrictionProbe("SpamBot", "/start", time.Second, testLogger)
}
