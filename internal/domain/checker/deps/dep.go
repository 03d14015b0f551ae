package deps

import (
	"context"
	"time"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// Session is one transport connection for one account.
// Implementations map MTProto failures onto the sentinels in checker/errors.
type Session interface {
	// Connect performs the network handshake
	Connect(ctx context.Context) error

	// Close disconnects; safe to call more than once and on a session that never connected
	Close(ctx context.Context) error

	// IsAuthorized reports whether the session is signed in.
	// Returns ErrPasswordNeeded when the sign-in is waiting for the two-factor password.
	IsAuthorized(ctx context.Context) (bool, error)

	// SignIn signs in with a code previously sent to phone; codeHash identifies that code request.
	// It never requests a new code. Returns ErrPasswordNeeded, ErrInvalidCode or ErrSignUpRequired
	// on the matching RPC errors.
	SignIn(ctx context.Context, phone, code, codeHash string) error

	// CheckPassword completes a pending sign-in with the two-factor password
	CheckPassword(ctx context.Context, password string) error

	// SendMessage sends text to the peer username and returns the peer's reply
	SendMessage(ctx context.Context, peer, text string) (string, error)

	// SessionToken exports the current session as an opaque string
	SessionToken(ctx context.Context) (string, error)
}

// ClientFactory builds sessions without doing network I/O
type ClientFactory interface {
	Create(record entities.AccountRecord, proxy *entities.ProxyDescriptor, sessionSeed string) (Session, error)
}

// ProxySelector chooses a proxy for the next connection attempt; nil means direct
type ProxySelector interface {
	Select() *entities.ProxyDescriptor
}

// ProxyPool hands out per-account selectors
type ProxyPool interface {
	ProxySelector
	ForAccount() ProxySelector
}

// RecordStore reads and rewrites account records at their storage location
type RecordStore interface {
	Read(path string) (*entities.AccountRecord, error)
	Write(path string, record *entities.AccountRecord) error
	// Lock takes an exclusive advisory lock on the record; returns ErrRecordBusy if held elsewhere
	Lock(path string) (unlock func(), err error)
	// List returns the record files found under dir
	List(dir string) ([]string, error)
}

// Prober classifies a connected session
type Prober interface {
	Probe(ctx context.Context, session Session) entities.ProbeResult
}

// Recoverer runs the bounded recovery procedure for one account
type Recoverer interface {
	Recover(ctx context.Context, record *entities.AccountRecord, path string, selector ProxySelector) RecoveryResult
}

// RecoveryResult is the terminal state of the recovery state machine
type RecoveryResult struct {
	State    RecoveryState
	Detail   string
	Attempts int
}

// RecoveryState enumerates the terminal states of recovery
type RecoveryState int

const (
	RecoveryRecovered RecoveryState = iota
	RecoveryExhausted
	RecoveryNeedsCode
	RecoveryNeedsTwoFactor
	RecoveryInvalidCode
	RecoveryError
)

// Worker processes one account end to end
type Worker interface {
	Process(ctx context.Context, record *entities.AccountRecord, path string) entities.Outcome
}

// MetricsRecorder receives pipeline observations
type MetricsRecorder interface {
	WorkerStarted()
	WorkerFinished()
	RecordOutcome(status entities.Status, duration time.Duration)
	RecordRecoveryAttempt()
	RecordBatch(accounts int, duration time.Duration)
}

// ReportPublisher announces finished batches
type ReportPublisher interface {
	PublishBatchReport(ctx context.Context, report *entities.BatchReport) error
}

// BatchRepository stores finished batches
type BatchRepository interface {
	SaveBatch(ctx context.Context, report *entities.BatchReport) error
}

// CheckService is the use case consumed by delivery layers
type CheckService interface {
	// RunBatch processes the records synchronously and returns the finished report
	RunBatch(ctx context.Context, paths []string) (*entities.BatchReport, error)

	// StartBatch launches a batch in the background and returns its id
	StartBatch(ctx context.Context, paths []string) (string, error)

	// GetBatch returns a running or finished batch
	GetBatch(ctx context.Context, id string) (*entities.BatchReport, error)

	// ResolvePaths expands a directory into record paths
	ResolvePaths(dir string) ([]string, error)
}
