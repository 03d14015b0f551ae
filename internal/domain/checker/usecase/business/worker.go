package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/utils"
)

// WorkerConfig holds per-account limits and the restricted-account policy
type WorkerConfig struct {
	ConnectTimeout time.Duration
	AccountTimeout time.Duration
	// RecoverRestricted enables recovery for accounts the probe reports as restricted;
	// when disabled they are reported as restricted as-is
	RecoverRestricted bool
}

// AccountWorker drives one account from its stored session to a terminal outcome
type AccountWorker struct {
	factory   deps.ClientFactory
	prober    deps.Prober
	recoverer deps.Recoverer
	pool      deps.ProxyPool
	store     deps.RecordStore
	cfg       WorkerConfig
	logger    zerolog.Logger
}

// NewAccountWorker creates an account worker
func NewAccountWorker(
	factory deps.ClientFactory,
	prober deps.Prober,
	recoverer deps.Recoverer,
	pool deps.ProxyPool,
	store deps.RecordStore,
	cfg WorkerConfig,
	logger zerolog.Logger,
) *AccountWorker {
	return &AccountWorker{
		factory:   factory,
		prober:    prober,
		recoverer: recoverer,
		pool:      pool,
		store:     store,
		cfg:       cfg,
		logger:    logger.With().Str("component", "account_worker").Logger(),
	}
}

// Process checks one account and recovers it when needed. It never panics;
// every failure is folded into the returned outcome.
func (w *AccountWorker) Process(ctx context.Context, record *entities.AccountRecord, path string) (outcome entities.Outcome) {
	logger := w.logger.With().
		Str("phone", utils.MaskPhoneNumber(record.Phone)).
		Str("path", path).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("account worker panicked")
			outcome = entities.Error(fmt.Sprintf("panic: %v", r))
		}
	}()

	if w.cfg.AccountTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.AccountTimeout)
		defer cancel()
	}

	selector := w.pool.ForAccount()

	probe, err := w.checkStoredSession(ctx, record, path, selector, logger)
	if err != nil {
		return outcomeFromError(err)
	}

	switch probe.Status {
	case entities.ProbeOK:
		logger.Info().Msg("account is active")
		return entities.Active()
	case entities.ProbeRestricted:
		if !w.cfg.RecoverRestricted {
			logger.Info().Msg("account is restricted")
			return entities.Outcome{Status: entities.StatusRestricted, Detail: probe.Reply}
		}
		logger.Info().Msg("account is restricted, starting recovery")
	case entities.ProbeUnauthorized:
		if !record.HasCode() {
			logger.Info().Msg("session is not authorized and no sign-in code is available")
			needsCode := entities.NeedsCode()
			needsCode.Detail = missingCodeDetail(record)
			return needsCode
		}
		logger.Info().Msg("session is not authorized, starting recovery")
	default:
		return entities.Error(probe.Detail)
	}

	return w.runRecovery(ctx, record, path, selector, logger)
}

// outcomeError carries a terminal outcome out of the stored-session check
type outcomeError struct {
	outcome entities.Outcome
}

func (e *outcomeError) Error() string {
	return fmt.Sprintf("%s: %s", e.outcome.Status, e.outcome.Detail)
}

func outcomeFromError(err error) entities.Outcome {
	var oe *outcomeError
	if errors.As(err, &oe) {
		return oe.outcome
	}
	return entities.Error(err.Error())
}

// checkStoredSession connects with the record's session and probes it. The session is
// closed before returning so that recovery never overlaps with it.
func (w *AccountWorker) checkStoredSession(
	ctx context.Context,
	record *entities.AccountRecord,
	path string,
	selector deps.ProxySelector,
	logger zerolog.Logger,
) (entities.ProbeResult, error) {
	session, err := w.factory.Create(*record, selector.Select(), record.SessionString)
	if errors.Is(err, checkererrors.ErrInvalidSession) {
		logger.Warn().Err(err).Msg("stored session is unusable")
		return entities.ProbeResult{Status: entities.ProbeUnauthorized}, nil
	}
	if err != nil {
		return entities.ProbeResult{}, fmt.Errorf("create client: %w", err)
	}
	defer closeSession(session, logger)

	if err := connectSession(ctx, session, w.cfg.ConnectTimeout); err != nil {
		return entities.ProbeResult{}, fmt.Errorf("connect: %w", err)
	}

	signedIn, err := w.completeTwoFactor(ctx, session, record)
	if err != nil {
		return entities.ProbeResult{}, err
	}

	probe := w.prober.Probe(ctx, session)
	if probe.Status == entities.ProbeOK && signedIn {
		w.persistToken(ctx, session, record, path, logger)
	}
	return probe, nil
}

// completeTwoFactor finishes a sign-in that is waiting for the two-factor password.
// Reports true when a password was supplied.
func (w *AccountWorker) completeTwoFactor(ctx context.Context, session deps.Session, record *entities.AccountRecord) (bool, error) {
	_, err := session.IsAuthorized(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, checkererrors.ErrPasswordNeeded) {
		return false, fmt.Errorf("authorization check: %w", err)
	}

	if !record.HasTwoFA() {
		return false, &outcomeError{outcome: entities.NeedsTwoFactor()}
	}
	if err := session.CheckPassword(ctx, record.TwoFA); err != nil {
		return false, fmt.Errorf("two-factor: %w", err)
	}
	return true, nil
}

// persistToken stores the session produced by an inline two-factor sign-in.
// Failures are logged; the account stays active with its previous token on disk.
func (w *AccountWorker) persistToken(
	ctx context.Context,
	session deps.Session,
	record *entities.AccountRecord,
	path string,
	logger zerolog.Logger,
) {
	token, err := session.SessionToken(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to export session")
		return
	}
	if token == record.SessionString {
		return
	}

	updated := *record
	updated.SessionString = token
	if err := w.store.Write(path, &updated); err != nil {
		logger.Warn().Err(err).Msg("failed to persist session")
		return
	}
	*record = updated
}

func (w *AccountWorker) runRecovery(
	ctx context.Context,
	record *entities.AccountRecord,
	path string,
	selector deps.ProxySelector,
	logger zerolog.Logger,
) entities.Outcome {
	res := w.recoverer.Recover(ctx, record, path, selector)

	outcome := entities.Outcome{Detail: res.Detail, Attempts: res.Attempts}
	switch res.State {
	case deps.RecoveryRecovered:
		outcome.Status = entities.StatusRecovered
	case deps.RecoveryExhausted:
		outcome.Status = entities.StatusPermanentlyBlocked
	case deps.RecoveryNeedsCode:
		outcome.Status = entities.StatusNeedsCode
	case deps.RecoveryNeedsTwoFactor:
		outcome.Status = entities.StatusNeedsTwoFactor
	case deps.RecoveryInvalidCode:
		outcome.Status = entities.StatusInvalidCode
	default:
		outcome.Status = entities.StatusError
	}

	logger.Info().
		Str("status", string(outcome.Status)).
		Int("attempts", outcome.Attempts).
		Msg("recovery finished")
	return outcome
}

var _ deps.Worker = (*AccountWorker)(nil)
