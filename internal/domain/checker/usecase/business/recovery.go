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

// RecoveryConfig holds the retry policy of the recovery loop
type RecoveryConfig struct {
	MaxAttempts    int
	Delay          time.Duration
	ConnectTimeout time.Duration
}

// RecoveryController re-establishes an unrestricted session for an account.
// Every attempt starts from a blank session on a freshly selected proxy and signs in with
// the code, code hash and two-factor secret already present in the record; it never asks for a new code.
type RecoveryController struct {
	factory deps.ClientFactory
	prober  deps.Prober
	store   deps.RecordStore
	metrics deps.MetricsRecorder
	cfg     RecoveryConfig
	logger  zerolog.Logger
}

// NewRecoveryController creates a recovery controller
func NewRecoveryController(
	factory deps.ClientFactory,
	prober deps.Prober,
	store deps.RecordStore,
	metrics deps.MetricsRecorder,
	cfg RecoveryConfig,
	logger zerolog.Logger,
) *RecoveryController {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RecoveryController{
		factory: factory,
		prober:  prober,
		store:   store,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger.With().Str("component", "recovery").Logger(),
	}
}

// attemptResult is the outcome of one recovery attempt; terminal results end the loop
type attemptResult struct {
	result   deps.RecoveryResult
	terminal bool
}

func retry(detail string) attemptResult {
	return attemptResult{result: deps.RecoveryResult{State: deps.RecoveryExhausted, Detail: detail}}
}

func terminal(state deps.RecoveryState, detail string) attemptResult {
	return attemptResult{result: deps.RecoveryResult{State: state, Detail: detail}, terminal: true}
}

// Recover runs up to MaxAttempts attempts. On success the record's session token is replaced
// and the record is rewritten at path.
func (c *RecoveryController) Recover(
	ctx context.Context,
	record *entities.AccountRecord,
	path string,
	selector deps.ProxySelector,
) deps.RecoveryResult {
	logger := c.logger.With().Str("phone", utils.MaskPhoneNumber(record.Phone)).Logger()

	var lastDetail string
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		c.metrics.RecordRecoveryAttempt()

		res := c.attempt(ctx, record, path, selector, logger.With().Int("attempt", attempt).Logger())
		if res.terminal {
			res.result.Attempts = attempt
			return res.result
		}

		lastDetail = res.result.Detail
		logger.Warn().
			Int("attempt", attempt).
			Int("max_attempts", c.cfg.MaxAttempts).
			Str("reason", lastDetail).
			Msg("recovery attempt failed")

		if attempt == c.cfg.MaxAttempts {
			break
		}
		if err := sleepContext(ctx, c.cfg.Delay); err != nil {
			return deps.RecoveryResult{
				State:    deps.RecoveryError,
				Detail:   fmt.Sprintf("recovery interrupted: %v", err),
				Attempts: attempt,
			}
		}
	}

	logger.Warn().Int("attempts", c.cfg.MaxAttempts).Msg("recovery attempts exhausted")
	return deps.RecoveryResult{
		State:    deps.RecoveryExhausted,
		Detail:   lastDetail,
		Attempts: c.cfg.MaxAttempts,
	}
}

func (c *RecoveryController) attempt(
	ctx context.Context,
	record *entities.AccountRecord,
	path string,
	selector deps.ProxySelector,
	logger zerolog.Logger,
) (res attemptResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovery attempt panicked")
			res = retry(fmt.Sprintf("panic: %v", r))
		}
	}()

	proxy := selector.Select()
	if proxy != nil {
		logger = logger.With().Str("proxy", proxy.String()).Logger()
	}

	session, err := c.factory.Create(*record, proxy, "")
	if err != nil {
		return retry(fmt.Sprintf("create client: %v", err))
	}
	defer closeSession(session, logger)

	if err := connectSession(ctx, session, c.cfg.ConnectTimeout); err != nil {
		return retry(fmt.Sprintf("connect: %v", err))
	}

	if authRes, ok := c.authenticate(ctx, session, record, logger); !ok {
		return authRes
	}

	probe := c.prober.Probe(ctx, session)
	if probe.Status != entities.ProbeOK {
		detail := "probe: " + probe.Status.String()
		if probe.Detail != "" {
			detail += ": " + probe.Detail
		}
		return retry(detail)
	}

	token, err := session.SessionToken(ctx)
	if err != nil {
		return retry(fmt.Sprintf("export session: %v", err))
	}

	updated := *record
	updated.SessionString = token
	if err := c.store.Write(path, &updated); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to persist recovered session")
		return terminal(deps.RecoveryError, fmt.Sprintf("persist session: %v", err))
	}
	*record = updated

	logger.Info().Msg("account recovered")
	return terminal(deps.RecoveryRecovered, "")
}

// authenticate signs the blank session in. ok is false when the attempt must stop,
// with res telling whether the whole recovery stops too.
func (c *RecoveryController) authenticate(
	ctx context.Context,
	session deps.Session,
	record *entities.AccountRecord,
	logger zerolog.Logger,
) (res attemptResult, ok bool) {
	authorized, err := session.IsAuthorized(ctx)
	switch {
	case errors.Is(err, checkererrors.ErrPasswordNeeded):
		return c.supplyPassword(ctx, session, record)
	case err != nil:
		return retry(fmt.Sprintf("authorization check: %v", err)), false
	case authorized:
		return attemptResult{}, true
	}

	if !record.HasCode() {
		return terminal(deps.RecoveryNeedsCode, missingCodeDetail(record)), false
	}

	logger.Debug().Msg("signing in with supplied code")
	err = session.SignIn(ctx, record.Phone, record.PhoneCode, record.PhoneCodeHash)
	switch {
	case err == nil:
		return attemptResult{}, true
	case errors.Is(err, checkererrors.ErrPasswordNeeded):
		return c.supplyPassword(ctx, session, record)
	case errors.Is(err, checkererrors.ErrInvalidCode):
		return terminal(deps.RecoveryInvalidCode, err.Error()), false
	case errors.Is(err, checkererrors.ErrSignUpRequired):
		return terminal(deps.RecoveryError, err.Error()), false
	default:
		return retry(fmt.Sprintf("sign in: %v", err)), false
	}
}

func (c *RecoveryController) supplyPassword(
	ctx context.Context,
	session deps.Session,
	record *entities.AccountRecord,
) (attemptResult, bool) {
	if !record.HasTwoFA() {
		return terminal(deps.RecoveryNeedsTwoFactor, "two-factor password required"), false
	}

	err := session.CheckPassword(ctx, record.TwoFA)
	switch {
	case err == nil:
		return attemptResult{}, true
	case errors.Is(err, checkererrors.ErrInvalidPassword):
		return terminal(deps.RecoveryError, err.Error()), false
	default:
		return retry(fmt.Sprintf("two-factor: %v", err)), false
	}
}

var _ deps.Recoverer = (*RecoveryController)(nil)
