package business

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// closeTimeout bounds the graceful disconnect of a session
const closeTimeout = 10 * time.Second

func connectSession(ctx context.Context, session deps.Session, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return session.Connect(ctx)
}

// closeSession disconnects with its own timeout so that an expired account context
// still lets the transport shut down cleanly
func closeSession(session deps.Session, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := session.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to close session")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// missingCodeDetail explains why the record cannot be signed in
func missingCodeDetail(record *entities.AccountRecord) string {
	if record.PhoneCode != "" && record.PhoneCodeHash == "" {
		return "phone_code_hash required with phone_code"
	}
	return "sign-in code required"
}
