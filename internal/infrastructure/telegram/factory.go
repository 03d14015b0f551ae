package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/utils"
)

// FactoryConfig holds settings shared by every session
type FactoryConfig struct {
	SystemVersion string
	ReplyWait     time.Duration
	DialTimeout   time.Duration
}

// Factory builds gotd/td sessions for account records
type Factory struct {
	cfg    FactoryConfig
	logger zerolog.Logger
}

// NewFactory creates a session factory
func NewFactory(cfg FactoryConfig, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger.With().Str("component", "mtproto_session").Logger(),
	}
}

// Create builds a session without network I/O. A seed that cannot be decoded
// yields ErrInvalidSession.
func (f *Factory) Create(record entities.AccountRecord, proxy *entities.ProxyDescriptor, sessionSeed string) (deps.Session, error) {
	if record.AppID == 0 || record.AppHash == "" {
		return nil, fmt.Errorf("app_id and app_hash are required")
	}

	storage, err := NewMemorySessionStorage(context.Background(), sessionSeed)
	if err != nil {
		return nil, err
	}

	resolver, err := newProxyResolver(proxy, f.cfg.DialTimeout)
	if err != nil {
		return nil, err
	}

	opts := telegram.Options{
		SessionStorage: storage,
		NoUpdates:      true,
		Device: telegram.DeviceConfig{
			DeviceModel:   record.Device,
			SystemVersion: f.cfg.SystemVersion,
			AppVersion:    record.AppVersion,
		},
	}
	if resolver != nil {
		opts.Resolver = resolver
	}

	logger := f.logger.With().Str("phone", utils.MaskPhoneNumber(record.Phone)).Logger()
	if proxy != nil {
		logger = logger.With().Str("proxy", proxy.String()).Logger()
	}

	return &Session{
		client:       telegram.NewClient(record.AppID, record.AppHash, opts),
		storage:      storage,
		replyWait:    f.cfg.ReplyWait,
		pollInterval: defaultReplyPollInterval,
		logger:       logger,
		rateLimiter:  rate.NewLimiter(rate.Every(time.Second), 5),
	}, nil
}

var _ deps.ClientFactory = (*Factory)(nil)
