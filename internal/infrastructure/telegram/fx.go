package telegram

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/config"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
)

// Module provides the MTProto session factory for fx DI
var Module = fx.Module("telegram",
	fx.Provide(
		func(tgCfg *config.TelegramConfig, checkerCfg *config.CheckerConfig, logger zerolog.Logger) *Factory {
			return NewFactory(FactoryConfig{
				SystemVersion: tgCfg.SystemVersion,
				ReplyWait:     tgCfg.ReplyWait,
				DialTimeout:   checkerCfg.ConnectTimeout,
			}, logger)
		},
		func(f *Factory) deps.ClientFactory {
			return f
		},
	),
)
