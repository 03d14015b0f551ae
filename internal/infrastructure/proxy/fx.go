package proxy

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/config"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
)

// Module provides the proxy pool for fx DI
var Module = fx.Module("proxy",
	fx.Provide(
		func(cfg *config.CheckerConfig, logger zerolog.Logger) *Pool {
			return NewPool(cfg.Proxies, cfg.ProxyRotation, logger)
		},
		func(p *Pool) deps.ProxyPool {
			return p
		},
	),
)
