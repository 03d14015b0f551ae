package app

import (
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/config"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure"
)

// CreateApp creates the fx options of the HTTP service
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		infrastructure.Module,
		checker.Module,
	)
}

// CreateCLI creates the fx options of a one-shot batch run without the HTTP server
func CreateCLI() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		infrastructure.CoreModule,
		checker.CoreModule,
	)
}
