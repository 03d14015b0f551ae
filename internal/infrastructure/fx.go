package infrastructure

import (
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/database"
	httpfx "github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/http"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/kafka"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/logger"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/metrics"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/proxy"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/storage"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/telegram"
)

// CoreModule aggregates everything a batch run needs
var CoreModule = fx.Module("infrastructure",
	logger.Module,
	database.Module,
	metrics.Module, // Must be before kafka (producer records metrics)
	proxy.Module,
	storage.Module,
	telegram.Module,
	kafka.Module,
)

// Module adds the HTTP server to CoreModule
var Module = fx.Options(
	CoreModule,
	httpfx.Module,
)
