package checker

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Conte777/NewsFlow/services/account-checker/config"
	checkerhttp "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/delivery/http"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/repository/postgres"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/usecase/business"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/http/server"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/infrastructure/proxy"
	pkgerrors "github.com/Conte777/NewsFlow/services/account-checker/pkg/errors"
)

// CoreModule provides the checking pipeline and its use case
var CoreModule = fx.Module("checker",
	fx.Provide(
		NewRestrictionProbeFx,
		NewRecoveryControllerFx,
		NewAccountWorkerFx,
		NewBatchSchedulerFx,
		NewBatchRepositoryFx,
		NewUseCaseFx,
		func(uc *business.UseCase) deps.CheckService {
			return uc
		},
	),
)

// Module provides the checker domain together with its HTTP delivery
var Module = fx.Options(
	CoreModule,
	fx.Module("checker-http",
		fx.Provide(
			NewBatchHandlerFx,
			NewHealthHandlerFx,
			checkerhttp.NewRouter,
		),
		fx.Invoke(RegisterRoutes),
	),
)

// NewRestrictionProbeFx creates the restriction probe for fx DI
func NewRestrictionProbeFx(
	tgCfg *config.TelegramConfig,
	checkerCfg *config.CheckerConfig,
	logger zerolog.Logger,
) deps.Prober {
	return business.NewRestrictionProbe(tgCfg.VerificationPeer, tgCfg.VerificationMessage, checkerCfg.ProbeTimeout, logger)
}

// NewRecoveryControllerFx creates the recovery controller for fx DI
func NewRecoveryControllerFx(
	factory deps.ClientFactory,
	prober deps.Prober,
	store deps.RecordStore,
	metrics deps.MetricsRecorder,
	cfg *config.CheckerConfig,
	logger zerolog.Logger,
) deps.Recoverer {
	return business.NewRecoveryController(factory, prober, store, metrics, business.RecoveryConfig{
		MaxAttempts:    cfg.MaxReconnectAttempts,
		Delay:          cfg.DelayBetweenAttempts,
		ConnectTimeout: cfg.ConnectTimeout,
	}, logger)
}

// NewAccountWorkerFx creates the account worker for fx DI
func NewAccountWorkerFx(
	factory deps.ClientFactory,
	prober deps.Prober,
	recoverer deps.Recoverer,
	pool deps.ProxyPool,
	store deps.RecordStore,
	cfg *config.CheckerConfig,
	logger zerolog.Logger,
) deps.Worker {
	return business.NewAccountWorker(factory, prober, recoverer, pool, store, business.WorkerConfig{
		ConnectTimeout:    cfg.ConnectTimeout,
		AccountTimeout:    cfg.AccountTimeout,
		RecoverRestricted: cfg.RecoverRestricted,
	}, logger)
}

// NewBatchSchedulerFx creates the batch scheduler for fx DI
func NewBatchSchedulerFx(
	worker deps.Worker,
	store deps.RecordStore,
	metrics deps.MetricsRecorder,
	cfg *config.CheckerConfig,
	logger zerolog.Logger,
) *business.BatchScheduler {
	return business.NewBatchScheduler(worker, store, metrics, cfg.MaxConcurrent, logger)
}

// NewBatchRepositoryFx creates the batch history repository for fx DI
func NewBatchRepositoryFx(db *gorm.DB) deps.BatchRepository {
	return postgres.NewRepository(db)
}

// NewUseCaseFx creates the checker use case and cancels running batches on shutdown
func NewUseCaseFx(
	lc fx.Lifecycle,
	scheduler *business.BatchScheduler,
	store deps.RecordStore,
	metrics deps.MetricsRecorder,
	publisher deps.ReportPublisher,
	repository deps.BatchRepository,
	logger zerolog.Logger,
) *business.UseCase {
	uc := business.NewUseCase(scheduler, store, metrics, publisher, repository, logger.With().Str("component", "checker").Logger())

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Stopping running batches")
			uc.Close()
			return nil
		},
	})

	return uc
}

// NewBatchHandlerFx creates the batch HTTP handler for fx DI; requests are confined to RECORDS_DIR
func NewBatchHandlerFx(service deps.CheckService, cfg *config.CheckerConfig, logger zerolog.Logger) *checkerhttp.BatchHandler {
	return checkerhttp.NewBatchHandler(service, pkgerrors.NewMapper(logger), cfg.RecordsDir, logger)
}

// NewHealthHandlerFx creates the health handler for fx DI
func NewHealthHandlerFx(cfg *config.CheckerConfig, pool *proxy.Pool, logger zerolog.Logger) *checkerhttp.HealthHandler {
	return checkerhttp.NewHealthHandler(cfg.RecordsDir, pool, logger)
}

// RegisterRoutes registers checker routes on the server
func RegisterRoutes(srv *server.Server, router *checkerhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
