package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/pkg/httputil"
)

// Router registers checker HTTP routes
type Router struct {
	batch  *BatchHandler
	health *HealthHandler
	logger zerolog.Logger
}

// NewRouter creates a new checker router
func NewRouter(batch *BatchHandler, health *HealthHandler, logger zerolog.Logger) *Router {
	return &Router{
		batch:  batch,
		health: health,
		logger: logger,
	}
}

// RegisterRoutes registers checker routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.GET("/health", r.health.Handle)

	api := httputil.NewMiddlewareGroup(rt.Group("/api/v1"),
		httputil.Recoverer(r.logger),
		httputil.RequestLogger(r.logger),
	)
	api.POST("/batches", r.batch.CreateBatch)
	api.GET("/batches/{batch_id}", r.batch.GetBatch)

	r.logger.Info().Msg("Checker routes registered")
}
