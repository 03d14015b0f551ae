package http

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/account-checker/pkg/httputil"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name     string `json:"name"`
	Healthy  bool   `json:"healthy"`
	Critical bool   `json:"critical"`
	Message  string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// ProxyCounter reports the number of configured proxies
type ProxyCounter interface {
	Len() int
}

// HealthHandler handles HTTP health check requests
type HealthHandler struct {
	recordsDir string
	proxies    ProxyCounter
	logger     zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(recordsDir string, proxies ProxyCounter, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		recordsDir: recordsDir,
		proxies:    proxies,
		logger:     logger,
	}
}

// Handle handles GET /health
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	components := h.checkComponents()
	status := determineOverallStatus(components)

	logEvent := h.logger.Debug()
	if status == HealthStatusUnhealthy {
		logEvent = h.logger.Warn()
	}
	logEvent.
		Str("status", string(status)).
		Interface("components", components).
		Msg("Health check completed")

	httputil.WriteHealthResponse(ctx, HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	}, status != HealthStatusUnhealthy)
}

func (h *HealthHandler) checkComponents() []ComponentHealth {
	components := make([]ComponentHealth, 0, 2)

	dir := ComponentHealth{Name: "records_dir", Critical: true, Healthy: true}
	info, err := os.Stat(h.recordsDir)
	switch {
	case err != nil:
		dir.Healthy = false
		dir.Message = "records directory is not accessible"
	case !info.IsDir():
		dir.Healthy = false
		dir.Message = "records path is not a directory"
	}
	components = append(components, dir)

	pool := ComponentHealth{Name: "proxy_pool", Healthy: true}
	if h.proxies == nil || h.proxies.Len() == 0 {
		pool.Healthy = false
		pool.Message = "no proxies configured, connecting directly"
	}
	components = append(components, pool)

	return components
}

// determineOverallStatus is unhealthy when a critical component fails and degraded when any other does
func determineOverallStatus(components []ComponentHealth) HealthStatus {
	status := HealthStatusHealthy
	for _, c := range components {
		if c.Healthy {
			continue
		}
		if c.Critical {
			return HealthStatusUnhealthy
		}
		status = HealthStatusDegraded
	}
	return status
}
