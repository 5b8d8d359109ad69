package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/voice-call-analytics/internal/adapter/dto/common"
	"github.com/johnquangdev/voice-call-analytics/pkg/config"
	"github.com/johnquangdev/voice-call-analytics/pkg/metrics"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	analyticsHandler *Analytics
	callsHandler     *Calls
	metrics          *metrics.Collectors
	checks           map[string]HealthCheck
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, analyticsHandler *Analytics, callsHandler *Calls, m *metrics.Collectors) *Router {
	return &Router{
		cfg:              cfg,
		analyticsHandler: analyticsHandler,
		callsHandler:     callsHandler,
		metrics:          m,
		checks:           make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a dependency probe for the health endpoint
func (rt *Router) AddHealthCheck(name string, check HealthCheck) {
	rt.checks[name] = check
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics.Handler()))
	}

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupAnalyticsRoutes(v1)
	rt.setupCallRoutes(v1)
}

// setupAnalyticsRoutes configures dashboard and lag report routes
func (rt *Router) setupAnalyticsRoutes(g *echo.Group) {
	analyticsGroup := g.Group("/analytics")

	if rt.analyticsHandler != nil {
		analyticsGroup.GET("", rt.analyticsHandler.Overview)
		analyticsGroup.GET("/lag", rt.analyticsHandler.LagAnalysis)
		analyticsGroup.GET("/lag/thresholds", rt.analyticsHandler.Thresholds)
		analyticsGroup.POST("/lag/export", rt.analyticsHandler.ExportLag)
	} else {
		analyticsGroup.GET("", rt.notImplemented)
		analyticsGroup.GET("/lag", rt.notImplemented)
		analyticsGroup.GET("/lag/thresholds", rt.notImplemented)
		analyticsGroup.POST("/lag/export", rt.notImplemented)
	}
}

// setupCallRoutes configures per-call routes
func (rt *Router) setupCallRoutes(g *echo.Group) {
	callGroup := g.Group("/calls")

	if rt.callsHandler != nil {
		callGroup.GET("", rt.callsHandler.ListCalls)
		callGroup.GET("/:callId", rt.callsHandler.GetCall)
	} else {
		callGroup.GET("", rt.notImplemented)
		callGroup.GET("/:callId", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status, 503 when any dependency probe fails
func (rt *Router) healthCheck(c echo.Context) error {
	resp := common.HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	}
	if rt.cfg != nil {
		resp.Environment = rt.cfg.Server.Environment
	}

	status := http.StatusOK
	if len(rt.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		resp.Checks = make(map[string]string, len(rt.checks))
		for name, check := range rt.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	return c.JSON(status, resp)
}
