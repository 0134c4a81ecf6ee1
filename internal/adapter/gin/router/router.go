package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"currencies-app/internal/adapter/gin/handler"
	"currencies-app/internal/adapter/gin/middleware"
	"currencies-app/internal/adapter/metrics"
)

// Deps are the handlers and middleware the router mounts.
// HTTPMetrics, MetricsHandler and RateLimiter are optional.
type Deps struct {
	Pages          *handler.PageHandler
	Health         *handler.HealthHandler
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	Log            *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware.
// Pages run one request at a time behind the rate limiter; /health and
// /metrics skip both.
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(d.Log, d.Pages.RenderError))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Log))
	if d.HTTPMetrics != nil {
		router.Use(d.HTTPMetrics.Middleware())
	}

	router.GET("/health", d.Health.Health)
	if d.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	pages := router.Group("/")
	pages.Use(d.RateLimiter.Middleware())
	pages.Use(middleware.Serialize())
	d.Pages.RegisterRoutes(pages)

	router.NoRoute(d.Pages.NotFound)

	return router
}
