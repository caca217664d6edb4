package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/cogniwell/internal/domain/auth"
	"github.com/yanqian/cogniwell/internal/infra/config"
	"github.com/yanqian/cogniwell/internal/infra/ratelimit"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

// RouterDeps groups the cross-cutting collaborators of the router. Limiter and Gatherer may be nil.
type RouterDeps struct {
	Auth     auth.Service
	Limiter  *ratelimit.Limiter
	Recorder *metrics.Recorder
	Gatherer prometheus.Gatherer
}

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, deps RouterDeps) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger, deps.Recorder),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Healthz)
	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	api.Use(authMiddleware(deps.Auth), rateLimitMiddleware(deps.Limiter, handler.logger))
	{
		api.POST("/detections", handler.SubmitDetection)
		api.GET("/detections", handler.ListDetections)

		api.POST("/wearables", handler.IngestWearable)
		api.GET("/wearables", handler.ListWearables)
		api.GET("/metrics/today", handler.TodayMetrics)

		api.POST("/scores", handler.ComputeScore)
		api.GET("/scores/latest", handler.LatestScore)
		api.GET("/scores/history", handler.ScoreHistory)
		api.GET("/trends", handler.Trends)
		api.GET("/indicators", handler.Indicators)

		api.GET("/plans/current", handler.CurrentPlan)
		api.POST("/plans/regenerate", handler.RegeneratePlan)
		api.POST("/plans/progress", handler.RecordProgress)
		api.GET("/plans/progress", handler.PlanProgress)

		api.POST("/companion/messages", handler.CompanionMessage)
		api.GET("/companion/messages", handler.CompanionHistory)

		api.GET("/dashboard", handler.Dashboard)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
