package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cogniwell/internal/domain/companion"
	"github.com/yanqian/cogniwell/internal/domain/dashboard"
	"github.com/yanqian/cogniwell/internal/domain/detection"
	"github.com/yanqian/cogniwell/internal/domain/healthmetrics"
	"github.com/yanqian/cogniwell/internal/domain/indicators"
	"github.com/yanqian/cogniwell/internal/domain/scoring"
	"github.com/yanqian/cogniwell/internal/domain/trend"
	"github.com/yanqian/cogniwell/internal/domain/wellness"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Detections detection.Service
	Metrics    healthmetrics.Service
	Scores     scoring.Service
	Trends     trend.Service
	Indicators indicators.Service
	Plans      wellness.Service
	Companion  companion.Service
	Dashboard  dashboard.Service
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	svc    Services
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc Services, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With("component", "http.handler")}
}

// SubmitDetection stores one detector output.
func (h *Handler) SubmitDetection(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req detection.SubmitInput
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.svc.Detections.Submit(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListDetections returns stored detection results, newest first.
func (h *Handler) ListDetections(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var q detection.ListQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Detections.List(c.Request.Context(), userID, q)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IngestWearable stores a reading and folds it into today's metrics.
func (h *Handler) IngestWearable(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req healthmetrics.ReadingInput
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Metrics.Ingest(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListWearables returns raw readings in a window.
func (h *Handler) ListWearables(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var q healthmetrics.ReadingsQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Metrics.Readings(c.Request.Context(), userID, q)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TodayMetrics returns today's aggregated health metrics.
func (h *Handler) TodayMetrics(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	resp, err := h.svc.Metrics.Today(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ComputeScore calculates and stores a composite score.
func (h *Handler) ComputeScore(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	resp, err := h.svc.Scores.Compute(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) LatestScore(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	snap, err := h.svc.Scores.Latest(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) ScoreHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	resp, err := h.svc.Scores.History(c.Request.Context(), userID, c.Query("window"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Trends analyzes a score or detection series over a window.
func (h *Handler) Trends(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req trend.Request
	if !bindQuery(c, &req) {
		return
	}
	resp, err := h.svc.Trends.Analyze(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Indicators(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var q indicators.Query
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Indicators.Top(c.Request.Context(), userID, q)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard returns the combined overview.
func (h *Handler) Dashboard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var q dashboard.Query
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Dashboard.Get(c.Request.Context(), userID, q)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}
