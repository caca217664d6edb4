package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cogniwell/internal/domain/wellness"
)

// CurrentPlan returns the active plan, generating one when it is missing or stale.
func (h *Handler) CurrentPlan(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	resp, err := h.svc.Plans.Current(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegeneratePlan always synthesizes a new plan.
func (h *Handler) RegeneratePlan(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	resp, err := h.svc.Plans.Regenerate(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) RecordProgress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req wellness.ProgressInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.svc.Plans.RecordProgress(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) PlanProgress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	resp, err := h.svc.Plans.Progress(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
