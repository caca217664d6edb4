package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cogniwell/internal/domain/companion"
)

// CompanionMessage answers a user message.
func (h *Handler) CompanionMessage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req companion.MessageInput
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.svc.Companion.Reply(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, reply)
}

// CompanionHistory lists logged exchanges, oldest first.
func (h *Handler) CompanionHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
			return
		}
		limit = parsed
	}
	resp, err := h.svc.Companion.History(c.Request.Context(), userID, limit)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
