package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cogniwell/internal/domain/auth"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				abortWithError(c, fromAppError(err))
				return
			}
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", "token verification failed", err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
