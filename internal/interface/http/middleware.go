package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cogniwell/internal/infra/ratelimit"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// rateLimitMiddleware counts requests per user and client IP. Counter failures let the request through.
func rateLimitMiddleware(limiter *ratelimit.Limiter, logger *slog.Logger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := "anon:" + c.ClientIP()
		if claims, ok := getClaims(c); ok {
			key = claims.UserID.String() + ":" + c.ClientIP()
		}
		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limit counter unavailable", "error", err)
			c.Next()
			return
		}
		headers := c.Writer.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if decision.Allowed {
			c.Next()
			return
		}
		headers.Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.ResetIn.Seconds()))))
		logger.Warn("rate limit exceeded", "key", key, "path", c.Request.URL.Path)
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

func requestLogger(logger *slog.Logger, recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		recorder.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), latency)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "latency_ms", latency.Milliseconds())
	}
}
