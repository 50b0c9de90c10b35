package middleware

import (
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request on the http channel.
func RequestLogger(logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.Last().Error())
		}
		if c.Writer.Status() >= 500 {
			logger.HTTP().Error("Request failed", args...)
			return
		}
		logger.HTTP().Debug("Request completed", args...)
	}
}
