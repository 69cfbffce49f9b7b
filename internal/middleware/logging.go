package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"go.uber.org/zap"
)

// RequestLoggingMiddleware logs one structured line per completed request.
// Computation requests can run long, so duration is the field to watch.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)
		correlationID := GetCorrelationID(c)

		if logger.Log != nil {
			logger.Log.Info("Request completed",
				zap.String("correlation_id", correlationID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", c.Writer.Status()),
				zap.Duration("duration", duration),
				zap.String("client_ip", c.ClientIP()),
				zap.Int("body_size", c.Writer.Size()),
			)
		}

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				logger.Error("Request error",
					zap.String("correlation_id", correlationID),
					zap.Error(err.Err),
				)
			}
		}
	}
}
