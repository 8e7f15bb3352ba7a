package middlewares

import (
	"time"

	. "todoclient/pkg/config"
	ct "todoclient/pkg/context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func LoggingMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", ct.RequestID(c.Request.Context())),
		}

		if current, ok := ct.FromContext(c.Request.Context()); ok {
			if op, ok := current.GetString(ct.KeyOperation); ok {
				fields = append(fields, zap.String("operation", op))
			}
		}

		if c.Writer.Status() >= 500 {
			logger.ErrorWithTrace(c.Request.Context(), "HTTP Request", fields...)
			return
		}

		logger.InfoWithTrace(c.Request.Context(), "HTTP Request", fields...)
	}
}
