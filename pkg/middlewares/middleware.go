package middlewares

import (
	"strconv"
	"time"

	. "todoclient/pkg/config"
	. "todoclient/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func MetricsMiddleware(metrics *ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// LatencyMiddleware delays every request by d to mimic a slow network.
func LatencyMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d > 0 {
			select {
			case <-time.After(d):
			case <-c.Request.Context().Done():
			}
		}
		c.Next()
	}
}

func SetupGinMiddleware(router *gin.Engine, serviceName string, metrics *ServerMetrics, logger *Logger, config FakeConfig) {
	router.Use(otelgin.Middleware(serviceName))

	router.Use(LoggingMiddleware(logger))

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}

	if config.RateLimit > 0 {
		router.Use(NewRateLimiter(config.RateLimit, config.RateWindow, logger).RateLimitMiddleware())
	}

	router.Use(LatencyMiddleware(config.Latency))
}
