package middleware

import (
	ct "todoclient/pkg/context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// CurrentMiddleware attaches a request-scoped Current to the request context,
// reusing the caller's X-Request-ID or generating one.
func CurrentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := ct.WithRequestID(c.Request.Context(), requestID)
		current, _ := ct.FromContext(ctx)

		current.Set("user_agent", c.Request.UserAgent())
		current.Set("ip_address", c.ClientIP())
		current.Set("method", c.Request.Method)
		current.Set("path", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Set("current", current)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}

func GetCurrent(c *gin.Context) *ct.Current {
	if current, ok := c.Get("current"); ok {
		if curr, ok := current.(*ct.Current); ok {
			return curr
		}
	}

	if current, ok := ct.FromContext(c.Request.Context()); ok {
		return current
	}

	return ct.NewCurrent()
}
