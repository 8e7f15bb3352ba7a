package middlewares

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	. "todoclient/internal/adapter/http/helper"
	"todoclient/internal/core/model/response"
	. "todoclient/pkg/config"
)

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// RateLimiter throttles the fake remote per client and route so the client's
// failure handling can be exercised against 429 answers.
type RateLimiter struct {
	cache    *cache.Cache
	requests int
	window   time.Duration
	logger   *Logger
	mutex    sync.Mutex
}

func NewRateLimiter(requests int, window time.Duration, logger *Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = NewNopLogger()
	}

	return &RateLimiter{
		cache:    cache.New(window, 2*window),
		requests: requests,
		window:   window,
		logger:   logger,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.requests <= 0 {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		key := fmt.Sprintf("rate_limit:%s %s:%s", c.Request.Method, path, c.ClientIP())
		allowed, remaining, resetTime := rl.checkRateLimit(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			rl.logger.InfoWithTrace(c.Request.Context(), "Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", rl.requests),
				zap.Duration("window", rl.window))

			SendError(c, http.StatusTooManyRequests, "RATE_LIMITED", []response.ValidationError{{
				Field:   "request",
				Message: fmt.Sprintf("Too many requests. Limit: %d per %v", rl.requests, rl.window),
			}})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) checkRateLimit(key string) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if entry, found := rl.cache.Get(key); found {
		rateLimitEntry := entry.(RateLimitEntry)

		if now.Before(rateLimitEntry.ResetTime) {
			if rateLimitEntry.Count >= rl.requests {
				return false, 0, rateLimitEntry.ResetTime
			}

			rateLimitEntry.Count++
			rl.cache.Set(key, rateLimitEntry, time.Until(rateLimitEntry.ResetTime))
			return true, rl.requests - rateLimitEntry.Count, rateLimitEntry.ResetTime
		}
	}

	resetTime := now.Add(rl.window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, rl.window)

	return true, rl.requests - 1, resetTime
}
