package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func newLimitedRouter(requests int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewRateLimiter(requests, window, nil).RateLimitMiddleware())

	router.GET("/todos", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.DELETE("/todos/:id", func(c *gin.Context) {
		c.JSON(200, 1)
	})

	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowedRequests(t *testing.T) {
	RegisterTestingT(t)
	router := newLimitedRouter(5, time.Minute)

	for i := 0; i < 5; i++ {
		w := serve(router, "GET", "/todos")

		Expect(w.Code).To(Equal(200))
		Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("5"))
		Expect(w.Header().Get("X-RateLimit-Remaining")).ToNot(BeEmpty())
	}
}

func TestRateLimitMiddleware_ExceedLimit(t *testing.T) {
	RegisterTestingT(t)
	router := newLimitedRouter(2, time.Minute)

	Expect(serve(router, "GET", "/todos").Code).To(Equal(200))
	Expect(serve(router, "GET", "/todos").Code).To(Equal(200))

	w := serve(router, "GET", "/todos")
	Expect(w.Code).To(Equal(http.StatusTooManyRequests))
	Expect(w.Body.String()).To(ContainSubstring("RATE_LIMITED"))
}

func TestRateLimitMiddleware_PerRoute(t *testing.T) {
	RegisterTestingT(t)
	router := newLimitedRouter(1, time.Minute)

	Expect(serve(router, "GET", "/todos").Code).To(Equal(200))
	Expect(serve(router, "DELETE", "/todos/1").Code).To(Equal(200))
	Expect(serve(router, "DELETE", "/todos/2").Code).To(Equal(http.StatusTooManyRequests))
}

func TestRateLimitMiddleware_WindowResets(t *testing.T) {
	RegisterTestingT(t)
	router := newLimitedRouter(1, 100*time.Millisecond)

	Expect(serve(router, "GET", "/todos").Code).To(Equal(200))
	Expect(serve(router, "GET", "/todos").Code).To(Equal(http.StatusTooManyRequests))

	Eventually(func() int { return serve(router, "GET", "/todos").Code }, time.Second, 50*time.Millisecond).Should(Equal(200))
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	RegisterTestingT(t)
	router := newLimitedRouter(0, time.Minute)

	for i := 0; i < 10; i++ {
		Expect(serve(router, "GET", "/todos").Code).To(Equal(200))
		Expect(serve(router, "GET", "/todos").Header().Get("X-RateLimit-Limit")).To(BeEmpty())
	}
}
