package fakeapi

import (
	"github.com/gin-gonic/gin"

	"todoclient/internal/adapter/http/middleware"
	"todoclient/pkg/config"
	"todoclient/pkg/metrics"
	. "todoclient/pkg/middlewares"
)

type RouterConfig struct {
	ServiceName string
	Fake        config.FakeConfig
	Metrics     *metrics.ServerMetrics
	Logger      *config.Logger
}

// SetupRouter exposes the remote collection routes: list by user, create,
// partial update and delete by id.
func SetupRouter(handler *TodoHandler, cfg RouterConfig) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = config.NewNopLogger()
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "todoclient-fake"
	}

	router := gin.New()

	router.Use(middleware.CurrentMiddleware())
	SetupGinMiddleware(router, serviceName, cfg.Metrics, logger, cfg.Fake)
	router.Use(gin.Recovery())

	todos := router.Group("/todos")
	{
		todos.GET("", handler.GetTodos)
		todos.POST("", handler.CreateTodo)
		todos.PATCH("/:id", handler.UpdateTodo)
		todos.DELETE("/:id", handler.DeleteTodo)
	}

	return router
}
