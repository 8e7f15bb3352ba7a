package http

import (
	"todoclient/internal/adapter/database/memory"
	"todoclient/internal/adapter/http/fakeapi"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	"todoclient/pkg/config"
	"todoclient/pkg/metrics"
)

// Container wires the fake remote server.
type Container struct {
	TodoRepo    port.TodoRepository
	Faults      *fakeapi.Faults
	TodoHandler *fakeapi.TodoHandler
}

func NewContainer(logger *config.Logger, m *metrics.ServerMetrics, seed ...domain.Todo) *Container {
	todoRepo := memory.NewTodoRepository(seed...)
	faults := fakeapi.NewFaults(m)

	return &Container{
		TodoRepo:    todoRepo,
		Faults:      faults,
		TodoHandler: fakeapi.NewTodoHandler(todoRepo, faults, logger),
	}
}
