package fakeapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	. "todoclient/internal/adapter/http/helper"
	. "todoclient/internal/adapter/http/middleware"
	. "todoclient/internal/adapter/http/validation"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/port"
	"todoclient/pkg/config"
	ct "todoclient/pkg/context"
	. "todoclient/pkg/tracing"
)

type TodoHandler struct {
	repo   port.TodoRepository
	faults *Faults
	Logger *config.Logger
}

func NewTodoHandler(repo port.TodoRepository, faults *Faults, logger *config.Logger) *TodoHandler {
	if faults == nil {
		faults = NewFaults(nil)
	}
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TodoHandler{
		repo:   repo,
		faults: faults,
		Logger: logger,
	}
}

func (t *TodoHandler) GetTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "GetTodos"),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	userID, err := strconv.Atoi(c.Query("userId"))
	if err != nil || userID <= 0 {
		SendBadRequestError(c, "userId", "userId query parameter is required")
		return
	}

	span.SetAttributes(attribute.Int("user.id", userID))

	if t.injected(c, OpList, AnyID) {
		return
	}

	todos, err := t.repo.ListByUser(ctx, userID)
	if err != nil {
		AddSpanError(span, err)
		t.Logger.ErrorWithTrace(ctx, "Failed to list todos", zap.Error(err), zap.Int("user_id", userID))
		SendInternalError(c, "Error listing todos")
		return
	}

	if todos == nil {
		todos = []domain.Todo{}
	}

	SendSuccess(c, http.StatusOK, todos)
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	params, ok := bindParams[request.CreateTodoRequest](c)
	if !ok {
		return
	}

	if t.injected(c, OpCreate, AnyID) {
		return
	}

	todo, err := t.repo.Create(ctx, domain.Draft{
		UserID:    params.UserID,
		Title:     params.Title,
		Completed: params.Completed,
	})
	if err != nil {
		config.LogError(ctx, t.Logger, err, "Failed to create todo")
		SendInternalError(c, "Error creating todo")
		return
	}

	t.Logger.DebugWithTrace(ctx, "Todo created", zap.Int("todo_id", todo.ID), zap.Int("user_id", todo.UserID))
	SendSuccess(c, http.StatusCreated, todo)
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := todoID(c)
	if !ok {
		return
	}

	params, ok := bindParams[request.UpdateTodoRequest](c)
	if !ok {
		return
	}

	if t.injected(c, OpUpdate, id) {
		return
	}

	current, err := t.repo.Get(ctx, id)
	if err != nil {
		t.respondRepoError(c, err, "Error loading todo")
		return
	}

	patch := domain.TodoPatch{ID: id, UserID: params.UserID, Title: params.Title, Completed: params.Completed}

	updated, err := t.repo.Update(ctx, patch.Apply(current))
	if err != nil {
		t.respondRepoError(c, err, "Error updating todo")
		return
	}

	SendSuccess(c, http.StatusOK, updated)
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := todoID(c)
	if !ok {
		return
	}

	if t.injected(c, OpDelete, id) {
		return
	}

	if err := t.repo.Delete(ctx, id); err != nil {
		t.respondRepoError(c, err, "Error deleting todo")
		return
	}

	// the remote answers a successful delete with the affected row count
	SendSuccess(c, http.StatusOK, 1)
}

// injected records op on the request and answers 503 when a fault is armed for it.
func (t *TodoHandler) injected(c *gin.Context, op string, id int) bool {
	GetCurrent(c).Set(ct.KeyOperation, op)

	if !t.faults.take(c.Request.Context(), op, id) {
		return false
	}
	SendUnavailableError(c, op)
	return true
}

func (t *TodoHandler) respondRepoError(c *gin.Context, err error, message string) {
	if errors.Is(err, domain.ErrNotFound) {
		SendNotFoundError(c, "Todo not found")
		return
	}

	config.LogError(c.Request.Context(), t.Logger, err, message)
	SendInternalError(c, message)
}

// bindParams decodes and validates the JSON body, answering the request itself
// when either step fails.
func bindParams[T any](c *gin.Context) (T, bool) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		SendBadRequestError(c, "request", "Invalid request body")
		return params, false
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return params, false
	}

	return params, true
}

func todoID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		SendBadRequestError(c, "id", "Invalid todo id")
		return 0, false
	}
	return id, true
}
