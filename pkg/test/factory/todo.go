package factory

import (
	"sync/atomic"

	fab "github.com/Goldziher/fabricator"

	"todoclient/internal/core/domain"
)

var sequence atomic.Int64

func NewTodo[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	if len(customData) > 0 {
		return instance.Build(customData...)
	}

	return instance.Build()
}

// Todo builds a persisted record with a unique id unless ID is overridden.
func Todo(userID int, completed bool, customData ...map[string]any) domain.Todo {
	data := map[string]any{
		"ID":        int(sequence.Add(1)),
		"UserID":    userID,
		"Completed": completed,
	}
	customData = append([]map[string]any{data}, customData...)

	todo := NewTodo[domain.Todo](customData...)
	if todo.Title == "" {
		todo.Title = "todo"
	}
	return todo
}

// Todos builds completed records first, then active ones.
func Todos(userID int, completed int, active int) []domain.Todo {
	todos := make([]domain.Todo, 0, completed+active)
	for i := 0; i < completed; i++ {
		todos = append(todos, Todo(userID, true))
	}
	for i := 0; i < active; i++ {
		todos = append(todos, Todo(userID, false))
	}
	return todos
}
