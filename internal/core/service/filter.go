package service

import "todoclient/internal/core/domain"

// Filter returns the subsequence of todos selected by status, in original
// order. StatusAll returns todos itself.
func Filter(todos []domain.Todo, status domain.Status) []domain.Todo {
	switch status {
	case domain.StatusActive:
		return selectTodos(todos, func(t domain.Todo) bool { return !t.Completed })
	case domain.StatusCompleted:
		return selectTodos(todos, func(t domain.Todo) bool { return t.Completed })
	default:
		return todos
	}
}

func selectTodos(todos []domain.Todo, keep func(domain.Todo) bool) []domain.Todo {
	out := make([]domain.Todo, 0, len(todos))
	for _, t := range todos {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
