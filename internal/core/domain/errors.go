package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBusy       = errors.New("operation already in flight")
	ErrEmptyTitle = errors.New("title should not be empty")
	ErrUnsaved    = errors.New("todo is not persisted")
	ErrNotFound   = errors.New("todo not found")
	ErrDisabled   = errors.New("user id is not configured")
)

type ErrorKind int

const (
	LoadError ErrorKind = iota + 1
	CreateError
	UpdateError
	DeleteError
	ToggleError
	ValidationError
)

func (k ErrorKind) String() string {
	switch k {
	case LoadError:
		return "load"
	case CreateError:
		return "create"
	case UpdateError:
		return "update"
	case DeleteError:
		return "delete"
	case ToggleError:
		return "toggle"
	case ValidationError:
		return "validation"
	default:
		return "unknown"
	}
}

// Message is the generic user-facing text for the attempted action.
func (k ErrorKind) Message() string {
	switch k {
	case LoadError:
		return "Unable to load todos"
	case CreateError:
		return "Unable to add a todo"
	case UpdateError:
		return "Unable to update a todo"
	case DeleteError:
		return "Unable to delete a todo"
	case ToggleError:
		return "Unable to toggle a todo"
	case ValidationError:
		return "Title should not be empty"
	default:
		return "Something went wrong"
	}
}

// OperationError wraps a failed remote call with the action it belonged to.
type OperationError struct {
	Kind   ErrorKind
	TodoID int
	Err    error
}

func NewOperationError(kind ErrorKind, todoID int, err error) *OperationError {
	return &OperationError{Kind: kind, TodoID: todoID, Err: err}
}

func (e *OperationError) Error() string {
	if e.TodoID > 0 {
		return fmt.Sprintf("%s todo %d: %v", e.Kind, e.TodoID, e.Err)
	}
	return fmt.Sprintf("%s todos: %v", e.Kind, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// KindOf reports the ErrorKind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind, true
	}
	return 0, false
}
