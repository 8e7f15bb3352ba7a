package port

import (
	"context"

	"todoclient/internal/core/domain"
)

// TodoRemote is the per-user remote collection. Implementations are scoped to
// a single user id fixed at construction.
type TodoRemote interface {
	List(ctx context.Context) ([]domain.Todo, error)
	Create(ctx context.Context, draft domain.Draft) (domain.Todo, error)
	Update(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Delete(ctx context.Context, id int) error
}

// TodoRepository is the storage behind the development remote server.
type TodoRepository interface {
	ListByUser(ctx context.Context, userID int) ([]domain.Todo, error)
	Get(ctx context.Context, id int) (domain.Todo, error)
	Create(ctx context.Context, draft domain.Draft) (domain.Todo, error)
	Update(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Delete(ctx context.Context, id int) error
}
