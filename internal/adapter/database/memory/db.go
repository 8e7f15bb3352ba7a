package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/patrickmn/go-cache"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
)

type todoRepository struct {
	mu     sync.Mutex
	items  *cache.Cache
	nextID int
}

// NewTodoRepository returns a process-local store of todos keyed by id. Ids
// are assigned in creation order starting after the highest seeded id.
func NewTodoRepository(seed ...domain.Todo) port.TodoRepository {
	r := &todoRepository{items: cache.New(cache.NoExpiration, 0)}

	for _, t := range seed {
		if !t.Persisted() {
			continue
		}
		r.items.Set(key(t.ID), t, cache.NoExpiration)
		r.nextID = max(r.nextID, t.ID)
	}

	return r
}

func key(id int) string {
	return strconv.Itoa(id)
}

func (r *todoRepository) ListByUser(ctx context.Context, userID int) ([]domain.Todo, error) {
	var todos []domain.Todo

	for _, item := range r.items.Items() {
		todo := item.Object.(domain.Todo)
		if todo.BelongsToUser(userID) {
			todos = append(todos, todo)
		}
	}

	slices.SortFunc(todos, func(a, b domain.Todo) int { return cmp.Compare(a.ID, b.ID) })
	return todos, nil
}

func (r *todoRepository) Get(ctx context.Context, id int) (domain.Todo, error) {
	item, found := r.items.Get(key(id))
	if !found {
		return domain.Todo{}, domain.ErrNotFound
	}
	return item.(domain.Todo), nil
}

func (r *todoRepository) Create(ctx context.Context, draft domain.Draft) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	todo := domain.Todo{
		ID:        r.nextID,
		UserID:    draft.UserID,
		Title:     draft.Title,
		Completed: draft.Completed,
	}

	r.items.Set(key(todo.ID), todo, cache.NoExpiration)
	return todo, nil
}

func (r *todoRepository) Update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.items.Get(key(todo.ID)); !found {
		return domain.Todo{}, domain.ErrNotFound
	}

	r.items.Set(key(todo.ID), todo, cache.NoExpiration)
	return todo, nil
}

func (r *todoRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.items.Get(key(id)); !found {
		return domain.ErrNotFound
	}

	r.items.Delete(key(id))
	return nil
}
