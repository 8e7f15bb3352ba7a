package test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"todoclient/internal/core/domain"
)

var ErrRemote = errors.New("remote unavailable")

const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

type Call struct {
	Op   string
	ID   int
	Todo domain.Todo
}

// FakeRemote is an in-memory port.TodoRemote with failure injection and
// per-record gates to control completion order.
type FakeRemote struct {
	mu     sync.Mutex
	userID int
	todos  []domain.Todo
	nextID int
	fail   map[string]map[int]bool
	gates  map[int]chan struct{}
	calls  []Call
}

func NewFakeRemote(userID int, seed ...domain.Todo) *FakeRemote {
	f := &FakeRemote{
		userID: userID,
		todos:  slices.Clone(seed),
		nextID: 1000,
		fail:   map[string]map[int]bool{},
		gates:  map[int]chan struct{}{},
	}
	return f
}

// FailOn makes op fail for id. An id of 0 fails every call of op.
func (f *FakeRemote) FailOn(op string, id int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail[op] == nil {
		f.fail[op] = map[int]bool{}
	}
	f.fail[op][id] = true
}

// Hold blocks calls addressed to id (0 for create) until release is called.
func (f *FakeRemote) Hold(id int) (release func()) {
	gate := make(chan struct{})

	f.mu.Lock()
	f.gates[id] = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

func (f *FakeRemote) Calls(op string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Call
	for _, c := range f.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeRemote) Todos() []domain.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.todos)
}

func (f *FakeRemote) enter(op string, id int, todo domain.Todo) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Op: op, ID: id, Todo: todo})
	gate := f.gates[id]
	failing := f.fail[op][id] || f.fail[op][0]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if failing {
		return ErrRemote
	}
	return nil
}

func (f *FakeRemote) List(ctx context.Context) ([]domain.Todo, error) {
	if err := f.enter(OpList, 0, domain.Todo{}); err != nil {
		return nil, err
	}
	return f.Todos(), nil
}

func (f *FakeRemote) Create(ctx context.Context, draft domain.Draft) (domain.Todo, error) {
	if err := f.enter(OpCreate, 0, domain.Todo{UserID: draft.UserID, Title: draft.Title, Completed: draft.Completed}); err != nil {
		return domain.Todo{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	todo := domain.Todo{ID: f.nextID, UserID: draft.UserID, Title: draft.Title, Completed: draft.Completed}
	f.todos = append(f.todos, todo)
	return todo, nil
}

func (f *FakeRemote) Update(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	if err := f.enter(OpUpdate, todo.ID, todo); err != nil {
		return domain.Todo{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.todos {
		if f.todos[i].ID == todo.ID {
			f.todos[i] = todo
			return todo, nil
		}
	}
	return domain.Todo{}, domain.ErrNotFound
}

func (f *FakeRemote) Delete(ctx context.Context, id int) error {
	if err := f.enter(OpDelete, id, domain.Todo{}); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.IndexFunc(f.todos, func(t domain.Todo) bool { return t.ID == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	f.todos = slices.Delete(f.todos, i, i+1)
	return nil
}
