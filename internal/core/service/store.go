package service

import (
	"slices"
	"sync"

	"todoclient/internal/core/domain"
)

// Snapshot is an immutable copy of the collection at one version.
type Snapshot struct {
	Version        uint64
	Todos          []domain.Todo
	ActiveCount    int
	CompletedCount int
}

func (s Snapshot) Total() int {
	return len(s.Todos)
}

func (s Snapshot) Completed() []domain.Todo {
	return Filter(s.Todos, domain.StatusCompleted)
}

// Counts derives the active and completed totals. They are never stored apart
// from the collection they describe.
func Counts(todos []domain.Todo) (active, completed int) {
	for _, t := range todos {
		if !t.Completed {
			active++
		}
	}
	return active, len(todos) - active
}

// Store is the authoritative in-memory collection. Every mutation bumps the
// version and listeners receive the new snapshot after the lock is released;
// under concurrent mutation a listener may observe versions out of order.
type Store struct {
	mu        sync.RWMutex
	todos     []domain.Todo
	version   uint64
	listeners map[int]func(Snapshot)
	nextID    int
}

func NewStore() *Store {
	return &Store{listeners: map[int]func(Snapshot){}}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	todos := slices.Clone(s.todos)
	if todos == nil {
		todos = []domain.Todo{}
	}
	active, completed := Counts(todos)

	return Snapshot{
		Version:        s.version,
		Todos:          todos,
		ActiveCount:    active,
		CompletedCount: completed,
	}
}

func (s *Store) Get(id int) (domain.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.todos[i], true
	}
	return domain.Todo{}, false
}

func (s *Store) indexLocked(id int) int {
	return slices.IndexFunc(s.todos, func(t domain.Todo) bool { return t.ID == id })
}

// Subscribe registers fn for every future snapshot and returns its cancel func.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) mutate(fn func(current []domain.Todo) ([]domain.Todo, bool)) bool {
	s.mu.Lock()
	next, changed := fn(s.todos)
	if !changed {
		s.mu.Unlock()
		return false
	}

	s.todos = next
	s.version++
	snapshot := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

// ReplaceAll swaps the whole collection. Unsaved records and duplicate ids
// (after the first) are dropped.
func (s *Store) ReplaceAll(todos []domain.Todo) {
	seen := make(map[int]struct{}, len(todos))
	next := make([]domain.Todo, 0, len(todos))

	for _, t := range todos {
		if !t.Persisted() {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		next = append(next, t)
	}

	s.mutate(func([]domain.Todo) ([]domain.Todo, bool) {
		return next, true
	})
}

// Append adds a confirmed record at the end. A record whose id is already
// present replaces the existing entry in place.
func (s *Store) Append(todo domain.Todo) bool {
	if !todo.Persisted() {
		return false
	}

	return s.mutate(func(current []domain.Todo) ([]domain.Todo, bool) {
		next := slices.Clone(current)
		if i := slices.IndexFunc(next, func(t domain.Todo) bool { return t.ID == todo.ID }); i >= 0 {
			if next[i] == todo {
				return nil, false
			}
			next[i] = todo
			return next, true
		}
		return append(next, todo), true
	})
}

// Patch overwrites only the supplied fields of the record with patch.ID.
func (s *Store) Patch(patch domain.TodoPatch) bool {
	return s.mutate(func(current []domain.Todo) ([]domain.Todo, bool) {
		i := slices.IndexFunc(current, func(t domain.Todo) bool { return t.ID == patch.ID })
		if i < 0 {
			return nil, false
		}

		merged := patch.Apply(current[i])
		if merged == current[i] {
			return nil, false
		}

		next := slices.Clone(current)
		next[i] = merged
		return next, true
	})
}

func (s *Store) Remove(id int) bool {
	return s.RemoveMany(map[int]struct{}{id: {}}) > 0
}

// RemoveMany deletes exactly the records whose id is in ids.
func (s *Store) RemoveMany(ids map[int]struct{}) int {
	removed := 0

	s.mutate(func(current []domain.Todo) ([]domain.Todo, bool) {
		next := make([]domain.Todo, 0, len(current))
		for _, t := range current {
			if _, ok := ids[t.ID]; ok {
				removed++
				continue
			}
			next = append(next, t)
		}
		return next, removed > 0
	})

	return removed
}

// ToggleMany replaces each entry sharing an id with one of todos by that value.
func (s *Store) ToggleMany(todos []domain.Todo) int {
	byID := make(map[int]domain.Todo, len(todos))
	for _, t := range todos {
		byID[t.ID] = t
	}

	replaced := 0

	s.mutate(func(current []domain.Todo) ([]domain.Todo, bool) {
		next := slices.Clone(current)
		for i, t := range next {
			if confirmed, ok := byID[t.ID]; ok && confirmed != t {
				next[i] = confirmed
				replaced++
			}
		}
		return next, replaced > 0
	})

	return replaced
}
