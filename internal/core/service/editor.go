package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	"todoclient/internal/core/telemetry"
	"todoclient/pkg/config"
)

type CommitOutcome int

const (
	CommitUnchanged CommitOutcome = iota
	CommitUpdated
	CommitDeleted
)

func (o CommitOutcome) String() string {
	switch o {
	case CommitUpdated:
		return "updated"
	case CommitDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// ItemEditor owns the per-record edit state, keyed by todo id and kept apart
// from the collection. At most one remote call per record is in flight; a
// trigger on a busy record fails with domain.ErrBusy instead of queuing.
type ItemEditor struct {
	remote   port.TodoRemote
	store    *Store
	notifier *Notifier
	probe    port.Telemetry
	logger   *config.Logger

	mu     sync.Mutex
	states map[int]domain.EditorState
}

func NewItemEditor(remote port.TodoRemote, store *Store, notifier *Notifier, probe port.Telemetry, logger *config.Logger) *ItemEditor {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	e := &ItemEditor{
		remote:   remote,
		store:    store,
		notifier: notifier,
		probe:    probe,
		logger:   logger,
		states:   map[int]domain.EditorState{},
	}
	store.Subscribe(e.prune)

	return e
}

// State returns the editor state for id; records never touched are Viewing.
func (e *ItemEditor) State(id int) domain.EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.states[id]
}

// prune discards state of records that left the collection.
func (e *ItemEditor) prune(snapshot Snapshot) {
	present := make(map[int]struct{}, len(snapshot.Todos))
	for _, t := range snapshot.Todos {
		present[t.ID] = struct{}{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for id, st := range e.states {
		if _, ok := present[id]; !ok && !st.Busy {
			delete(e.states, id)
		}
	}
}

func (e *ItemEditor) confirmed(id int) (domain.Todo, error) {
	if id <= 0 {
		return domain.Todo{}, domain.ErrUnsaved
	}

	todo, ok := e.store.Get(id)
	if !ok {
		return domain.Todo{}, domain.ErrNotFound
	}
	return todo, nil
}

// Activate enters edit mode with the draft set to the confirmed title.
func (e *ItemEditor) Activate(id int) error {
	todo, err := e.confirmed(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.states[id]
	if st.Busy {
		return domain.ErrBusy
	}
	if st.IsEditing() {
		return nil
	}

	e.states[id] = domain.EditorState{Mode: domain.EditorEditing, Draft: todo.Title}
	return nil
}

func (e *ItemEditor) SetDraft(id int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.states[id]
	if st.Busy {
		return domain.ErrBusy
	}
	if !st.IsEditing() {
		return nil
	}

	st.Draft = text
	e.states[id] = st
	return nil
}

// Cancel drops the draft and returns to Viewing without a remote call.
func (e *ItemEditor) Cancel(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.states[id]
	if st.Busy {
		return domain.ErrBusy
	}

	delete(e.states, id)
	return nil
}

// TryAcquire marks id busy. It fails when a call for id is already in flight.
func (e *ItemEditor) TryAcquire(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.states[id]
	if st.Busy {
		return false
	}

	st.Busy = true
	e.states[id] = st
	return true
}

// Release clears the busy flag; state of records no longer in the collection is dropped.
func (e *ItemEditor) Release(id int) {
	_, present := e.store.Get(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[id]
	if !ok {
		return
	}

	st.Busy = false
	if !present || st == (domain.EditorState{}) {
		delete(e.states, id)
		return
	}
	e.states[id] = st
}

func (e *ItemEditor) settle(id int, fn func(st domain.EditorState) domain.EditorState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[id]
	if !ok {
		return
	}

	st = fn(st)
	st.Busy = false
	if st == (domain.EditorState{}) {
		delete(e.states, id)
		return
	}
	e.states[id] = st
}

// Commit leaves edit mode. A blank draft deletes the record, an unchanged one
// is discarded, anything else is saved with the trimmed title.
func (e *ItemEditor) Commit(ctx context.Context, id int) (CommitOutcome, error) {
	todo, err := e.confirmed(id)
	if err != nil {
		return CommitUnchanged, err
	}

	e.mu.Lock()
	st := e.states[id]
	if st.Busy {
		e.mu.Unlock()
		return CommitUnchanged, domain.ErrBusy
	}
	if !st.IsEditing() {
		e.mu.Unlock()
		return CommitUnchanged, nil
	}

	title := strings.TrimSpace(st.Draft)
	if title == todo.Title {
		delete(e.states, id)
		e.mu.Unlock()
		return CommitUnchanged, nil
	}

	st.Busy = true
	e.states[id] = st
	e.mu.Unlock()

	if title == "" {
		if err := e.deleteAcquired(ctx, id); err != nil {
			return CommitUnchanged, err
		}
		return CommitDeleted, nil
	}

	target := todo
	target.Title = title

	updated, err := e.update(ctx, target)
	if err != nil {
		e.settle(id, func(st domain.EditorState) domain.EditorState { return st })
		return CommitUnchanged, err
	}

	e.store.Patch(domain.PatchTitle(id, updated.Title))
	e.settle(id, func(domain.EditorState) domain.EditorState { return domain.EditorState{} })

	return CommitUpdated, nil
}

// Toggle flips completed on the remote and merges only that field.
func (e *ItemEditor) Toggle(ctx context.Context, id int) error {
	todo, err := e.confirmed(id)
	if err != nil {
		return err
	}
	if !e.TryAcquire(id) {
		return domain.ErrBusy
	}
	defer e.Release(id)

	// re-read under busy so the flip is based on the latest confirmed value
	if latest, ok := e.store.Get(id); ok {
		todo = latest
	}

	target := todo
	target.Completed = !todo.Completed

	updated, err := e.update(ctx, target)
	if err != nil {
		return err
	}

	e.store.Patch(domain.PatchCompleted(id, updated.Completed))
	return nil
}

func (e *ItemEditor) Delete(ctx context.Context, id int) error {
	if _, err := e.confirmed(id); err != nil {
		return err
	}
	if !e.TryAcquire(id) {
		return domain.ErrBusy
	}

	return e.deleteAcquired(ctx, id)
}

func (e *ItemEditor) deleteAcquired(ctx context.Context, id int) error {
	ctx = context.WithoutCancel(ctx)

	ctx, op := telemetry.StartOperation(ctx, e.probe, "delete", id)
	err := e.remote.Delete(ctx, id)
	op.End(err)

	if err != nil {
		e.notifier.Notify(ctx, domain.DeleteError)
		e.settle(id, func(st domain.EditorState) domain.EditorState { return st })
		return domain.NewOperationError(domain.DeleteError, id, err)
	}

	e.store.Remove(id)

	e.mu.Lock()
	delete(e.states, id)
	e.mu.Unlock()

	e.logger.DebugWithTrace(ctx, "Todo deleted", zap.Int("todo_id", id))
	return nil
}

func (e *ItemEditor) update(ctx context.Context, target domain.Todo) (domain.Todo, error) {
	ctx = context.WithoutCancel(ctx)

	ctx, op := telemetry.StartOperation(ctx, e.probe, "update", target.ID)
	updated, err := e.remote.Update(ctx, target)
	op.End(err)

	if err != nil {
		e.notifier.Notify(ctx, domain.UpdateError)
		return domain.Todo{}, domain.NewOperationError(domain.UpdateError, target.ID, err)
	}

	e.logger.DebugWithTrace(ctx, "Todo updated",
		zap.Int("todo_id", updated.ID),
		zap.Bool("completed", updated.Completed))
	return updated, nil
}
