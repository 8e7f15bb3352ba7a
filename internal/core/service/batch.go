package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	"todoclient/internal/core/telemetry"
	"todoclient/pkg/config"
	"todoclient/pkg/tracing"
)

const (
	batchToggleAll      = "toggle_all"
	batchClearCompleted = "clear_completed"
)

// BatchResult partitions one batch by outcome.
type BatchResult struct {
	Succeeded []domain.Todo
	Failed    []int
	// Skipped holds ids left out because a call for them was already in flight.
	Skipped []int
}

func (r BatchResult) Dispatched() int {
	return len(r.Succeeded) + len(r.Failed)
}

type settled struct {
	target domain.Todo
	result domain.Todo
	err    error
}

// BatchCoordinator runs toggle-all and clear-completed: one independent remote
// call per target, dispatched concurrently, merged into the store one settled
// call at a time in completion order.
type BatchCoordinator struct {
	remote   port.TodoRemote
	store    *Store
	editor   *ItemEditor
	notifier *Notifier
	probe    port.Telemetry
	logger   *config.Logger
	userID   int

	busy     *BusyFlag
	clearing BusyFlag
}

func NewBatchCoordinator(remote port.TodoRemote, store *Store, editor *ItemEditor, notifier *Notifier, busy *BusyFlag, probe port.Telemetry, logger *config.Logger, userID int) *BatchCoordinator {
	if busy == nil {
		busy = &BusyFlag{}
	}
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &BatchCoordinator{
		remote:   remote,
		store:    store,
		editor:   editor,
		notifier: notifier,
		probe:    probe,
		logger:   logger,
		userID:   userID,
		busy:     busy,
	}
}

func (c *BatchCoordinator) Busy() bool {
	return c.busy.Busy()
}

func (c *BatchCoordinator) Clearing() bool {
	return c.clearing.Busy()
}

// ToggleAllTargets computes the records toggle-all will send. When every
// record shares one state all of them flip; otherwise only the active ones
// are completed.
func ToggleAllTargets(todos []domain.Todo, completedCount int) []domain.Todo {
	if len(todos) == 0 {
		return nil
	}

	uniform := completedCount == 0 || completedCount == len(todos)

	targets := make([]domain.Todo, 0, len(todos))
	for _, t := range todos {
		switch {
		case uniform:
			t.Completed = !t.Completed
		case t.Completed:
			continue
		default:
			t.Completed = true
		}
		targets = append(targets, t)
	}
	return targets
}

// ToggleAll reads the live collection, dispatches one update per target and
// merges every success as it arrives. The global busy flag is held until all
// calls have settled.
func (c *BatchCoordinator) ToggleAll(ctx context.Context) (BatchResult, error) {
	if !c.busy.TryAcquire() {
		return BatchResult{}, domain.ErrBusy
	}
	defer c.busy.Release()

	snapshot := c.store.Snapshot()
	targets := ToggleAllTargets(snapshot.Todos, snapshot.CompletedCount)

	var result BatchResult
	var failures []error

	err := tracing.BatchSpanWrapper(ctx, batchToggleAll, c.userID, len(targets), func(ctx context.Context) error {
		ctx = context.WithoutCancel(ctx)

		targets, result.Skipped = c.acquire(targets)
		results := c.dispatch(ctx, targets, func(ctx context.Context, t domain.Todo) (domain.Todo, error) {
			ctx, op := telemetry.StartOperation(ctx, c.probe, "update", t.ID)
			updated, err := c.remote.Update(ctx, t)
			op.End(err)
			return updated, err
		})

		for range targets {
			s := <-results

			if s.err != nil {
				c.notifier.Notify(ctx, domain.ToggleError)
				result.Failed = append(result.Failed, s.target.ID)
				failures = append(failures, domain.NewOperationError(domain.ToggleError, s.target.ID, s.err))
			} else {
				c.store.ToggleMany([]domain.Todo{s.result})
				result.Succeeded = append(result.Succeeded, s.result)
			}
			c.editor.Release(s.target.ID)
		}

		c.record(ctx, batchToggleAll, result)
		return errors.Join(failures...)
	})

	return result, err
}

// ClearCompleted deletes every completed record. Records whose delete failed
// stay; the rest are removed as their calls settle.
func (c *BatchCoordinator) ClearCompleted(ctx context.Context) (BatchResult, error) {
	if !c.clearing.TryAcquire() {
		return BatchResult{}, domain.ErrBusy
	}
	defer c.clearing.Release()

	targets := c.store.Snapshot().Completed()

	var result BatchResult
	var failures []error

	err := tracing.BatchSpanWrapper(ctx, batchClearCompleted, c.userID, len(targets), func(ctx context.Context) error {
		ctx = context.WithoutCancel(ctx)

		targets, result.Skipped = c.acquire(targets)
		results := c.dispatch(ctx, targets, func(ctx context.Context, t domain.Todo) (domain.Todo, error) {
			ctx, op := telemetry.StartOperation(ctx, c.probe, "delete", t.ID)
			err := c.remote.Delete(ctx, t.ID)
			op.End(err)
			return t, err
		})

		deleted := make(map[int]struct{}, len(targets))

		for range targets {
			s := <-results

			if s.err != nil {
				c.notifier.Notify(ctx, domain.DeleteError)
				result.Failed = append(result.Failed, s.target.ID)
				failures = append(failures, domain.NewOperationError(domain.DeleteError, s.target.ID, s.err))
			} else {
				deleted[s.target.ID] = struct{}{}
				c.store.RemoveMany(map[int]struct{}{s.target.ID: {}})
				result.Succeeded = append(result.Succeeded, s.target)
			}
			c.editor.Release(s.target.ID)
		}

		c.logger.DebugWithTrace(ctx, "Completed todos cleared", zap.Int("deleted", len(deleted)))
		c.record(ctx, batchClearCompleted, result)
		return errors.Join(failures...)
	})

	return result, err
}

// acquire marks each target busy in the editor and drops those already in flight.
func (c *BatchCoordinator) acquire(targets []domain.Todo) ([]domain.Todo, []int) {
	var skipped []int

	acquired := make([]domain.Todo, 0, len(targets))
	for _, t := range targets {
		if !t.Persisted() {
			continue
		}
		if !c.editor.TryAcquire(t.ID) {
			skipped = append(skipped, t.ID)
			continue
		}
		acquired = append(acquired, t)
	}

	return acquired, skipped
}

func (c *BatchCoordinator) dispatch(ctx context.Context, targets []domain.Todo, call func(context.Context, domain.Todo) (domain.Todo, error)) <-chan settled {
	results := make(chan settled, len(targets))

	for _, t := range targets {
		go func(t domain.Todo) {
			res, err := call(ctx, t)
			results <- settled{target: t, result: res, err: err}
		}(t)
	}

	return results
}

func (c *BatchCoordinator) record(ctx context.Context, operation string, result BatchResult) {
	if c.probe != nil {
		c.probe.RecordBatch(ctx, operation, result.Dispatched(), len(result.Failed))
	}
}
