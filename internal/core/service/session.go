package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	"todoclient/internal/core/telemetry"
	"todoclient/pkg/config"
)

type SessionOptions struct {
	UserID          int
	NotificationTTL time.Duration
	Probe           port.Telemetry
	Logger          *config.Logger
}

// View is everything the render layer needs for one frame.
type View struct {
	Status domain.Status
	Rows   []domain.Row

	ListVisible           bool
	ToggleAllVisible      bool
	AllCompleted          bool
	FooterVisible         bool
	ClearCompletedEnabled bool
	InputDisabled         bool

	ActiveCount    int
	CompletedCount int
	Total          int

	Notice    *Notice
	Version   uint64
	LoadError bool
}

func (v View) ItemsLeft() string {
	return fmt.Sprintf("%d items left", v.ActiveCount)
}

// Session ties the collection, the per-item editors, the batch coordinator and
// the notifier to one user's remote collection.
type Session struct {
	remote   port.TodoRemote
	store    *Store
	editor   *ItemEditor
	batch    *BatchCoordinator
	notifier *Notifier
	probe    port.Telemetry
	logger   *config.Logger
	userID   int

	busy BusyFlag

	mu        sync.RWMutex
	status    domain.Status
	pending   *domain.Draft
	loadError bool
}

func NewSession(remote port.TodoRemote, opts SessionOptions) *Session {
	probe := opts.Probe
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}
	logger := opts.Logger
	if logger == nil {
		logger = config.NewNopLogger()
	}

	s := &Session{
		remote: remote,
		store:  NewStore(),
		probe:  probe,
		logger: logger,
		userID: opts.UserID,
		status: domain.StatusAll,
	}

	s.notifier = NewNotifier(opts.NotificationTTL, probe, logger)
	s.editor = NewItemEditor(remote, s.store, s.notifier, probe, logger)
	s.batch = NewBatchCoordinator(remote, s.store, s.editor, s.notifier, &s.busy, probe, logger, opts.UserID)

	return s
}

func (s *Session) Store() *Store            { return s.store }
func (s *Session) Editor() *ItemEditor      { return s.editor }
func (s *Session) Batch() *BatchCoordinator { return s.batch }
func (s *Session) Notifier() *Notifier      { return s.notifier }
func (s *Session) UserID() int              { return s.userID }
func (s *Session) Enabled() bool            { return s.userID > 0 }

func (s *Session) SetStatus(status domain.Status) error {
	if !status.Valid() {
		return domain.ErrNotFound
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return nil
}

func (s *Session) Status() domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// Load fetches the whole collection once. On failure the collection is left
// empty and a load notification is shown.
func (s *Session) Load(ctx context.Context) error {
	if !s.Enabled() {
		return domain.ErrDisabled
	}

	ctx, op := telemetry.StartOperation(ctx, s.probe, "list", 0)
	todos, err := s.remote.List(ctx)
	op.End(err)

	if err != nil {
		s.store.ReplaceAll(nil)
		s.mu.Lock()
		s.loadError = true
		s.mu.Unlock()

		s.notifier.Notify(ctx, domain.LoadError)
		return domain.NewOperationError(domain.LoadError, 0, err)
	}

	s.store.ReplaceAll(todos)
	s.mu.Lock()
	s.loadError = false
	s.mu.Unlock()

	s.logger.InfoWithTrace(ctx, "Todos loaded", zap.Int("count", len(todos)), zap.Int("user_id", s.userID))
	return nil
}

// Add creates a todo from the new-item input. While the call is in flight the
// draft is shown as a pending row and the input is disabled.
func (s *Session) Add(ctx context.Context, title string) (domain.Todo, error) {
	if !s.Enabled() {
		return domain.Todo{}, domain.ErrDisabled
	}

	title = strings.TrimSpace(title)
	if title == "" {
		s.notifier.Notify(ctx, domain.ValidationError)
		return domain.Todo{}, domain.ErrEmptyTitle
	}

	if !s.busy.TryAcquire() {
		return domain.Todo{}, domain.ErrBusy
	}
	defer s.busy.Release()

	draft := domain.Draft{UserID: s.userID, Title: title, Completed: false}

	s.mu.Lock()
	s.pending = &draft
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	}()

	ctx = context.WithoutCancel(ctx)
	ctx, op := telemetry.StartOperation(ctx, s.probe, "create", 0)
	created, err := s.remote.Create(ctx, draft)
	op.End(err)

	if err != nil {
		s.notifier.Notify(ctx, domain.CreateError)
		return domain.Todo{}, domain.NewOperationError(domain.CreateError, 0, err)
	}
	if !created.Persisted() {
		s.notifier.Notify(ctx, domain.CreateError)
		return domain.Todo{}, domain.NewOperationError(domain.CreateError, 0, domain.ErrUnsaved)
	}

	s.store.Append(created)
	s.logger.DebugWithTrace(ctx, "Todo created", zap.Int("todo_id", created.ID))

	return created, nil
}

// Pending returns the draft of the in-flight create, if any.
func (s *Session) Pending() (domain.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pending == nil {
		return domain.Draft{}, false
	}
	return *s.pending, true
}

func (s *Session) ToggleAll(ctx context.Context) (BatchResult, error) {
	return s.batch.ToggleAll(ctx)
}

func (s *Session) ClearCompleted(ctx context.Context) (BatchResult, error) {
	if s.store.Snapshot().CompletedCount == 0 {
		return BatchResult{}, nil
	}
	return s.batch.ClearCompleted(ctx)
}

// View builds a frame from the current store version.
func (s *Session) View() View {
	snapshot := s.store.Snapshot()

	s.mu.RLock()
	status := s.status
	pending := s.pending
	loadError := s.loadError
	s.mu.RUnlock()

	filtered := Filter(snapshot.Todos, status)

	v := View{
		Status:         status,
		ActiveCount:    snapshot.ActiveCount,
		CompletedCount: snapshot.CompletedCount,
		Total:          snapshot.Total(),
		Version:        snapshot.Version,
		LoadError:      loadError,

		ListVisible:           len(filtered) > 0,
		ToggleAllVisible:      snapshot.Total() > 0,
		AllCompleted:          snapshot.Total() > 0 && snapshot.CompletedCount == snapshot.Total(),
		FooterVisible:         snapshot.Total() > 0,
		ClearCompletedEnabled: snapshot.CompletedCount > 0 && !s.batch.Clearing(),
		InputDisabled:         s.busy.Busy(),
	}

	if v.ListVisible {
		v.Rows = make([]domain.Row, 0, len(filtered)+1)
		for _, t := range filtered {
			v.Rows = append(v.Rows, domain.ConfirmedRow(t, s.editor.State(t.ID)))
		}
		if pending != nil {
			v.Rows = append(v.Rows, domain.PendingRow(*pending))
		}
	}

	if notice, ok := s.notifier.Current(); ok {
		v.Notice = &notice
	}

	return v
}
