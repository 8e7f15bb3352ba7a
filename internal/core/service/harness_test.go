package service_test

import (
	"sync"
	"time"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/service"
	"todoclient/pkg/test"
)

type harness struct {
	remote  *test.FakeRemote
	session *service.Session

	mu      sync.Mutex
	notices []service.Notice
}

func newHarness(ttl time.Duration, seed ...domain.Todo) *harness {
	h := &harness{remote: test.NewFakeRemote(userID, seed...)}
	h.session = service.NewSession(h.remote, service.SessionOptions{
		UserID:          userID,
		NotificationTTL: ttl,
	})
	h.session.Notifier().Subscribe(func(n service.Notice) {
		h.mu.Lock()
		h.notices = append(h.notices, n)
		h.mu.Unlock()
	})
	h.session.Store().ReplaceAll(seed)
	return h
}

func (h *harness) Notices() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, len(h.notices))
	for _, n := range h.notices {
		out = append(out, n.Message)
	}
	return out
}

func (h *harness) Todos() []domain.Todo {
	return h.session.Store().Snapshot().Todos
}

func ids(todos []domain.Todo) []int {
	out := make([]int, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.ID)
	}
	return out
}
