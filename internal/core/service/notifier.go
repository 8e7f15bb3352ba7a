package service

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	"todoclient/pkg/config"
)

const noticeKey = "notice"

// Notice is the transient error banner content.
type Notice struct {
	Kind      domain.ErrorKind
	Message   string
	SetAt     time.Time
	ExpiresAt time.Time
}

// Notifier holds at most one live notice. Setting a notice replaces the
// current one and restarts its expiry window.
type Notifier struct {
	cache  *cache.Cache
	ttl    time.Duration
	probe  port.Telemetry
	logger *config.Logger

	mu        sync.Mutex
	listeners []func(Notice)
}

func NewNotifier(ttl time.Duration, probe port.Telemetry, logger *config.Logger) *Notifier {
	if ttl <= 0 {
		ttl = config.DefaultNotificationTTL
	}
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &Notifier{
		// no janitor: expiry is checked on read
		cache:  cache.New(ttl, 0),
		ttl:    ttl,
		probe:  probe,
		logger: logger,
	}
}

func (n *Notifier) TTL() time.Duration {
	return n.ttl
}

// Notify shows the generic message for kind.
func (n *Notifier) Notify(ctx context.Context, kind domain.ErrorKind) Notice {
	now := time.Now()
	notice := Notice{
		Kind:      kind,
		Message:   kind.Message(),
		SetAt:     now,
		ExpiresAt: now.Add(n.ttl),
	}

	n.cache.Set(noticeKey, notice, n.ttl)

	if n.probe != nil {
		n.probe.RecordNotification(ctx, kind.String())
	}
	n.logger.InfoWithTrace(ctx, "Notification shown",
		zap.String("kind", kind.String()),
		zap.String("message", notice.Message))

	n.mu.Lock()
	listeners := append([]func(Notice){}, n.listeners...)
	n.mu.Unlock()

	for _, l := range listeners {
		l(notice)
	}

	return notice
}

// Current returns the live notice, if one was set less than TTL ago and not dismissed.
func (n *Notifier) Current() (Notice, bool) {
	v, ok := n.cache.Get(noticeKey)
	if !ok {
		return Notice{}, false
	}
	return v.(Notice), true
}

func (n *Notifier) Dismiss() {
	n.cache.Delete(noticeKey)
}

// Subscribe registers fn to be called for every notice set.
func (n *Notifier) Subscribe(fn func(Notice)) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.listeners = append(n.listeners, fn)
}
