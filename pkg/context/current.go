package context

import (
	"context"
	"sync"
)

const (
	KeyRequestID = "request_id"
	KeyUserID    = "user_id"
	KeyOperation = "operation"
)

// Current is a request-scoped bag of values carried through ctx.
type Current struct {
	mu   sync.RWMutex
	data map[string]any
}

func NewCurrent() *Current {
	return &Current{
		data: make(map[string]any),
	}
}

func (c *Current) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *Current) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

func (c *Current) GetString(key string) (string, bool) {
	if str, ok := c.Get(key).(string); ok {
		return str, true
	}
	return "", false
}

func (c *Current) GetInt(key string) (int, bool) {
	if i, ok := c.Get(key).(int); ok {
		return i, true
	}
	return 0, false
}

func (c *Current) All() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]any, len(c.data))
	for k, v := range c.data {
		result[k] = v
	}
	return result
}

type contextKey string

const currentKey contextKey = "current"

func WithCurrent(ctx context.Context, current *Current) context.Context {
	return context.WithValue(ctx, currentKey, current)
}

func FromContext(ctx context.Context) (*Current, bool) {
	current, ok := ctx.Value(currentKey).(*Current)
	return current, ok
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	current, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	id, _ := current.GetString(KeyRequestID)
	return id
}

// WithRequestID returns ctx carrying id, reusing the Current already in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	current, ok := FromContext(ctx)
	if !ok {
		current = NewCurrent()
		ctx = WithCurrent(ctx, current)
	}
	current.Set(KeyRequestID, id)
	return ctx
}
