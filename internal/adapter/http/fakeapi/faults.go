package fakeapi

import (
	"context"
	"sync"

	"todoclient/pkg/metrics"
)

const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// AnyID matches every record in a fault rule.
const AnyID = 0

type faultKey struct {
	op string
	id int
}

// Faults decides which requests fail. A rule without a count fails forever.
type Faults struct {
	mu      sync.Mutex
	rules   map[faultKey]int
	metrics *metrics.ServerMetrics
}

func NewFaults(m *metrics.ServerMetrics) *Faults {
	return &Faults{rules: map[faultKey]int{}, metrics: m}
}

// Fail makes op on id fail. times <= 0 fails until Reset.
func (f *Faults) Fail(op string, id int, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if times <= 0 {
		times = -1
	}
	f.rules[faultKey{op, id}] = times
}

func (f *Faults) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules = map[faultKey]int{}
}

func (f *Faults) take(ctx context.Context, op string, id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, key := range []faultKey{{op, id}, {op, AnyID}} {
		remaining, ok := f.rules[key]
		if !ok {
			continue
		}

		if remaining > 0 {
			remaining--
			if remaining == 0 {
				delete(f.rules, key)
			} else {
				f.rules[key] = remaining
			}
		}

		if f.metrics != nil {
			f.metrics.RecordFault(ctx, op)
		}
		return true
	}

	return false
}
