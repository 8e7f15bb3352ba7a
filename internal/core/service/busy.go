package service

import "sync/atomic"

// BusyFlag is a non-queuing guard: a second acquire while held fails.
type BusyFlag struct {
	busy atomic.Bool
}

func (b *BusyFlag) TryAcquire() bool {
	return b.busy.CompareAndSwap(false, true)
}

func (b *BusyFlag) Release() {
	b.busy.Store(false)
}

func (b *BusyFlag) Busy() bool {
	return b.busy.Load()
}
