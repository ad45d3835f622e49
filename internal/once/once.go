package once

import (
	"context"
	"sync"
	"time"
)

// Event is a write-once synchronization cell used to resolve races: the
// first Set wins, later sets are no-ops, and waiters block until the event
// is set. It is the only structure in the kiosk that is mutated from several
// goroutines at once.
type Event[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	payload T
	set     bool
}

func NewEvent[T any]() *Event[T] {
	return &Event[T]{done: make(chan struct{})}
}

// Set stores v and marks the event set. Only the first call stores its
// payload; the return value reports whether this call won.
func (e *Event[T]) Set(v T) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set {
		return false
	}
	e.set = true
	e.payload = v
	close(e.done)
	return true
}

func (e *Event[T]) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

// Payload returns the stored value and whether the event has been set.
func (e *Event[T]) Payload() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payload, e.set
}

// Wait blocks until the event is set or ctx is cancelled.
func (e *Event[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-e.done:
		v, _ := e.Payload()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryWait waits up to d for the event; d <= 0 waits forever.
func (e *Event[T]) TryWait(d time.Duration) (T, bool) {
	if d <= 0 {
		<-e.done
		v, _ := e.Payload()
		return v, true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-e.done:
		v, _ := e.Payload()
		return v, true
	case <-t.C:
		var zero T
		return zero, false
	}
}
