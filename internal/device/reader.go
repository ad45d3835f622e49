package device

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Source is the capability interface onto one physical tag reader.
// NextTag blocks until a tag is presented or ctx is cancelled.
type Source interface {
	ID() string
	NextTag(ctx context.Context) (Tag, error)
	Close() error
}

type State int

const (
	Idle State = iota
	Listening
	Stopped
)

var (
	ErrBusy        = errors.New("reader is already listening")
	ErrClosed      = errors.New("reader is closed")
	ErrStopTimeout = errors.New("listen loop did not stop in time")
)

// Reader wraps a Source with a cancelable listening loop. Exactly one
// listener may be active at a time; the association engine and the vote
// engine take turns, separated by Stop.
type Reader struct {
	src         Source
	stopTimeout time.Duration

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

func NewReader(src Source, stopTimeout time.Duration) *Reader {
	return &Reader{src: src, stopTimeout: stopTimeout}
}

func (r *Reader) ID() string { return r.src.ID() }

func (r *Reader) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Listen starts a background loop that invokes cb for every detected tag
// until Stop is called. It never blocks the caller. Calling Listen while a
// loop is already running is an error; Stop first.
func (r *Reader) Listen(cb func(Tag)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.state == Listening {
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.state = Listening

	go r.loop(ctx, cb, done)
	return nil
}

func (r *Reader) loop(ctx context.Context, cb func(Tag), done chan struct{}) {
	defer close(done)
	for {
		tag, err := r.src.NextTag(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("[device] %s: read error: %v", r.ID(), err)
			// transient I/O hiccup, retry after a short pause
			select {
			case <-ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		r.dispatch(ctx, cb, tag)
	}
}

// dispatch shields the loop and the driver underneath from callback panics.
func (r *Reader) dispatch(ctx context.Context, cb func(Tag), tag Tag) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[device] %s: tag callback panic: %v", r.ID(), p)
		}
	}()
	// a tag raced with cancellation: the caller of Stop must not see it
	if ctx.Err() != nil {
		return
	}
	cb(tag)
}

// Stop cancels the listening loop and joins it, bounded by the configured
// stop timeout. After Stop returns no callback fires: cancellation is
// checked before every dispatch, so even a loop that outlives the join
// cannot invoke the old callback.
func (r *Reader) Stop() error {
	r.mu.Lock()
	if r.state != Listening {
		r.mu.Unlock()
		return nil
	}
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.state = Stopped
	r.mu.Unlock()

	cancel()
	if r.stopTimeout <= 0 {
		<-done
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(r.stopTimeout):
		return fmt.Errorf("%w: %s", ErrStopTimeout, r.ID())
	}
}

// Close stops the loop and releases the underlying source. Idempotent.
func (r *Reader) Close() error {
	if err := r.Stop(); err != nil {
		log.Printf("[device] %s: stop on close: %v", r.ID(), err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}
