package async

import (
	"context"
	"sync"
	"time"
)

// Dispatcher runs funcs on the single foreground context, in post order.
// Post must not block on the foreground context itself.
type Dispatcher interface {
	Post(fn func())
}

// Queue is an unbounded FIFO Dispatcher.
// Whoever calls Run (or RunNext/RunPending) is the foreground context.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	notify  chan struct{}
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Post enqueues fn. Safe from any goroutine.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, false
	}
	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return fn, true
}

// Ready fires after a Post. A UI loop can wait on it from a helper
// goroutine and then call RunPending on its own goroutine.
func (q *Queue) Ready() <-chan struct{} {
	return q.notify
}

// Len returns the number of queued funcs
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run executes queued funcs until ctx ends
func (q *Queue) Run(ctx context.Context) error {
	for {
		if fn, ok := q.pop(); ok {
			fn()
			continue
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunNext waits up to timeout for one func and runs it.
// It reports whether a func ran.
func (q *Queue) RunNext(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if fn, ok := q.pop(); ok {
			fn()
			return true
		}
		select {
		case <-q.notify:
		case <-deadline.C:
			return false
		}
	}
}

// RunPending runs everything queued right now without waiting.
// Funcs posted while running are included. Returns how many ran.
func (q *Queue) RunPending() int {
	n := 0
	for {
		fn, ok := q.pop()
		if !ok {
			return n
		}
		fn()
		n++
	}
}
