// Package async holds the execution primitives of the orchestration layer:
// one-shot futures, observable signals, the foreground dispatcher, the
// background worker pool and the serialized store writer.
package async

import (
	"context"
	"sync"
)

// Future is a value that resolves exactly once.
// Continuations registered with Then are delivered once and then dropped,
// so a future never holds a live subscription after delivery.
type Future[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	resolved bool
	value    T
	err      error
	waiters  []waiter[T]
}

type waiter[T any] struct {
	d  Dispatcher
	fn func(T, error)
}

// NewFuture returns an unresolved future
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that already holds v and err
func Resolved[T any](v T, err error) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v, err)
	return f
}

// Resolve sets the result. Only the first call has an effect;
// it reports whether this call resolved the future.
func (f *Future[T]) Resolve(v T, err error) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.resolved = true
	f.value = v
	f.err = err
	waiters := f.waiters
	f.waiters = nil
	close(f.done)
	f.mu.Unlock()

	for _, w := range waiters {
		deliver(w, v, err)
	}
	return true
}

// Then schedules fn on d once the future resolves.
// If the future is already resolved, fn is posted immediately.
func (f *Future[T]) Then(d Dispatcher, fn func(T, error)) {
	w := waiter[T]{d: d, fn: fn}

	f.mu.Lock()
	if !f.resolved {
		f.waiters = append(f.waiters, w)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()

	deliver(w, v, err)
}

func deliver[T any](w waiter[T], v T, err error) {
	if w.d == nil {
		w.fn(v, err)
		return
	}
	w.d.Post(func() { w.fn(v, err) })
}

// Done is closed when the future resolves
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future resolves or ctx ends
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
