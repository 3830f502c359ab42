package async

import (
	"fmt"
	"log/slog"
	"sync"
)

const defaultPoolSize = 4

// Pool is the background context: one task per call, at most size running.
// Go never blocks the caller; tasks wait for a slot inside their goroutine.
type Pool struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a pool running at most size tasks concurrently
func NewPool(size int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = defaultPoolSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{sem: make(chan struct{}, size), logger: logger}
}

// Go runs fn on the pool
func (p *Pool) Go(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() { <-p.sem }()
		fn()
	}()
}

// Wait blocks until every submitted task has returned
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Submit runs fn on the pool and returns a future of its result.
// A panic in fn resolves the future with an error instead of crashing.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := NewFuture[T]()
	p.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("background task panicked", "panic", r)
				var zero T
				f.Resolve(zero, fmt.Errorf("background task panicked: %v", r))
			}
		}()
		v, err := fn()
		f.Resolve(v, err)
	})
	return f
}
