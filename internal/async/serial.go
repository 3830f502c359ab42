package async

import (
	"log/slog"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

const serialBacklog = 256

// Serial runs funcs one at a time, in submission order, on a single
// writer goroutine.
type Serial struct {
	mu     sync.RWMutex
	ch     chan func()
	closed bool
	done   chan struct{}
	logger *slog.Logger
}

// NewSerial starts the writer goroutine
func NewSerial(logger *slog.Logger) *Serial {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Serial{
		ch:     make(chan func(), serialBacklog),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.loop()
	return s
}

func (s *Serial) loop() {
	defer close(s.done)
	for fn := range s.ch {
		s.run(fn)
	}
}

func (s *Serial) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("serial task panicked", "panic", r)
		}
	}()
	fn()
}

// Enqueue submits fn without waiting for it to run.
// After Close it returns domain.ErrClosed.
func (s *Serial) Enqueue(fn func()) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrClosed
	}
	s.ch <- fn
	return nil
}

// Do submits fn and waits until it has run
func (s *Serial) Do(fn func()) error {
	finished := make(chan struct{})
	if err := s.Enqueue(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	<-finished
	return nil
}

// Flush waits until everything enqueued before the call has run
func (s *Serial) Flush() error {
	return s.Do(func() {})
}

// Close runs the remaining backlog and stops the writer
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	<-s.done
}

// Call runs fn on s and returns its result
func Call[T any](s *Serial, fn func() (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	if doErr := s.Do(func() { v, err = fn() }); doErr != nil {
		var zero T
		return zero, doErr
	}
	return v, err
}
