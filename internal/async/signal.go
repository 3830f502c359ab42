package async

import "sync"

// Signal is an observable single-value cell with last-write-wins semantics.
// Set notifies subscribers synchronously on the caller's goroutine, in
// subscription order.
type Signal[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   []subscription[T]
	nextID int
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// NewSignal creates a signal holding initial
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Get returns the current value
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores v and notifies subscribers
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := make([]subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe registers fn for future values. The returned func detaches it.
func (s *Signal[T]) Subscribe(fn func(T)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}
