package store

import (
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// feed fans the favorites list out to watchers after every mutation.
// The initial read of a watch and every publish read-and-deliver hold emit,
// so a watcher never sees a snapshot older than one it already received.
// Watchers must not mutate the store from their callback.
type feed struct {
	emit sync.Mutex

	mu   sync.Mutex
	next int
	fns  map[int]func([]domain.CatalogItem)
}

func newFeed() *feed {
	return &feed{fns: make(map[int]func([]domain.CatalogItem))}
}

// watch registers fn, primes it with list() and returns the detach func.
// A failed read primes fn with an empty list.
func (f *feed) watch(fn func([]domain.CatalogItem), list func() ([]domain.CatalogItem, error)) func() {
	f.emit.Lock()
	f.mu.Lock()
	id := f.next
	f.next++
	f.fns[id] = fn
	f.mu.Unlock()

	items, err := list()
	if err != nil {
		items = []domain.CatalogItem{}
	}
	fn(items)
	f.emit.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.fns, id)
		f.mu.Unlock()
	}
}

// publish reads the list once and hands every watcher its own copy.
// It skips the read when nobody is watching.
func (f *feed) publish(list func() ([]domain.CatalogItem, error)) {
	f.emit.Lock()
	defer f.emit.Unlock()

	f.mu.Lock()
	fns := make([]func([]domain.CatalogItem), 0, len(f.fns))
	for _, fn := range f.fns {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	if len(fns) == 0 {
		return
	}

	items, err := list()
	if err != nil {
		return
	}
	for _, fn := range fns {
		cp := make([]domain.CatalogItem, len(items))
		copy(cp, items)
		fn(cp)
	}
}
