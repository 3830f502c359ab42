// Package favorites holds the favorites-screen controller: the live
// favorites list, add/remove feedback and a local fuzzy filter.
package favorites

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/reel/internal/async"
	"github.com/mmcdole/reel/internal/domain"
)

// Catalog is the part of the orchestration core the controller drives
type Catalog interface {
	WatchFavorites(fn func([]domain.CatalogItem)) (cancel func())
	AddToFavorites(item domain.CatalogItem)
	RemoveFromFavorites(item domain.CatalogItem)
}

// Match is a filtered favorite with the title positions that matched
type Match struct {
	Item           domain.CatalogItem
	MatchedIndexes []int
}

// Controller mirrors the store's favorites list.
// Methods must be called on the foreground context.
type Controller struct {
	core   Catalog
	logger *slog.Logger
	cancel func()

	items   *async.Signal[[]domain.CatalogItem]
	message *async.Signal[string]
}

// NewController starts watching the favorites list
func NewController(core Catalog, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		core:    core,
		logger:  logger,
		items:   async.NewSignal([]domain.CatalogItem{}),
		message: async.NewSignal(""),
	}
	c.cancel = core.WatchFavorites(func(items []domain.CatalogItem) {
		c.logger.Debug("favorites updated", "count", len(items))
		c.items.Set(items)
	})
	return c
}

// Items is the favorites list ordered by title
func (c *Controller) Items() *async.Signal[[]domain.CatalogItem] { return c.items }

// Message carries "Added to favorites: X" / "Removed from favorites: X"
func (c *Controller) Message() *async.Signal[string] { return c.message }

// Add saves item as a favorite
func (c *Controller) Add(item domain.CatalogItem) {
	c.core.AddToFavorites(item)
	c.message.Set(fmt.Sprintf("Added to favorites: %s", item.Title))
}

// Remove deletes item from the favorites
func (c *Controller) Remove(item domain.CatalogItem) {
	c.core.RemoveFromFavorites(item)
	c.message.Set(fmt.Sprintf("Removed from favorites: %s", item.Title))
}

// Contains reports whether id is in the current list snapshot
func (c *Controller) Contains(id int64) bool {
	for _, it := range c.items.Get() {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Toggle adds item when absent from the list snapshot, removes it otherwise
func (c *Controller) Toggle(item domain.CatalogItem) {
	if c.Contains(item.ID) {
		c.Remove(item)
		return
	}
	c.Add(item)
}

// Filter fuzzy-matches query against favorite titles, best match first.
// A blank query returns every favorite in list order.
func (c *Controller) Filter(query string) []Match {
	items := c.items.Get()
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Match, len(items))
		for i, it := range items {
			out[i] = Match{Item: it}
		}
		return out
	}

	lowerTitles := make([]string, len(items))
	for i, it := range items {
		lowerTitles[i] = strings.ToLower(it.Title)
	}
	matches := fuzzy.Find(strings.ToLower(query), lowerTitles)

	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, Match{Item: items[m.Index], MatchedIndexes: m.MatchedIndexes})
	}
	return out
}

// Close stops watching the store
func (c *Controller) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
