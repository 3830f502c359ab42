// Package browse holds the list-screen state machine: browsing popular
// items, searching and filtering, each with an infinite-scroll buffer.
package browse

import (
	"log/slog"
	"strings"

	"github.com/mmcdole/reel/internal/async"
	"github.com/mmcdole/reel/internal/catalog"
	"github.com/mmcdole/reel/internal/domain"
)

// Mode is the active query context. Modes are mutually exclusive.
type Mode int

const (
	ModeIdle Mode = iota
	ModeBrowsing
	ModeSearching
	ModeFiltering
)

func (m Mode) String() string {
	switch m {
	case ModeBrowsing:
		return "browsing"
	case ModeSearching:
		return "searching"
	case ModeFiltering:
		return "filtering"
	default:
		return "idle"
	}
}

// Catalog is the part of the orchestration core the controller drives
type Catalog interface {
	Popular(page int) *async.Future[[]domain.CatalogItem]
	Search(query string, page int) *async.Future[[]domain.CatalogItem]
	Discover(page int, genreIDs []int, year int) *async.Future[[]domain.CatalogItem]
}

// State is a snapshot of the controller's query state
type State struct {
	Mode      Mode
	Page      int // Last page applied to the buffer; 0 before the first
	Query     string
	GenreIDs  []int
	Year      int
	InFlight  bool
	Exhausted bool // An empty page arrived; further pages are not requested
	Count     int  // Buffer length
}

// Controller owns one accumulation buffer and its query state.
// Every method must be called on the foreground context that fg drains;
// responses are applied there too.
type Controller struct {
	core   Catalog
	fg     async.Dispatcher
	logger *slog.Logger

	mode      Mode
	page      int
	query     string
	genreIDs  []int
	year      int
	inFlight  bool
	exhausted bool
	buffer    []domain.CatalogItem

	// generation changes on every mode entry and reset; responses
	// issued under an older generation are dropped
	generation uint64

	items   *async.Signal[[]domain.CatalogItem]
	loading *async.Signal[bool]
	err     *async.Signal[string]
}

// NewController creates an idle controller
func NewController(core Catalog, fg async.Dispatcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		core:    core,
		fg:      fg,
		logger:  logger,
		items:   async.NewSignal([]domain.CatalogItem{}),
		loading: async.NewSignal(false),
		err:     async.NewSignal(""),
	}
}

// Items publishes the buffer after every change
func (c *Controller) Items() *async.Signal[[]domain.CatalogItem] { return c.items }

// Loading is true while a page request is outstanding
func (c *Controller) Loading() *async.Signal[bool] { return c.loading }

// Error holds the last failure or empty-result message; "" when clear
func (c *Controller) Error() *async.Signal[string] { return c.err }

// State returns a snapshot of the query state
func (c *Controller) State() State {
	var genres []int
	if len(c.genreIDs) > 0 {
		genres = append(genres, c.genreIDs...)
	}
	return State{
		Mode:      c.mode,
		Page:      c.page,
		Query:     c.query,
		GenreIDs:  genres,
		Year:      c.year,
		InFlight:  c.inFlight,
		Exhausted: c.exhausted,
		Count:     len(c.buffer),
	}
}

// LoadPopular enters browsing mode and requests page
func (c *Controller) LoadPopular(page int) {
	if page < 1 {
		page = 1
	}
	c.enter(ModeBrowsing, "", nil, 0)
	c.request(page)
}

// LoadNextPage requests the page after the cursor in the active mode.
// It is a no-op while a request is outstanding.
func (c *Controller) LoadNextPage() {
	switch {
	case c.mode == ModeIdle:
		c.logger.Debug("next page ignored while idle")
		return
	case c.inFlight:
		c.logger.Debug("next page ignored, request in flight", "mode", c.mode, "page", c.page)
		return
	case c.exhausted:
		return
	}
	c.request(c.page + 1)
}

// ApplyFilters enters filtering mode. With no genres and no year it
// behaves as ClearFilters.
func (c *Controller) ApplyFilters(genreIDs []int, year int) {
	if len(genreIDs) == 0 && year <= 0 {
		c.ClearFilters()
		return
	}
	if year < 0 {
		year = 0
	}
	c.enter(ModeFiltering, "", genreIDs, year)
	c.request(1)
}

// ClearFilters drops every query parameter and reloads popular items
func (c *Controller) ClearFilters() {
	c.LoadPopular(1)
}

// Refresh reloads from page 1 in browsing mode
func (c *Controller) Refresh() {
	c.LoadPopular(1)
}

// SearchMovies enters searching mode for query. A blank query returns
// to browsing.
func (c *Controller) SearchMovies(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		c.ClearFilters()
		return
	}
	c.enter(ModeSearching, query, nil, 0)
	c.request(1)
}

// ResetState clears every parameter and the buffer without a request
func (c *Controller) ResetState() {
	c.enter(ModeIdle, "", nil, 0)
}

// enter switches mode, clears the buffer and abandons any outstanding
// request. The emptied buffer is published before any new response.
func (c *Controller) enter(mode Mode, query string, genreIDs []int, year int) {
	c.generation++
	c.mode = mode
	c.page = 0
	c.query = query
	c.genreIDs = nil
	if len(genreIDs) > 0 {
		c.genreIDs = append(c.genreIDs, genreIDs...)
	}
	c.year = year
	c.exhausted = false
	c.buffer = nil
	c.err.Set("")
	c.publish()

	if c.inFlight {
		c.inFlight = false
		c.loading.Set(false)
	}
}

func (c *Controller) request(page int) {
	if c.mode == ModeIdle {
		return
	}
	c.inFlight = true
	c.loading.Set(true)

	var f *async.Future[[]domain.CatalogItem]
	switch c.mode {
	case ModeBrowsing:
		f = c.core.Popular(page)
	case ModeSearching:
		f = c.core.Search(c.query, page)
	case ModeFiltering:
		f = c.core.Discover(page, c.genreIDs, c.year)
	}

	gen, mode := c.generation, c.mode
	c.logger.Debug("page requested", "mode", mode, "page", page)
	f.Then(c.fg, func(items []domain.CatalogItem, err error) {
		c.apply(gen, mode, page, items, err)
	})
}

func (c *Controller) apply(gen uint64, mode Mode, page int, items []domain.CatalogItem, err error) {
	if gen != c.generation {
		c.logger.Debug("stale page dropped", "mode", mode, "page", page)
		return
	}

	if err != nil {
		if page == 1 {
			c.buffer = nil
			c.publish()
		}
		c.err.Set(catalog.Describe(opFor(mode), err))
	} else {
		if page == 1 {
			c.buffer = append([]domain.CatalogItem(nil), items...)
		} else {
			c.buffer = append(c.buffer, items...)
		}
		c.page = page
		switch {
		case len(items) == 0 && page == 1:
			c.exhausted = true
			c.err.Set(emptyMessage(mode))
		case len(items) == 0:
			c.exhausted = true
			c.err.Set("")
		default:
			c.err.Set("")
		}
		c.publish()
	}

	c.inFlight = false
	c.loading.Set(false)
}

func (c *Controller) publish() {
	out := make([]domain.CatalogItem, len(c.buffer))
	copy(out, c.buffer)
	c.items.Set(out)
}

func opFor(mode Mode) string {
	switch mode {
	case ModeSearching:
		return domain.OpSearch
	case ModeFiltering:
		return domain.OpDiscover
	default:
		return domain.OpPopular
	}
}

func emptyMessage(mode Mode) string {
	switch mode {
	case ModeSearching:
		return catalog.MsgNoResults
	case ModeFiltering:
		return catalog.MsgNoFilteredMovies
	default:
		return catalog.MsgNoMovies
	}
}
