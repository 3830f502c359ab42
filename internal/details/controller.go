// Package details holds the details-screen state machine with its offline
// fallback, cast sub-flow, favorite toggle and personal review.
package details

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/reel/internal/async"
	"github.com/mmcdole/reel/internal/catalog"
	"github.com/mmcdole/reel/internal/domain"
)

// State of the details fallback machine
type State int

const (
	StateIdle State = iota
	StateAwaitingRemote
	StatePopulated
	StateAwaitingLocal
	StatePopulatedOffline
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateAwaitingRemote:
		return "awaiting_remote"
	case StatePopulated:
		return "populated"
	case StateAwaitingLocal:
		return "awaiting_local"
	case StatePopulatedOffline:
		return "populated_offline"
	case StateUnavailable:
		return "unavailable"
	default:
		return "idle"
	}
}

// Terminal reports whether the machine has settled for the current id
func (s State) Terminal() bool {
	return s == StatePopulated || s == StatePopulatedOffline || s == StateUnavailable
}

// CastState of the credits sub-flow
type CastState int

const (
	CastIdle CastState = iota
	CastAwaitingCredits
	CastPopulated
	CastEmpty
)

func (s CastState) String() string {
	switch s {
	case CastAwaitingCredits:
		return "awaiting_credits"
	case CastPopulated:
		return "cast_populated"
	case CastEmpty:
		return "cast_empty"
	default:
		return "idle"
	}
}

// Catalog is the part of the orchestration core the controller drives
type Catalog interface {
	Details(id int64) *catalog.DetailsCall
	FavoriteStatus(id int64) *async.Future[bool]
	AddToFavorites(item domain.CatalogItem)
	RemoveFromFavorites(item domain.CatalogItem)
	UserReview(id int64) *async.Future[*domain.PersonalReview]
	SaveUserReview(review domain.PersonalReview) error
	DeleteUserReview(id int64)
}

// Controller runs the details machine for one item at a time.
// Methods must be called on the foreground context that fg drains.
type Controller struct {
	core   Catalog
	fg     async.Dispatcher
	logger *slog.Logger

	id         int64
	state      State
	castState  CastState
	generation uint64

	item     *async.Signal[*domain.CatalogItem]
	cast     *async.Signal[[]domain.CastMember]
	loading  *async.Signal[bool]
	err      *async.Signal[string]
	favorite *async.Signal[bool]
	review   *async.Signal[*domain.PersonalReview]
	message  *async.Signal[string]
}

// NewController creates an idle details controller
func NewController(core Catalog, fg async.Dispatcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		core:     core,
		fg:       fg,
		logger:   logger,
		item:     async.NewSignal[*domain.CatalogItem](nil),
		cast:     async.NewSignal([]domain.CastMember{}),
		loading:  async.NewSignal(false),
		err:      async.NewSignal(""),
		favorite: async.NewSignal(false),
		review:   async.NewSignal[*domain.PersonalReview](nil),
		message:  async.NewSignal(""),
	}
}

func (c *Controller) ID() int64 { return c.id }

func (c *Controller) State() State { return c.state }

func (c *Controller) CastState() CastState { return c.castState }

func (c *Controller) Item() *async.Signal[*domain.CatalogItem] { return c.item }

// Cast is the cast of the shown item; always empty offline
func (c *Controller) Cast() *async.Signal[[]domain.CastMember] { return c.cast }

func (c *Controller) Loading() *async.Signal[bool] { return c.loading }

func (c *Controller) Error() *async.Signal[string] { return c.err }

func (c *Controller) IsFavorite() *async.Signal[bool] { return c.favorite }

func (c *Controller) Review() *async.Signal[*domain.PersonalReview] { return c.review }

// Message carries transient feedback such as "Added to favorites: X"
func (c *Controller) Message() *async.Signal[string] { return c.message }

// Load restarts the machine for id, whatever state it was in
func (c *Controller) Load(id int64) {
	c.generation++
	gen := c.generation

	c.id = id
	c.state = StateAwaitingRemote
	c.castState = CastIdle
	c.item.Set(nil)
	c.cast.Set([]domain.CastMember{})
	c.err.Set("")
	c.message.Set("")
	c.favorite.Set(false)
	c.review.Set(nil)
	c.loading.Set(true)

	call := c.core.Details(id)

	call.Fallback.Then(c.fg, func(fallback bool, _ error) {
		if gen != c.generation || !fallback {
			return
		}
		c.state = StateAwaitingLocal
	})

	call.Item.Then(c.fg, func(res catalog.DetailsResult, err error) {
		if gen != c.generation {
			c.logger.Debug("stale details dropped", "id", id)
			return
		}
		c.loading.Set(false)
		switch {
		case err != nil || res.Item == nil:
			c.state = StateUnavailable
			c.castState = CastEmpty
			c.err.Set(catalog.Describe(domain.OpDetails, err))
		case res.Offline:
			c.state = StatePopulatedOffline
			c.item.Set(res.Item)
		default:
			c.state = StatePopulated
			if c.castState == CastIdle {
				c.castState = CastAwaitingCredits
			}
			c.item.Set(res.Item)
		}
		c.logger.Debug("details settled", "id", id, "state", c.state)
	})

	call.Cast.Then(c.fg, func(cast []domain.CastMember, err error) {
		if gen != c.generation {
			return
		}
		if len(cast) > 0 {
			c.castState = CastPopulated
		} else {
			c.castState = CastEmpty
		}
		if err != nil && c.state == StatePopulated {
			c.err.Set(catalog.Describe(domain.OpCredits, err))
		}
		c.cast.Set(cast)
	})

	c.core.FavoriteStatus(id).Then(c.fg, func(fav bool, err error) {
		if gen != c.generation {
			return
		}
		if err != nil {
			c.logger.Error("favorite status failed", "id", id, "error", err)
			return
		}
		c.favorite.Set(fav)
	})

	c.core.UserReview(id).Then(c.fg, func(review *domain.PersonalReview, err error) {
		if gen != c.generation {
			return
		}
		if err != nil {
			c.logger.Error("review lookup failed", "id", id, "error", err)
			return
		}
		c.review.Set(review)
	})
}

// ToggleFavorite adds or removes the shown item. The item carries the
// details enrichment fields so the saved copy works offline.
// Membership is re-read from the store afterwards.
func (c *Controller) ToggleFavorite() {
	item := c.item.Get()
	if item == nil {
		return
	}
	gen := c.generation

	if c.favorite.Get() {
		c.core.RemoveFromFavorites(*item)
		c.favorite.Set(false)
		c.message.Set(fmt.Sprintf("Removed from favorites: %s", item.Title))
	} else {
		c.core.AddToFavorites(*item)
		c.favorite.Set(true)
		c.message.Set(fmt.Sprintf("Added to favorites: %s", item.Title))
	}

	c.core.FavoriteStatus(item.ID).Then(c.fg, func(fav bool, err error) {
		if gen != c.generation || err != nil {
			return
		}
		c.favorite.Set(fav)
	})
}

// SaveReview stores the user's rating (0-5) and comment for the shown item.
// A review with neither is rejected.
func (c *Controller) SaveReview(rating float64, comment string) error {
	if c.state == StateIdle || c.id == 0 {
		return fmt.Errorf("no item loaded")
	}
	review := domain.PersonalReview{MovieID: c.id, Rating: rating, Comment: comment}
	if err := c.core.SaveUserReview(review); err != nil {
		return err
	}
	c.review.Set(&review)
	c.message.Set("Review saved")
	return nil
}

// DeleteReview removes the user's review for the shown item
func (c *Controller) DeleteReview() {
	if c.id == 0 {
		return
	}
	c.core.DeleteUserReview(c.id)
	c.review.Set(nil)
	c.message.Set("Review deleted")
}
