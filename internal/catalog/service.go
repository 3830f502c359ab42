// Package catalog is the orchestration core: it routes every list, details
// and favorites request to the remote catalog or the local store, recovers
// from remote failures and publishes the shared last-error slot.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mmcdole/reel/internal/async"
	"github.com/mmcdole/reel/internal/domain"
)

const (
	defaultLanguage = "en-US"
	defaultTimeout  = 30 * time.Second
)

// Options configures a Service
type Options struct {
	Language string        // Sent on every remote call
	Timeout  time.Duration // Per remote call; there is no other cancellation

	// Foreground receives last-error updates and favorites emissions.
	// Nil delivers them on the background goroutine that produced them.
	Foreground async.Dispatcher
}

// DetailsResult is the outcome of a details request.
// Item is nil when neither the remote service nor the favorites had it.
type DetailsResult struct {
	Item    *domain.CatalogItem
	Offline bool // Item came from the local favorites copy
}

// DetailsCall tracks one details request. Each future resolves exactly once.
type DetailsCall struct {
	ID int64

	// Fallback resolves true when the remote call failed or came back
	// empty and the local lookup started, false when the remote succeeded
	Fallback *async.Future[bool]
	Item     *async.Future[DetailsResult]
	// Cast resolves to an empty list for offline or unavailable items
	Cast *async.Future[[]domain.CastMember]
}

// Service wraps the catalog client and the favorites store.
// Remote calls run on the pool; store access is serialized on one writer,
// so a read observes every mutation submitted before it.
type Service struct {
	client   domain.CatalogClient
	store    domain.FavoritesStore
	pool     *async.Pool
	writer   *async.Serial
	fg       async.Dispatcher
	language string
	timeout  time.Duration
	logger   *slog.Logger

	lastError *async.Signal[string]
	now       func() time.Time
}

// NewService creates the orchestration core
func NewService(client domain.CatalogClient, store domain.FavoritesStore, pool *async.Pool, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if pool == nil {
		pool = async.NewPool(0, logger)
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Service{
		client:    client,
		store:     store,
		pool:      pool,
		writer:    async.NewSerial(logger),
		fg:        opts.Foreground,
		language:  opts.Language,
		timeout:   opts.Timeout,
		logger:    logger,
		lastError: async.NewSignal(""),
		now:       time.Now,
	}
}

// LastError is the shared last-error slot. "" means no active error,
// not that no error ever happened. Last write wins.
func (s *Service) LastError() *async.Signal[string] {
	return s.lastError
}

func (s *Service) post(fn func()) {
	if s.fg == nil {
		fn()
		return
	}
	s.fg.Post(fn)
}

func (s *Service) setError(msg string) {
	s.post(func() { s.lastError.Set(msg) })
}

func (s *Service) clearError() {
	s.post(func() {
		if s.lastError.Get() != "" {
			s.lastError.Set("")
		}
	})
}

func (s *Service) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// === List queries ===

// list runs fetch on the pool. Success clears the error slot; failure sets
// it and resolves with an empty list alongside the error.
func (s *Service) list(op string, fetch func(ctx context.Context) (*domain.ItemPage, error)) *async.Future[[]domain.CatalogItem] {
	return async.Submit(s.pool, func() ([]domain.CatalogItem, error) {
		ctx, cancel := s.callContext()
		defer cancel()

		page, err := fetch(ctx)
		if err != nil {
			s.logger.Error("catalog list failed", "op", op, "error", err)
			s.setError(Describe(op, err))
			return []domain.CatalogItem{}, err
		}

		s.logger.Debug("catalog list loaded", "op", op, "page", page.Page, "count", len(page.Items))
		s.clearError()
		if page.Items == nil {
			return []domain.CatalogItem{}, nil
		}
		return page.Items, nil
	})
}

// Popular loads one page of popular items
func (s *Service) Popular(page int) *async.Future[[]domain.CatalogItem] {
	return s.list(domain.OpPopular, func(ctx context.Context) (*domain.ItemPage, error) {
		return s.client.Popular(ctx, page, s.language)
	})
}

// Search loads one page of items matching query
func (s *Service) Search(query string, page int) *async.Future[[]domain.CatalogItem] {
	return s.list(domain.OpSearch, func(ctx context.Context) (*domain.ItemPage, error) {
		return s.client.Search(ctx, query, page, s.language)
	})
}

// Discover loads one page filtered by genres and release year (0 = any),
// ordered by popularity
func (s *Service) Discover(page int, genreIDs []int, year int) *async.Future[[]domain.CatalogItem] {
	q := domain.DiscoverQuery{Page: page, GenreIDs: genreIDs, Year: year, SortBy: domain.DefaultSortBy}
	return s.list(domain.OpDiscover, func(ctx context.Context) (*domain.ItemPage, error) {
		return s.client.Discover(ctx, q, s.language)
	})
}

// === Details ===

// Details fetches an item. On success it also fetches the cast. On a
// failed or empty remote result it falls back to the favorites copy, which
// clears the error slot; with no copy it publishes the offline message.
func (s *Service) Details(id int64) *DetailsCall {
	call := &DetailsCall{
		ID:       id,
		Fallback: async.NewFuture[bool](),
		Item:     async.NewFuture[DetailsResult](),
		Cast:     async.NewFuture[[]domain.CastMember](),
	}

	s.pool.Go(func() {
		ctx, cancel := s.callContext()
		item, err := s.client.Details(ctx, id, s.language)
		cancel()

		if err == nil && !item.IsEmpty() {
			call.Fallback.Resolve(false, nil)
			s.clearError()
			call.Item.Resolve(DetailsResult{Item: item}, nil)
			s.Cast(id).Then(nil, func(cast []domain.CastMember, err error) {
				call.Cast.Resolve(cast, err)
			})
			return
		}

		call.Fallback.Resolve(true, nil)
		s.logger.Info("details unavailable remotely, trying favorites", "id", id, "error", err)

		fav, ferr := async.Call(s.writer, func() (*domain.CatalogItem, error) {
			return s.store.GetFavorite(id)
		})
		if ferr == nil {
			s.logger.Info("details served from favorites", "id", id)
			s.clearError()
			call.Item.Resolve(DetailsResult{Item: fav, Offline: true}, nil)
			call.Cast.Resolve([]domain.CastMember{}, nil)
			return
		}
		if !errors.Is(ferr, domain.ErrNotFound) {
			s.logger.Error("favorites lookup failed", "id", id, "error", ferr)
		}

		failure := &domain.Failure{Kind: domain.FailureOfflineUnavailable, Op: domain.OpDetails}
		if err != nil {
			failure.Detail = err.Error()
		}
		s.setError(Describe(domain.OpDetails, failure))
		call.Item.Resolve(DetailsResult{}, failure)
		call.Cast.Resolve([]domain.CastMember{}, nil)
	})

	return call
}

// Cast fetches the credited cast. Failure sets the error slot and
// resolves with an empty list alongside the error.
func (s *Service) Cast(id int64) *async.Future[[]domain.CastMember] {
	return async.Submit(s.pool, func() ([]domain.CastMember, error) {
		ctx, cancel := s.callContext()
		defer cancel()

		cast, err := s.client.Credits(ctx, id, s.language)
		if err != nil {
			s.logger.Error("credits failed", "id", id, "error", err)
			s.setError(Describe(domain.OpCredits, err))
			return []domain.CastMember{}, err
		}
		if cast == nil {
			cast = []domain.CastMember{}
		}
		return cast, nil
	})
}

// === Favorites ===

// enqueue submits a store mutation without waiting for it
func (s *Service) enqueue(what string, fn func() error) {
	err := s.writer.Enqueue(func() {
		if err := fn(); err != nil {
			s.logger.Error("store mutation failed", "op", what, "error", err)
			return
		}
		s.logger.Debug("store mutation applied", "op", what)
	})
	if err != nil {
		s.logger.Warn("store mutation dropped", "op", what, "error", err)
	}
}

// AddToFavorites saves item (upsert). Fire-and-forget.
func (s *Service) AddToFavorites(item domain.CatalogItem) {
	s.enqueue("add_favorite", func() error { return s.store.UpsertFavorite(item) })
}

// RemoveFromFavorites deletes item from the favorites. Fire-and-forget.
func (s *Service) RemoveFromFavorites(item domain.CatalogItem) {
	id := item.ID
	s.enqueue("remove_favorite", func() error { return s.store.RemoveFavorite(id) })
}

// IsInFavorites reports membership. It blocks until every mutation
// submitted earlier has been applied; call it from a background task.
func (s *Service) IsInFavorites(id int64) (bool, error) {
	return async.Call(s.writer, func() (bool, error) { return s.store.IsFavorite(id) })
}

// FavoriteStatus runs IsInFavorites on the pool
func (s *Service) FavoriteStatus(id int64) *async.Future[bool] {
	return async.Submit(s.pool, func() (bool, error) { return s.IsInFavorites(id) })
}

// WatchFavorites delivers the favorites list, ordered by title, now and
// after every mutation. Deliveries go through the foreground dispatcher.
// Registration runs on the writer, ordered with the store mutations.
func (s *Service) WatchFavorites(fn func([]domain.CatalogItem)) (cancel func()) {
	var stopped atomic.Bool
	stop, err := async.Call(s.writer, func() (func(), error) {
		return s.store.WatchFavorites(func(items []domain.CatalogItem) {
			s.post(func() {
				if !stopped.Load() {
					fn(items)
				}
			})
		}), nil
	})
	if err != nil {
		s.logger.Warn("favorites watch not registered", "error", err)
		return func() {}
	}
	return func() {
		stopped.Store(true)
		stop()
	}
}

// === Reviews ===

// SaveUserReview validates review, stamps its creation time and saves it.
// Validation errors are returned; the write itself is fire-and-forget.
func (s *Service) SaveUserReview(review domain.PersonalReview) error {
	if err := review.Validate(); err != nil {
		return err
	}
	review.CreatedAt = s.now()
	s.enqueue("save_review", func() error { return s.store.UpsertReview(review) })
	return nil
}

// GetUserReview returns the review for id, or nil when there is none.
// It blocks; call it from a background task.
func (s *Service) GetUserReview(id int64) (*domain.PersonalReview, error) {
	review, err := async.Call(s.writer, func() (*domain.PersonalReview, error) {
		return s.store.GetReview(id)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return review, err
}

// UserReview runs GetUserReview on the pool
func (s *Service) UserReview(id int64) *async.Future[*domain.PersonalReview] {
	return async.Submit(s.pool, func() (*domain.PersonalReview, error) { return s.GetUserReview(id) })
}

// DeleteUserReview removes the review for id. Fire-and-forget.
func (s *Service) DeleteUserReview(id int64) {
	s.enqueue("delete_review", func() error { return s.store.DeleteReview(id) })
}

// === Lifecycle ===

// Flush waits until every mutation submitted so far has been applied
func (s *Service) Flush() error {
	return s.writer.Flush()
}

// Close waits for in-flight background tasks, applies pending mutations
// and stops the writer. The store itself is closed by its owner.
func (s *Service) Close() {
	s.pool.Wait()
	s.writer.Close()
}
