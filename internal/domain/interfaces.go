package domain

import "context"

// CatalogClient: network operations against the remote catalog service.
// Each call is one-shot: no retries, no caching.
// Every returned error is a *Failure.
type CatalogClient interface {
	Popular(ctx context.Context, page int, language string) (*ItemPage, error)
	Search(ctx context.Context, query string, page int, language string) (*ItemPage, error)
	Discover(ctx context.Context, q DiscoverQuery, language string) (*ItemPage, error)
	Details(ctx context.Context, id int64, language string) (*CatalogItem, error)
	Credits(ctx context.Context, id int64, language string) ([]CastMember, error)
}

// FavoritesStore: durable local storage for favorites and personal reviews.
// Implementations are safe for concurrent use but callers in the
// orchestration layer only invoke them from background tasks.
type FavoritesStore interface {
	// === Favorites (keyed by CatalogItem.ID, upsert semantics) ===
	UpsertFavorite(item CatalogItem) error
	RemoveFavorite(id int64) error
	IsFavorite(id int64) (bool, error)
	GetFavorite(id int64) (*CatalogItem, error) // ErrNotFound when absent
	ListFavorites() ([]CatalogItem, error)      // Ordered by title

	// WatchFavorites calls fn with the current list and again after every
	// mutation. The returned func detaches fn.
	WatchFavorites(fn func([]CatalogItem)) (cancel func())

	// === Reviews (keyed by movie ID) ===
	UpsertReview(review PersonalReview) error
	GetReview(movieID int64) (*PersonalReview, error) // ErrNotFound when absent
	DeleteReview(movieID int64) error

	// === Lifecycle ===
	Close() error
}
