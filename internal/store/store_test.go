package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type storeFactory func(t *testing.T) domain.FavoritesStore

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"bolt-memory": func(t *testing.T) domain.FavoritesStore {
			s, err := NewBoltStore("")
			require.NoError(t, err)
			s.now = func() time.Time { return fixedNow }
			return s
		},
		"bolt-file": func(t *testing.T) domain.FavoritesStore {
			s, err := NewBoltStore(t.TempDir())
			require.NoError(t, err)
			s.now = func() time.Time { return fixedNow }
			return s
		},
		"sqlite-memory": func(t *testing.T) domain.FavoritesStore {
			s, err := NewSQLiteStore(":memory:")
			require.NoError(t, err)
			s.now = func() time.Time { return fixedNow }
			return s
		},
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, s domain.FavoritesStore)) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			fn(t, s)
		})
	}
}

func movie(id int64, title string) domain.CatalogItem {
	return domain.CatalogItem{
		ID:          id,
		Title:       title,
		Overview:    "overview of " + title,
		PosterPath:  "/poster.jpg",
		ReleaseDate: "2020-01-01",
		Rating:      7.5,
	}
}

func TestUpsertFavorite_Idempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s domain.FavoritesStore) {
		require.NoError(t, s.UpsertFavorite(movie(7, "First")))

		second := movie(7, "Second")
		second.Rating = 9.1
		second.Genres = []string{"Drama", "War"}
		second.BackdropPath = "/back.jpg"
		second.OriginalLanguage = "fr"
		require.NoError(t, s.UpsertFavorite(second))

		list, err := s.ListFavorites()
		require.NoError(t, err)
		require.Len(t, list, 1)

		got := list[0]
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, "Second", got.Title)
		assert.InDelta(t, 9.1, got.Rating, 0.0001)
		assert.Equal(t, []string{"Drama", "War"}, got.Genres)
		assert.Equal(t, "/back.jpg", got.BackdropPath)
		assert.Equal(t, "fr", got.OriginalLanguage)
		assert.True(t, fixedNow.Equal(got.SavedAt), "saved at %v", got.SavedAt)
	})
}

func TestFavorites_MembershipAndRemoval(t *testing.T) {
	forEachStore(t, func(t *testing.T, s domain.FavoritesStore) {
		ok, err := s.IsFavorite(7)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.GetFavorite(7)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		require.NoError(t, s.UpsertFavorite(movie(7, "Seven")))
		ok, err = s.IsFavorite(7)
		require.NoError(t, err)
		assert.True(t, ok)

		item, err := s.GetFavorite(7)
		require.NoError(t, err)
		assert.Equal(t, "Seven", item.Title)

		require.NoError(t, s.RemoveFavorite(7))
		ok, err = s.IsFavorite(7)
		require.NoError(t, err)
		assert.False(t, ok)

		// Removing an absent id is not an error
		assert.NoError(t, s.RemoveFavorite(7))
	})
}

func TestListFavorites_OrderedByTitle(t *testing.T) {
	forEachStore(t, func(t *testing.T, s domain.FavoritesStore) {
		require.NoError(t, s.UpsertFavorite(movie(3, "casablanca")))
		require.NoError(t, s.UpsertFavorite(movie(1, "Zodiac")))
		require.NoError(t, s.UpsertFavorite(movie(2, "Alien")))

		list, err := s.ListFavorites()
		require.NoError(t, err)

		titles := make([]string, 0, len(list))
		for _, it := range list {
			titles = append(titles, it.Title)
		}
		assert.Equal(t, []string{"Alien", "casablanca", "Zodiac"}, titles)
	})
}

func TestWatchFavorites_ReemitsOnMutation(t *testing.T) {
	forEachStore(t, func(t *testing.T, s domain.FavoritesStore) {
		var mu sync.Mutex
		var emissions [][]domain.CatalogItem
		cancel := s.WatchFavorites(func(items []domain.CatalogItem) {
			mu.Lock()
			emissions = append(emissions, items)
			mu.Unlock()
		})

		require.NoError(t, s.UpsertFavorite(movie(1, "One")))
		require.NoError(t, s.UpsertFavorite(movie(2, "Two")))
		require.NoError(t, s.RemoveFavorite(1))
		cancel()
		require.NoError(t, s.UpsertFavorite(movie(3, "Three")))

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, emissions, 4)
		assert.Empty(t, emissions[0])
		assert.Len(t, emissions[1], 1)
		assert.Len(t, emissions[2], 2)
		require.Len(t, emissions[3], 1)
		assert.Equal(t, "Two", emissions[3][0].Title)
	})
}

func TestWatchFavorites_ConcurrentMutationsNotLost(t *testing.T) {
	forEachStore(t, func(t *testing.T, s domain.FavoritesStore) {
		const n = 20

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= n; i++ {
				assert.NoError(t, s.UpsertFavorite(movie(int64(i), fmt.Sprintf("Movie %02d", i))))
			}
		}()

		var mu sync.Mutex
		var last []domain.CatalogItem
		cancel := s.WatchFavorites(func(items []domain.CatalogItem) {
			mu.Lock()
			last = items
			mu.Unlock()
		})
		defer cancel()
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, last, n)
	})
}

func TestReviews_Lifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, s domain.FavoritesStore) {
		_, err := s.GetReview(5)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, s.UpsertReview(domain.PersonalReview{MovieID: 5, Rating: 4, Comment: "good", CreatedAt: created}))
		require.NoError(t, s.UpsertReview(domain.PersonalReview{MovieID: 5, Rating: 2.5}))

		review, err := s.GetReview(5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), review.MovieID)
		assert.InDelta(t, 2.5, review.Rating, 0.0001)
		assert.Empty(t, review.Comment)
		assert.True(t, fixedNow.Equal(review.CreatedAt), "created at %v", review.CreatedAt)

		require.NoError(t, s.DeleteReview(5))
		_, err = s.GetReview(5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.UpsertFavorite(movie(42, "Answer")))
	require.NoError(t, s.UpsertReview(domain.PersonalReview{MovieID: 42, Comment: "kept"}))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(dir)
	require.NoError(t, err)
	defer s.Close()

	item, err := s.GetFavorite(42)
	require.NoError(t, err)
	assert.Equal(t, "Answer", item.Title)

	review, err := s.GetReview(42)
	require.NoError(t, err)
	assert.Equal(t, "kept", review.Comment)
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open(DriverSQLite, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open("", "")
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("postgres", "")
	assert.Error(t, err)
}
