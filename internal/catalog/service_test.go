package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/async"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/store"
)

type mockCatalogClient struct {
	mock.Mock
}

func (m *mockCatalogClient) Popular(ctx context.Context, page int, language string) (*domain.ItemPage, error) {
	args := m.Called(ctx, page, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemPage), args.Error(1)
}

func (m *mockCatalogClient) Search(ctx context.Context, query string, page int, language string) (*domain.ItemPage, error) {
	args := m.Called(ctx, query, page, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemPage), args.Error(1)
}

func (m *mockCatalogClient) Discover(ctx context.Context, q domain.DiscoverQuery, language string) (*domain.ItemPage, error) {
	args := m.Called(ctx, q, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemPage), args.Error(1)
}

func (m *mockCatalogClient) Details(ctx context.Context, id int64, language string) (*domain.CatalogItem, error) {
	args := m.Called(ctx, id, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogItem), args.Error(1)
}

func (m *mockCatalogClient) Credits(ctx context.Context, id int64, language string) ([]domain.CastMember, error) {
	args := m.Called(ctx, id, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CastMember), args.Error(1)
}

type fixture struct {
	client *mockCatalogClient
	store  domain.FavoritesStore
	queue  *async.Queue
	svc    *Service
}

func setupService(t *testing.T) *fixture {
	t.Helper()
	st, err := store.NewBoltStore("")
	require.NoError(t, err)

	client := &mockCatalogClient{}
	queue := async.NewQueue()
	svc := NewService(client, st, async.NewPool(4, nil), Options{Language: "en-US", Foreground: queue}, nil)

	t.Cleanup(func() {
		svc.Close()
		st.Close()
	})
	return &fixture{client: client, store: st, queue: queue, svc: svc}
}

func await[T any](t *testing.T, f *async.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := f.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return v, err
}

func page(n int, ids ...int64) *domain.ItemPage {
	items := make([]domain.CatalogItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.CatalogItem{ID: id, Title: "Movie"})
	}
	return &domain.ItemPage{Page: n, Items: items, TotalPages: 10}
}

func TestPopular_SuccessClearsError(t *testing.T) {
	fx := setupService(t)
	fx.svc.LastError().Set("old failure")
	fx.client.On("Popular", mock.Anything, 1, "en-US").Return(page(1, 1, 2, 3), nil)

	items, err := await(t, fx.svc.Popular(1))
	require.NoError(t, err)
	assert.Len(t, items, 3)

	fx.queue.RunPending()
	assert.Equal(t, "", fx.svc.LastError().Get())
	fx.client.AssertExpectations(t)
}

func TestPopular_HTTPFailurePublishesEmptyListAndError(t *testing.T) {
	fx := setupService(t)
	failure := &domain.Failure{Kind: domain.FailureHTTP, Op: domain.OpPopular, Code: 401, Body: `{"status_message":"Invalid API key"}`}
	fx.client.On("Popular", mock.Anything, 1, "en-US").Return(nil, failure)

	items, err := await(t, fx.svc.Popular(1))
	require.Error(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	fx.queue.RunPending()
	assert.Equal(t, `Error loading popular: code=401, error: {"status_message":"Invalid API key"}`, fx.svc.LastError().Get())
}

func TestSearch_MissingCredential(t *testing.T) {
	fx := setupService(t)
	fx.client.On("Search", mock.Anything, "Matrix", 1, "en-US").
		Return(nil, &domain.Failure{Kind: domain.FailureMissingCredential, Op: domain.OpSearch})

	items, err := await(t, fx.svc.Search("Matrix", 1))
	require.Error(t, err)
	assert.Empty(t, items)

	fx.queue.RunPending()
	assert.Equal(t, "API key missing", fx.svc.LastError().Get())
}

func TestDiscover_PassesFilterAndSort(t *testing.T) {
	fx := setupService(t)
	want := domain.DiscoverQuery{Page: 1, GenreIDs: []int{28}, Year: 2020, SortBy: "popularity.desc"}
	fx.client.On("Discover", mock.Anything, want, "en-US").Return(page(1, 9), nil)

	items, err := await(t, fx.svc.Discover(1, []int{28}, 2020))
	require.NoError(t, err)
	assert.Len(t, items, 1)
	fx.client.AssertExpectations(t)
}

func TestDetails_RemoteSuccessFetchesCast(t *testing.T) {
	fx := setupService(t)
	item := &domain.CatalogItem{ID: 42, Title: "Answer"}
	cast := []domain.CastMember{{ID: 1, Name: "Ann"}}
	fx.client.On("Details", mock.Anything, int64(42), "en-US").Return(item, nil)
	fx.client.On("Credits", mock.Anything, int64(42), "en-US").Return(cast, nil)

	call := fx.svc.Details(42)

	fallback, _ := await(t, call.Fallback)
	assert.False(t, fallback)

	res, err := await(t, call.Item)
	require.NoError(t, err)
	assert.False(t, res.Offline)
	assert.Equal(t, "Answer", res.Item.Title)

	gotCast, err := await(t, call.Cast)
	require.NoError(t, err)
	assert.Equal(t, cast, gotCast)
}

func TestDetails_OfflineFallbackToFavorite(t *testing.T) {
	fx := setupService(t)
	fav := domain.CatalogItem{ID: 42, Title: "Saved", Genres: []string{"Drama"}, BackdropPath: "/b.jpg"}
	require.NoError(t, fx.store.UpsertFavorite(fav))
	fx.svc.LastError().Set("stale")

	fx.client.On("Details", mock.Anything, int64(42), "en-US").
		Return(nil, &domain.Failure{Kind: domain.FailureTransport, Op: domain.OpDetails, Detail: "no route"})

	call := fx.svc.Details(42)

	fallback, _ := await(t, call.Fallback)
	assert.True(t, fallback)

	res, err := await(t, call.Item)
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Equal(t, "Saved", res.Item.Title)
	assert.Equal(t, []string{"Drama"}, res.Item.Genres)
	assert.Equal(t, "/b.jpg", res.Item.BackdropPath)

	cast, err := await(t, call.Cast)
	require.NoError(t, err)
	assert.Empty(t, cast)

	fx.queue.RunPending()
	assert.Equal(t, "", fx.svc.LastError().Get())
	fx.client.AssertNotCalled(t, "Credits", mock.Anything, mock.Anything, mock.Anything)
}

func TestDetails_EmptyResultWithoutFavoriteIsUnavailable(t *testing.T) {
	fx := setupService(t)
	fx.client.On("Details", mock.Anything, int64(5), "en-US").Return(&domain.CatalogItem{}, nil)

	call := fx.svc.Details(5)

	res, err := await(t, call.Item)
	require.Error(t, err)
	assert.Nil(t, res.Item)
	assert.ErrorIs(t, err, &domain.Failure{Kind: domain.FailureOfflineUnavailable})

	cast, _ := await(t, call.Cast)
	assert.Empty(t, cast)

	fx.queue.RunPending()
	assert.Equal(t, MsgOfflineUnavailable, fx.svc.LastError().Get())
}

func TestCast_FailureSetsError(t *testing.T) {
	fx := setupService(t)
	fx.client.On("Credits", mock.Anything, int64(3), "en-US").
		Return(nil, &domain.Failure{Kind: domain.FailureDecode, Op: domain.OpCredits, Detail: "unexpected EOF"})

	cast, err := await(t, fx.svc.Cast(3))
	require.Error(t, err)
	assert.Empty(t, cast)

	fx.queue.RunPending()
	assert.Equal(t, "Error parsing credits response: unexpected EOF", fx.svc.LastError().Get())
}

func TestFavorites_AddThenIsInFavorites(t *testing.T) {
	fx := setupService(t)

	fx.svc.AddToFavorites(domain.CatalogItem{ID: 7, Title: "Seven"})
	ok, err := fx.svc.IsInFavorites(7)
	require.NoError(t, err)
	assert.True(t, ok)

	fx.svc.RemoveFromFavorites(domain.CatalogItem{ID: 7})
	ok, err = fx.svc.IsInFavorites(7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFavorites_RapidTogglesApplyInOrder(t *testing.T) {
	fx := setupService(t)
	item := domain.CatalogItem{ID: 11, Title: "Eleven"}

	for i := 0; i < 25; i++ {
		fx.svc.AddToFavorites(item)
		fx.svc.RemoveFromFavorites(item)
	}
	fx.svc.AddToFavorites(item)

	ok, err := await(t, fx.svc.FavoriteStatus(11))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWatchFavorites_DeliversOnForeground(t *testing.T) {
	fx := setupService(t)

	var lists [][]domain.CatalogItem
	cancel := fx.svc.WatchFavorites(func(items []domain.CatalogItem) {
		lists = append(lists, items)
	})
	defer cancel()

	fx.svc.AddToFavorites(domain.CatalogItem{ID: 2, Title: "B"})
	fx.svc.AddToFavorites(domain.CatalogItem{ID: 1, Title: "A"})
	require.NoError(t, fx.svc.Flush())
	fx.queue.RunPending()

	require.Len(t, lists, 3)
	assert.Empty(t, lists[0])
	require.Len(t, lists[2], 2)
	assert.Equal(t, "A", lists[2][0].Title)
}

func TestWatchFavorites_OrderedAfterQueuedWrites(t *testing.T) {
	fx := setupService(t)

	fx.svc.AddToFavorites(domain.CatalogItem{ID: 3, Title: "C"})

	var lists [][]domain.CatalogItem
	cancel := fx.svc.WatchFavorites(func(items []domain.CatalogItem) {
		lists = append(lists, items)
	})
	defer cancel()
	require.NoError(t, fx.svc.Flush())
	fx.queue.RunPending()

	require.Len(t, lists, 1)
	require.Len(t, lists[0], 1)
	assert.Equal(t, "C", lists[0][0].Title)
}

func TestReviews(t *testing.T) {
	fx := setupService(t)
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	fx.svc.now = func() time.Time { return now }

	err := fx.svc.SaveUserReview(domain.PersonalReview{MovieID: 9})
	assert.ErrorIs(t, err, domain.ErrEmptyReview)

	err = fx.svc.SaveUserReview(domain.PersonalReview{MovieID: 9, Rating: 6})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	review, err := fx.svc.GetUserReview(9)
	require.NoError(t, err)
	assert.Nil(t, review)

	require.NoError(t, fx.svc.SaveUserReview(domain.PersonalReview{MovieID: 9, Comment: "great"}))
	review, err = fx.svc.GetUserReview(9)
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "great", review.Comment)
	assert.True(t, now.Equal(review.CreatedAt))

	fx.svc.DeleteUserReview(9)
	review, err = await(t, fx.svc.UserReview(9))
	require.NoError(t, err)
	assert.Nil(t, review)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"transport", &domain.Failure{Kind: domain.FailureTransport, Op: domain.OpPopular, Detail: "timeout"}, "Failed to load popular: timeout"},
		{"http", &domain.Failure{Kind: domain.FailureHTTP, Op: domain.OpSearch, Code: 500, Body: "oops"}, "Error loading search: code=500, error: oops"},
		{"decode", &domain.Failure{Kind: domain.FailureDecode, Op: domain.OpDiscover, Detail: "bad"}, "Error parsing discover response: bad"},
		{"credential", &domain.Failure{Kind: domain.FailureMissingCredential}, "API key missing"},
		{"offline", &domain.Failure{Kind: domain.FailureOfflineUnavailable}, MsgOfflineUnavailable},
		{"plain", assert.AnError, "Failed to load details: " + assert.AnError.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(domain.OpDetails, tt.err))
		})
	}
}
