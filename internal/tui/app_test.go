package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/async"
	"github.com/mmcdole/reel/internal/browse"
	"github.com/mmcdole/reel/internal/catalog"
	"github.com/mmcdole/reel/internal/details"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/favorites"
	"github.com/mmcdole/reel/internal/store"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Popular(ctx context.Context, page int, language string) (*domain.ItemPage, error) {
	args := m.Called(page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemPage), args.Error(1)
}

func (m *mockClient) Search(ctx context.Context, query string, page int, language string) (*domain.ItemPage, error) {
	args := m.Called(query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemPage), args.Error(1)
}

func (m *mockClient) Discover(ctx context.Context, q domain.DiscoverQuery, language string) (*domain.ItemPage, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemPage), args.Error(1)
}

func (m *mockClient) Details(ctx context.Context, id int64, language string) (*domain.CatalogItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogItem), args.Error(1)
}

func (m *mockClient) Credits(ctx context.Context, id int64, language string) ([]domain.CastMember, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CastMember), args.Error(1)
}

type harness struct {
	t      *testing.T
	m      Model
	client *mockClient
	svc    *catalog.Service
}

var popular = []domain.CatalogItem{
	{ID: 1, Title: "Heat", ReleaseDate: "1995-12-15", Rating: 7.9},
	{ID: 2, Title: "Ronin", ReleaseDate: "1998-09-25", Rating: 6.9},
	{ID: 3, Title: "Thief", ReleaseDate: "1981-03-27", Rating: 7.3},
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := store.NewBoltStore("")
	require.NoError(t, err)

	client := &mockClient{}
	client.On("Popular", 1).Return(&domain.ItemPage{Page: 1, Items: popular, TotalPages: 1}, nil).Maybe()
	client.On("Popular", 2).Return(&domain.ItemPage{Page: 2}, nil).Maybe()

	q := async.NewQueue()
	svc := catalog.NewService(client, st, async.NewPool(2, nil), catalog.Options{Foreground: q}, nil)
	favs := favorites.NewController(svc, nil)
	t.Cleanup(func() {
		favs.Close()
		svc.Close()
		st.Close()
	})

	m := NewModel(Options{
		Foreground: q,
		Browse:     browse.NewController(svc, q, nil),
		Details:    details.NewController(svc, q, nil),
		Favorites:  favs,
		LastError:  svc.LastError(),
		ImageBase:  "https://img.example/t/p",
	})

	h := &harness{t: t, m: m, client: client, svc: svc}
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) {
	next, _ := h.m.Update(msg)
	h.m = next.(Model)
}

func (h *harness) keys(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// settle drains foreground work until cond holds
func (h *harness) settle(cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(h.t, h.svc.Flush())
		h.send(workReadyMsg{})
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			h.t.Fatal("condition not reached")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (h *harness) loadPopular() {
	h.send(startMsg{})
	h.settle(func() bool { return len(h.m.browse.Items().Get()) == 3 })
}

func TestModel_StartLoadsPopular(t *testing.T) {
	h := newHarness(t)
	h.loadPopular()

	view := h.m.View()
	assert.Contains(t, view, "Heat")
	assert.Contains(t, view, "Popular")
	assert.Contains(t, view, "3 movies, page 1")
}

func TestModel_OpenDetailsAndBack(t *testing.T) {
	h := newHarness(t)
	h.loadPopular()

	h.client.On("Details", int64(2)).Return(&domain.CatalogItem{
		ID: 2, Title: "Ronin", Overview: "A car chase through Paris.", PosterPath: "/ronin.jpg",
		BackdropPath: "/seine.jpg",
	}, nil)
	h.client.On("Credits", int64(2)).Return([]domain.CastMember{{ID: 7, Name: "Robert De Niro", Character: "Sam"}}, nil)

	h.keys("j")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, screenDetails, h.m.screen)

	h.settle(func() bool {
		return h.m.details.State() == details.StatePopulated && h.m.details.CastState() == details.CastPopulated
	})

	view := h.m.View()
	assert.Contains(t, view, "A car chase through Paris.")
	assert.Contains(t, view, "Robert De Niro")
	assert.Contains(t, view, "https://img.example/t/p/w500/ronin.jpg")
	assert.Contains(t, view, "https://img.example/t/p/w780/seine.jpg")

	h.keys("h")
	assert.Equal(t, screenBrowse, h.m.screen)
}

func TestModel_SearchPrompt(t *testing.T) {
	h := newHarness(t)
	h.loadPopular()

	h.client.On("Search", "matrix", 1).Return(&domain.ItemPage{Page: 1, Items: []domain.CatalogItem{{ID: 603, Title: "The Matrix"}}}, nil)

	h.keys("/")
	require.Equal(t, promptSearch, h.m.prompt)
	h.keys("matrix")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, promptNone, h.m.prompt)

	h.settle(func() bool { return !h.m.browse.State().InFlight })
	assert.Equal(t, browse.ModeSearching, h.m.browse.State().Mode)
	assert.Contains(t, h.m.View(), "The Matrix")

	// esc returns to the popular list
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, browse.ModeBrowsing, h.m.browse.State().Mode)
}

func TestModel_FilterPromptRejectsUnknownGenre(t *testing.T) {
	h := newHarness(t)
	h.loadPopular()

	h.keys("f")
	h.keys("zzzz")
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Contains(t, h.m.notice.text, "unknown genre")
	assert.Equal(t, browse.ModeBrowsing, h.m.browse.State().Mode)
}

func TestModel_ToggleFavoriteAndSwitchTab(t *testing.T) {
	h := newHarness(t)
	h.loadPopular()

	h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, "Added to favorites: Heat", h.m.notice.text)
	h.settle(func() bool { return len(h.m.favorites.Items().Get()) == 1 })

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, screenFavorites, h.m.screen)
	view := h.m.View()
	assert.Contains(t, view, "Favorites (1)")
	assert.True(t, strings.Contains(view, "Heat"))
}

func TestModel_NoticeExpires(t *testing.T) {
	h := newHarness(t)
	h.m.setNotice("hello")
	h.send(clearNoticeMsg{seq: h.m.notice.seq - 1})
	assert.Equal(t, "hello", h.m.notice.text)

	h.send(clearNoticeMsg{seq: h.m.notice.seq})
	assert.Equal(t, "", h.m.notice.text)
}
