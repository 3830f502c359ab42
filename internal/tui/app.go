package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/reel/internal/async"
	"github.com/mmcdole/reel/internal/browse"
	"github.com/mmcdole/reel/internal/details"
	"github.com/mmcdole/reel/internal/favorites"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// screen is the top-level view being shown
type screen int

const (
	screenBrowse screen = iota
	screenFavorites
	screenDetails
)

// promptKind identifies what the text input is collecting
type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptFilter
	promptFavorites
	promptReview
)

const (
	// nextPageThreshold is how many rows from the end of the list the
	// cursor may get before the next page is requested
	nextPageThreshold = 5
	noticeTTL         = 3 * time.Second
)

// notice is a transient status line shared with signal subscribers
type notice struct {
	text string
	seq  int
}

// Options holds the collaborators of the TUI model
type Options struct {
	// Foreground is drained on the Bubble Tea goroutine. Controllers and
	// the catalog service must post to this queue.
	Foreground *async.Queue
	Browse     *browse.Controller
	Details    *details.Controller
	Favorites  *favorites.Controller
	LastError  *async.Signal[string]
	ImageBase  string
	Logger     *slog.Logger
}

// Model is the root Bubble Tea model. All state lives in the controllers;
// the model only tracks cursors and which screen is active.
type Model struct {
	fg        *async.Queue
	browse    *browse.Controller
	details   *details.Controller
	favorites *favorites.Controller
	lastError *async.Signal[string]
	imageBase string
	logger    *slog.Logger

	screen       screen
	back         screen // Where the details screen returns to
	browseCursor int
	favCursor    int
	favQuery     string

	prompt  promptKind
	input   textinput.Model
	spinner spinner.Model

	notice     *notice
	noticeSeen int
	showHelp   bool

	width  int
	height int
}

// startMsg triggers the first page load once the program runs
type startMsg struct{}

// NewModel creates the root model
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lastError := opts.LastError
	if lastError == nil {
		lastError = async.NewSignal("")
	}

	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 50
	ti.Prompt = "> "
	ti.PromptStyle = styles.PromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	n := &notice{}
	show := func(text string) {
		if text == "" {
			return
		}
		n.text = text
		n.seq++
	}
	opts.Details.Message().Subscribe(show)
	opts.Favorites.Message().Subscribe(show)

	return Model{
		fg:        opts.Foreground,
		browse:    opts.Browse,
		details:   opts.Details,
		favorites: opts.Favorites,
		lastError: lastError,
		imageBase: opts.ImageBase,
		logger:    logger,
		input:     ti,
		spinner:   sp,
		notice:    n,
	}
}

// Init starts the foreground pump and requests the first page
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForWork(m.fg),
		m.spinner.Tick,
		func() tea.Msg { return startMsg{} },
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-8)

	case startMsg:
		m.browse.LoadPopular(1)

	case workReadyMsg:
		m.fg.RunPending()
		m.clampCursors()
		cmds = append(cmds, waitForWork(m.fg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case clearNoticeMsg:
		if msg.seq == m.notice.seq {
			m.notice.text = ""
		}

	case tea.KeyMsg:
		model, cmd := m.handleKeyMsg(msg)
		m = model
		cmds = append(cmds, cmd)
	}

	if m.notice.seq != m.noticeSeen {
		m.noticeSeen = m.notice.seq
		seq := m.notice.seq
		cmds = append(cmds, tea.Tick(noticeTTL, func(time.Time) tea.Msg {
			return clearNoticeMsg{seq: seq}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setNotice(text string) {
	m.notice.text = text
	m.notice.seq++
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	if m.showHelp {
		if key.Matches(msg, Keys.Help, Keys.Escape, Keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.showHelp = true
		return m, nil
	}

	switch m.screen {
	case screenDetails:
		return m.handleDetailsKey(msg)
	case screenFavorites:
		return m.handleFavoritesKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.browse.Items().Get()

	if cursor, ok := m.navigate(msg, m.browseCursor, len(items)); ok {
		m.browseCursor = cursor
		m.maybeLoadMore()
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Enter):
		if len(items) > 0 {
			m.openDetails(items[m.browseCursor].ID, screenBrowse)
		}
	case key.Matches(msg, Keys.Search):
		cmd := m.openPrompt(promptSearch, "title", m.browse.State().Query)
		return m, cmd
	case key.Matches(msg, Keys.Filter):
		st := m.browse.State()
		cmd := m.openPrompt(promptFilter, "genres and year, e.g. action, comedy, 1999", formatFilter(st.GenreIDs, st.Year))
		return m, cmd
	case key.Matches(msg, Keys.ClearFilters):
		m.browse.ClearFilters()
		m.browseCursor = 0
	case key.Matches(msg, Keys.Refresh):
		m.browse.Refresh()
		m.browseCursor = 0
	case key.Matches(msg, Keys.Favorite):
		if len(items) > 0 {
			m.favorites.Toggle(items[m.browseCursor])
		}
	case key.Matches(msg, Keys.Tab):
		m.screen = screenFavorites
	case key.Matches(msg, Keys.Escape):
		if m.browse.State().Mode != browse.ModeBrowsing {
			m.browse.ClearFilters()
			m.browseCursor = 0
		}
	}
	return m, nil
}

func (m Model) handleFavoritesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	matches := m.favorites.Filter(m.favQuery)

	if cursor, ok := m.navigate(msg, m.favCursor, len(matches)); ok {
		m.favCursor = cursor
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Enter):
		if len(matches) > 0 {
			m.openDetails(matches[m.favCursor].Item.ID, screenFavorites)
		}
	case key.Matches(msg, Keys.Search):
		cmd := m.openPrompt(promptFavorites, "filter favorites", m.favQuery)
		return m, cmd
	case key.Matches(msg, Keys.Favorite):
		if len(matches) > 0 {
			m.favorites.Toggle(matches[m.favCursor].Item)
		}
	case key.Matches(msg, Keys.Escape):
		m.favQuery = ""
		m.favCursor = 0
	case key.Matches(msg, Keys.Tab):
		m.screen = screenBrowse
	}
	return m, nil
}

func (m Model) handleDetailsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Back, Keys.Escape):
		m.screen = m.back
	case key.Matches(msg, Keys.Favorite):
		m.details.ToggleFavorite()
	case key.Matches(msg, Keys.Review):
		if m.details.Item().Get() != nil {
			cmd := m.openPrompt(promptReview, "rating 0-5 then comment, e.g. 4.5 great score", formatReview(m.details.Review().Get()))
			return m, cmd
		}
	case key.Matches(msg, Keys.DeleteReview):
		if m.details.Review().Get() != nil {
			m.details.DeleteReview()
			m.setNotice("Review deleted")
		}
	case key.Matches(msg, Keys.Refresh):
		m.details.Load(m.details.ID())
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.prompt == promptFavorites {
			m.favQuery = ""
			m.favCursor = 0
		}
		m.closePrompt()
		return m, nil
	case "enter":
		m.submitPrompt(m.input.Value())
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.prompt == promptFavorites {
		m.favQuery = m.input.Value()
		m.favCursor = 0
	}
	return m, cmd
}

func (m *Model) submitPrompt(value string) {
	switch m.prompt {
	case promptSearch:
		m.browse.SearchMovies(value)
		m.browseCursor = 0

	case promptFilter:
		genreIDs, year, err := parseFilter(value, currentYear())
		if err != nil {
			m.setNotice(err.Error())
			return
		}
		m.browse.ApplyFilters(genreIDs, year)
		m.browseCursor = 0

	case promptReview:
		rating, comment := parseReview(value)
		if err := m.details.SaveReview(rating, comment); err != nil {
			m.setNotice(err.Error())
			return
		}
		m.setNotice("Review saved")
	}
}

func (m *Model) openPrompt(kind promptKind, placeholder, value string) tea.Cmd {
	m.prompt = kind
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) openDetails(id int64, back screen) {
	m.details.Load(id)
	m.back = back
	m.screen = screenDetails
}

// navigate applies a movement key to cursor. It reports false for keys
// that are not movement keys.
func (m Model) navigate(msg tea.KeyMsg, cursor, total int) (int, bool) {
	page := max(1, m.listHeight()/2)

	switch {
	case key.Matches(msg, Keys.Up):
		return clampCursor(cursor-1, total), true
	case key.Matches(msg, Keys.Down):
		return clampCursor(cursor+1, total), true
	case key.Matches(msg, Keys.HalfUp):
		return clampCursor(cursor-page, total), true
	case key.Matches(msg, Keys.HalfDown):
		return clampCursor(cursor+page, total), true
	case key.Matches(msg, Keys.Home):
		return 0, true
	case key.Matches(msg, Keys.End):
		return clampCursor(total-1, total), true
	}
	return cursor, false
}

// maybeLoadMore requests the next page once the cursor nears the end.
// The controller ignores the call while a page is in flight.
func (m *Model) maybeLoadMore() {
	total := len(m.browse.Items().Get())
	if total > 0 && m.browseCursor >= total-nextPageThreshold {
		m.browse.LoadNextPage()
	}
}

func (m *Model) clampCursors() {
	m.browseCursor = clampCursor(m.browseCursor, len(m.browse.Items().Get()))
	m.favCursor = clampCursor(m.favCursor, len(m.favorites.Filter(m.favQuery)))
}

func clampCursor(cursor, total int) int {
	if total <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= total {
		return total - 1
	}
	return cursor
}
