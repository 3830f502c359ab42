package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Home     key.Binding
	End      key.Binding
	Enter    key.Binding
	Back     key.Binding
	Tab      key.Binding

	// Browse
	Search       key.Binding
	Filter       key.Binding
	ClearFilters key.Binding
	Refresh      key.Binding

	// Items
	Favorite     key.Binding
	Review       key.Binding
	DeleteReview key.Binding

	Quit   key.Binding
	Help   key.Binding
	Escape key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("C-u", "half page up"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("C-d", "half page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("h", "left", "backspace"),
			key.WithHelp("h/←", "back"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "discover/favorites"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		Favorite: key.NewBinding(
			key.WithKeys(" ", "a"),
			key.WithHelp("space", "favorite"),
		),
		Review: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "review"),
		),
		DeleteReview: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete review"),
		),

		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()

// shortHelp lists the bindings shown in the footer for each screen
func shortHelp(s screen) []key.Binding {
	switch s {
	case screenDetails:
		return []key.Binding{Keys.Back, Keys.Favorite, Keys.Review, Keys.DeleteReview, Keys.Quit}
	case screenFavorites:
		return []key.Binding{Keys.Enter, Keys.Search, Keys.Favorite, Keys.Tab, Keys.Quit}
	default:
		return []key.Binding{Keys.Enter, Keys.Search, Keys.Filter, Keys.ClearFilters, Keys.Refresh, Keys.Tab, Keys.Quit}
	}
}

// fullHelp lists every binding for the help overlay
func fullHelp() []key.Binding {
	return []key.Binding{
		Keys.Up, Keys.Down, Keys.HalfUp, Keys.HalfDown, Keys.Home, Keys.End,
		Keys.Enter, Keys.Back, Keys.Tab,
		Keys.Search, Keys.Filter, Keys.ClearFilters, Keys.Refresh,
		Keys.Favorite, Keys.Review, Keys.DeleteReview,
		Keys.Help, Keys.Escape, Keys.Quit,
	}
}
