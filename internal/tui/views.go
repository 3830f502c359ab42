package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/reel/internal/browse"
	"github.com/mmcdole/reel/internal/details"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tmdb"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// maxCastShown caps the cast list on the details screen
const maxCastShown = 12

// View renders the application
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	var prompt string
	if m.prompt != promptNone {
		prompt = m.renderPrompt()
	}

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if prompt != "" {
		bodyHeight -= lipgloss.Height(prompt)
	}
	bodyHeight = max(1, bodyHeight)

	var body string
	switch {
	case m.showHelp:
		body = m.renderHelp()
	case m.screen == screenDetails:
		body = m.renderDetails(bodyHeight)
	case m.screen == screenFavorites:
		body = m.renderFavorites(bodyHeight)
	default:
		body = m.renderBrowse(bodyHeight)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	parts := []string{header}
	if prompt != "" {
		parts = append(parts, prompt)
	}
	parts = append(parts, body, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// listHeight is the number of rows available to a list screen
func (m Model) listHeight() int {
	return max(1, m.height-6)
}

func (m Model) renderHeader() string {
	discover := styles.InactiveTabStyle.Render("Discover")
	favs := styles.InactiveTabStyle.Render(fmt.Sprintf("Favorites (%d)", len(m.favorites.Items().Get())))

	active := m.screen
	if active == screenDetails {
		active = m.back
	}
	if active == screenFavorites {
		favs = styles.ActiveTabStyle.Render(fmt.Sprintf("Favorites (%d)", len(m.favorites.Items().Get())))
	} else {
		discover = styles.ActiveTabStyle.Render("Discover")
	}

	tabs := lipgloss.JoinHorizontal(lipgloss.Top, discover, " ", favs)
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs, "  ", m.renderModeLine()) + "\n"
}

// renderModeLine describes what the discover list currently shows
func (m Model) renderModeLine() string {
	st := m.browse.State()
	switch st.Mode {
	case browse.ModeSearching:
		return styles.SubtitleStyle.Render("Search: ") + styles.AccentStyle.Render(st.Query)
	case browse.ModeFiltering:
		return styles.SubtitleStyle.Render("Filter: ") + styles.AccentStyle.Render(formatFilter(st.GenreIDs, st.Year))
	case browse.ModeBrowsing:
		return styles.SubtitleStyle.Render("Popular")
	default:
		return ""
	}
}

func (m Model) renderBrowse(height int) string {
	items := m.browse.Items().Get()
	loading := m.browse.Loading().Get()
	errMsg := m.browse.Error().Get()

	// Reserve a status row under the list
	rows := max(1, height-1)

	var b strings.Builder
	start, end := visibleWindow(m.browseCursor, len(items), rows)
	for i := start; i < end; i++ {
		b.WriteString(m.renderItemRow(items[i], nil, i == m.browseCursor))
		b.WriteString("\n")
	}

	switch {
	case loading:
		b.WriteString(m.spinner.View() + styles.DimStyle.Render(" Loading..."))
	case errMsg != "":
		b.WriteString(styles.ErrorStyle.Render(errMsg))
	case len(items) > 0:
		st := m.browse.State()
		status := fmt.Sprintf("%d movies, page %d", len(items), st.Page)
		if st.Exhausted {
			status += ", end of list"
		}
		b.WriteString(styles.DimStyle.Render(status))
	}
	return b.String()
}

func (m Model) renderFavorites(height int) string {
	matches := m.favorites.Filter(m.favQuery)
	rows := max(1, height-1)

	if len(m.favorites.Items().Get()) == 0 {
		return styles.DimStyle.Render("No favorites yet. Press space on a movie to add it.")
	}

	var b strings.Builder
	start, end := visibleWindow(m.favCursor, len(matches), rows)
	for i := start; i < end; i++ {
		b.WriteString(m.renderItemRow(matches[i].Item, matches[i].MatchedIndexes, i == m.favCursor))
		b.WriteString("\n")
	}

	if m.favQuery != "" {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d of %d match %q", len(matches), len(m.favorites.Items().Get()), m.favQuery)))
	}
	return b.String()
}

// renderItemRow renders one list row: favorite mark, title, year and rating
func (m Model) renderItemRow(item domain.CatalogItem, matched []int, selected bool) string {
	width := max(20, m.width)
	titleWidth := max(10, width-24)

	mark := styles.NotFavoriteChar
	var markColor *lipgloss.Color
	if m.favorites.Contains(item.ID) {
		mark = styles.FavoriteChar
		c := styles.ReelGold
		markColor = &c
	}

	title := styles.Truncate(item.Title, titleWidth)
	parts := []styles.RowPart{{Text: mark + " ", Foreground: markColor}}
	if len(matched) > 0 && title == item.Title {
		parts = append(parts, styles.HighlightMatches(title, matched)...)
	} else {
		parts = append(parts, styles.RowPart{Text: title})
	}
	titleLen := lipgloss.Width(title)
	if titleLen < titleWidth {
		parts = append(parts, styles.RowPart{Text: strings.Repeat(" ", titleWidth-titleLen)})
	}

	year := "    "
	if y := item.Year(); y != 0 {
		year = fmt.Sprintf("%d", y)
	}
	dim := styles.DimGray
	parts = append(parts,
		styles.RowPart{Text: "  " + year, Foreground: &dim},
		styles.RowPart{Text: fmt.Sprintf("  %4.1f", item.Rating)},
	)

	return styles.RenderListRow(parts, selected, width)
}

func (m Model) renderDetails(height int) string {
	switch m.details.State() {
	case details.StateAwaitingRemote:
		return m.spinner.View() + styles.DimStyle.Render(" Loading details...")
	case details.StateAwaitingLocal:
		return m.spinner.View() + styles.DimStyle.Render(" Offline, checking favorites...")
	case details.StateUnavailable:
		return styles.ErrorStyle.Render(m.details.Error().Get())
	}

	item := m.details.Item().Get()
	if item == nil {
		return ""
	}

	width := max(20, m.width-2)
	var lines []string

	// Title line
	title := styles.TitleStyle.Render(item.Title)
	if y := item.Year(); y != 0 {
		title += styles.DimStyle.Render(fmt.Sprintf(" (%d)", y))
	}
	if m.details.IsFavorite().Get() {
		title += " " + styles.FavoriteMark
	} else {
		title += " " + styles.NotFavoriteMark
	}
	if m.details.State() == details.StatePopulatedOffline {
		title += " " + styles.OfflineStyle.Render("OFFLINE")
	}
	lines = append(lines, title)

	lines = append(lines, styles.RenderRatingBar(item.Rating, 20)+" "+styles.AccentStyle.Render(item.FormattedRating()))

	var meta []string
	if len(item.Genres) > 0 {
		meta = append(meta, item.GenreList())
	}
	if item.OriginalLanguage != "" {
		meta = append(meta, strings.ToUpper(item.OriginalLanguage))
	}
	if item.ReleaseDate != "" {
		meta = append(meta, item.ReleaseDate)
	}
	if len(meta) > 0 {
		lines = append(lines, styles.SubtitleStyle.Render(strings.Join(meta, "  ·  ")))
	}
	if poster := tmdb.PosterURL(m.imageBase, "w500", *item); poster != "" {
		lines = append(lines, styles.DimStyle.Render("Poster   "+poster))
	}
	if backdrop := tmdb.BackdropURL(m.imageBase, "w780", *item); backdrop != "" {
		lines = append(lines, styles.DimStyle.Render("Backdrop "+backdrop))
	}

	lines = append(lines, "")
	if item.Overview != "" {
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(item.Overview))
	} else {
		lines = append(lines, styles.DimStyle.Render("No overview available."))
	}

	lines = append(lines, "", styles.AccentStyle.Render("Your review"))
	if r := m.details.Review().Get(); r != nil {
		review := styles.RenderStars(r.Rating)
		if r.Comment != "" {
			review += "  " + r.Comment
		}
		lines = append(lines, review)
	} else {
		lines = append(lines, styles.DimStyle.Render("No review yet. Press e to write one."))
	}

	lines = append(lines, "", styles.AccentStyle.Render("Cast"))
	lines = append(lines, m.renderCast()...)

	if errMsg := m.details.Error().Get(); errMsg != "" {
		lines = append(lines, "", styles.ErrorStyle.Render(errMsg))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCast() []string {
	switch m.details.CastState() {
	case details.CastAwaitingCredits:
		return []string{m.spinner.View() + styles.DimStyle.Render(" Loading cast...")}
	case details.CastEmpty:
		return []string{styles.DimStyle.Render("No cast information.")}
	case details.CastIdle:
		return nil
	}

	cast := m.details.Cast().Get()
	shown := cast
	if len(shown) > maxCastShown {
		shown = shown[:maxCastShown]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, c := range shown {
		line := c.Name
		if c.Character != "" {
			line += styles.DimStyle.Render(" as " + c.Character)
		}
		lines = append(lines, "  "+line)
	}
	if more := len(cast) - len(shown); more > 0 {
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("  and %d more", more)))
	}
	return lines
}

func (m Model) renderPrompt() string {
	var label string
	switch m.prompt {
	case promptSearch:
		label = "Search movies"
	case promptFilter:
		label = fmt.Sprintf("Filter by genre and year (%d-%d)", domain.MinFilterYear, domain.FilterYears(currentYear())[0])
	case promptFavorites:
		label = "Filter favorites"
	case promptReview:
		label = "Your review"
	}
	content := styles.PromptStyle.Render(label) + "\n" + m.input.View()
	return styles.PromptBoxStyle.Width(max(20, m.width-4)).Render(content)
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.notice.text != "":
		status = styles.SuccessStyle.Render(m.notice.text)
	case m.lastError.Get() != "" && m.lastError.Get() != m.screenError():
		status = styles.ErrorStyle.Render(m.lastError.Get())
	}

	bindings := shortHelp(m.screen)
	help := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		help = append(help, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return status + "\n" + strings.Join(help, "  ")
}

// screenError is the error already shown in the body of the active screen
func (m Model) screenError() string {
	switch m.screen {
	case screenDetails:
		return m.details.Error().Get()
	case screenBrowse:
		return m.browse.Error().Get()
	}
	return ""
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, binding := range fullHelp() {
		h := binding.Help()
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			styles.HelpKeyStyle.Render(fmt.Sprintf("%-8s", h.Key)),
			styles.HelpDescStyle.Render(h.Desc)))
	}
	return b.String()
}

// visibleWindow returns the [start, end) slice of a list of total rows
// that keeps cursor on screen
func visibleWindow(cursor, total, height int) (int, int) {
	if height <= 0 || total == 0 {
		return 0, 0
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	return start, min(total, start+height)
}
