package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ReelGold   = lipgloss.Color("#F5C518")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ReelGold)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	OfflineStyle = lipgloss.NewStyle().
			Foreground(Blue).
			Bold(true)
)

// Favorite marker
const (
	FavoriteChar    = "♥"
	NotFavoriteChar = "♡"
)

var (
	FavoriteMark    = lipgloss.NewStyle().Foreground(ReelGold).Render(FavoriteChar)
	NotFavoriteMark = DimStyle.Render(NotFavoriteChar)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(ReelGold).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Background(SlateLight).
				Padding(0, 1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ReelGold)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Rating bar styles
var (
	RatingFullStyle = lipgloss.NewStyle().
			Foreground(ReelGold)

	RatingEmptyStyle = lipgloss.NewStyle().
				Foreground(DimGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ReelGold)
)

// Prompt styles
var (
	PromptStyle = lipgloss.NewStyle().
			Foreground(ReelGold).
			Bold(true)

	PromptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ReelGold).
			Padding(0, 1)
)

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// RenderRatingBar renders a 0-10 community rating as a bar of the given width
func RenderRatingBar(rating float64, width int) string {
	if width < 3 {
		return ""
	}

	filled := int(float64(width) * rating / 10)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return RatingFullStyle.Render(strings.Repeat("█", filled)) +
		RatingEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderStars renders a 0-5 personal rating in half-star steps
func RenderStars(rating float64) string {
	full := int(rating)
	half := rating-float64(full) >= 0.5
	empty := 5 - full
	if half {
		empty--
	}
	if empty < 0 {
		empty = 0
	}

	s := strings.Repeat("★", full)
	if half {
		s += "½"
	}
	return RatingFullStyle.Render(s) + RatingEmptyStyle.Render(strings.Repeat("☆", empty))
}

// RenderListRow renders a complete list row with uniform background when selected.
// Each part is styled explicitly to avoid ANSI reset codes breaking the background.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := SlateLight

	var b strings.Builder
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		switch {
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(White)
		default:
			style = style.Foreground(LightGray)
		}
		if part.Bold {
			style = style.Bold(true)
		}
		if selected {
			style = style.Background(bg)
		}
		b.WriteString(style.Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	// Fill the width, leaving one column of margin per side
	padStyle := lipgloss.NewStyle()
	if selected {
		padStyle = padStyle.Background(bg)
	}
	if pad := width - visibleLen - 2; pad > 0 {
		b.WriteString(padStyle.Render(strings.Repeat(" ", pad)))
	}

	margin := padStyle.Render(" ")
	return margin + b.String() + margin
}

// RowPart is a span of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
	Bold       bool
}

// HighlightMatches splits text into parts with the runes starting at the
// given byte offsets emphasised
func HighlightMatches(text string, indexes []int) []RowPart {
	if len(indexes) == 0 {
		return []RowPart{{Text: text}}
	}

	marked := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		marked[i] = true
	}

	var parts []RowPart
	var run []rune
	runMarked := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		part := RowPart{Text: string(run)}
		if runMarked {
			c := ReelGold
			part.Foreground = &c
			part.Bold = true
		}
		parts = append(parts, part)
		run = run[:0]
	}

	for i, r := range text {
		if marked[i] != runMarked {
			flush()
			runMarked = marked[i]
		}
		run = append(run, r)
	}
	flush()
	return parts
}
