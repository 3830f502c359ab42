package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

// parseFilter reads "action, comedy, 1999": genre names or ids plus at
// most one release year. A four digit number that is not a genre id must
// fall in the offered year range.
func parseFilter(input string, currentYear int) (genreIDs []int, year int, err error) {
	var terms []string
	for _, tok := range strings.Split(input, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if n, convErr := strconv.Atoi(tok); convErr == nil && len(tok) == 4 {
			if _, isGenre := domain.GenreByID(n); isGenre {
				terms = append(terms, tok)
				continue
			}
			if n < domain.MinFilterYear || n > currentYear {
				return nil, 0, fmt.Errorf("year %d is outside %d-%d", n, domain.MinFilterYear, currentYear)
			}
			if year != 0 {
				return nil, 0, fmt.Errorf("only one year can be selected")
			}
			year = n
			continue
		}
		terms = append(terms, tok)
	}

	genreIDs, err = domain.LookupGenres(strings.Join(terms, ","))
	if err != nil {
		return nil, 0, err
	}
	return genreIDs, year, nil
}

// formatFilter renders the controller's filter back into prompt syntax
func formatFilter(genreIDs []int, year int) string {
	parts := domain.GenreNames(genreIDs)
	if year != 0 {
		parts = append(parts, strconv.Itoa(year))
	}
	return strings.Join(parts, ", ")
}

// parseReview reads "4.5 great score". A leading number is the rating;
// the rest is the comment. Without a number the whole text is the comment.
func parseReview(input string) (rating float64, comment string) {
	input = strings.TrimSpace(input)
	head, rest, _ := strings.Cut(input, " ")
	if r, err := strconv.ParseFloat(strings.TrimSuffix(head, "/5"), 64); err == nil {
		return r, strings.TrimSpace(rest)
	}
	return 0, input
}

// formatReview renders a saved review back into prompt syntax
func formatReview(r *domain.PersonalReview) string {
	if r == nil {
		return ""
	}
	if r.Rating == 0 {
		return r.Comment
	}
	return strings.TrimSpace(strconv.FormatFloat(r.Rating, 'f', -1, 64) + " " + r.Comment)
}

func currentYear() int {
	return time.Now().Year()
}
