package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Genre is a catalog genre identifier with its display name
type Genre struct {
	ID   int
	Name string
}

// Genres lists the catalog genres offered by the filter
var Genres = []Genre{
	{28, "Action"},
	{12, "Adventure"},
	{16, "Animation"},
	{35, "Comedy"},
	{80, "Crime"},
	{99, "Documentary"},
	{18, "Drama"},
	{10751, "Family"},
	{14, "Fantasy"},
	{36, "History"},
	{27, "Horror"},
	{10402, "Music"},
	{9648, "Mystery"},
	{10749, "Romance"},
	{878, "Science Fiction"},
	{10770, "TV Movie"},
	{53, "Thriller"},
	{10752, "War"},
	{37, "Western"},
}

// GenreByID returns the genre with the given id
func GenreByID(id int) (Genre, bool) {
	for _, g := range Genres {
		if g.ID == id {
			return g, true
		}
	}
	return Genre{}, false
}

// GenreNames maps ids to display names, skipping unknown ids
func GenreNames(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if g, ok := GenreByID(id); ok {
			names = append(names, g.Name)
		}
	}
	return names
}

// JoinGenreIDs renders ids as the comma-joined request parameter
func JoinGenreIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// LookupGenres resolves a comma-separated list of genre names or ids.
// Each name is matched fuzzily against the catalog ("sci fi" -> Science Fiction).
func LookupGenres(input string) ([]int, error) {
	names := make([]string, len(Genres))
	for i, g := range Genres {
		names[i] = g.Name
	}

	var ids []int
	for _, term := range strings.Split(input, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if id, err := strconv.Atoi(term); err == nil {
			if _, ok := GenreByID(id); !ok {
				return nil, fmt.Errorf("unknown genre id %d", id)
			}
			ids = append(ids, id)
			continue
		}

		ranks := fuzzy.RankFindNormalizedFold(strings.ReplaceAll(term, " ", ""), names)
		if len(ranks) == 0 {
			return nil, fmt.Errorf("unknown genre %q", term)
		}
		sort.Sort(ranks)
		ids = append(ids, Genres[ranks[0].OriginalIndex].ID)
	}
	return ids, nil
}

// MinFilterYear is the oldest release year offered by the filter
const MinFilterYear = 1950

// FilterYears lists the selectable release years, newest first.
// Choosing none of them means "all years".
func FilterYears(current int) []int {
	if current < MinFilterYear {
		return nil
	}
	years := make([]int, 0, current-MinFilterYear+1)
	for y := current; y >= MinFilterYear; y-- {
		years = append(years, y)
	}
	return years
}
