package tmdb

import (
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

// MapPage converts a TMDB list envelope to a domain page
func MapPage(resp *PageResponse) *domain.ItemPage {
	return &domain.ItemPage{
		Page:         resp.Page,
		Items:        MapMovies(resp.Results),
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
}

// MapMovies converts list results to catalog items, keeping response order
func MapMovies(results []MovieDTO) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, len(results))
	for _, m := range results {
		items = append(items, mapMovie(m))
	}
	return items
}

func mapMovie(m MovieDTO) domain.CatalogItem {
	return domain.CatalogItem{
		ID:               m.ID,
		Title:            strings.TrimSpace(m.Title),
		Overview:         m.Overview,
		PosterPath:       m.PosterPath,
		ReleaseDate:      m.ReleaseDate,
		Rating:           m.VoteAverage,
		BackdropPath:     m.BackdropPath,
		Genres:           domain.GenreNames(m.GenreIDs),
		OriginalLanguage: m.OriginalLanguage,
	}
}

// MapDetails converts a movie/{id} payload, including the enrichment fields
func MapDetails(d *DetailsDTO) *domain.CatalogItem {
	item := &domain.CatalogItem{
		ID:               d.ID,
		Title:            strings.TrimSpace(d.Title),
		Overview:         d.Overview,
		PosterPath:       d.PosterPath,
		ReleaseDate:      d.ReleaseDate,
		Rating:           d.VoteAverage,
		BackdropPath:     d.BackdropPath,
		OriginalLanguage: d.OriginalLanguage,
	}
	if len(d.Genres) > 0 {
		item.Genres = make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			item.Genres = append(item.Genres, g.Name)
		}
	}
	return item
}

// MapCast converts credits to cast members in billing order
func MapCast(cast []CastDTO) []domain.CastMember {
	members := make([]domain.CastMember, 0, len(cast))
	for _, c := range cast {
		members = append(members, domain.CastMember{
			ID:          c.ID,
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
		})
	}
	return members
}

// ImageURL joins the image base, a size ("w500", "original") and a
// TMDB image path. Empty paths yield "".
func ImageURL(base, size, path string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "original"
	}
	return strings.TrimRight(base, "/") + "/" + size + "/" + strings.TrimLeft(path, "/")
}

// PosterURL returns the poster image URL of an item at the given size
func PosterURL(base, size string, item domain.CatalogItem) string {
	return ImageURL(base, size, item.PosterPath)
}

// BackdropURL returns the backdrop image URL of an item at the given size
func BackdropURL(base, size string, item domain.CatalogItem) string {
	return ImageURL(base, size, item.BackdropPath)
}
