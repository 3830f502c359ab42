package store

import (
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

// favoriteRecord is the persisted layout of a favorite, keyed by id
type favoriteRecord struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Overview         string    `json:"overview"`
	PosterPath       string    `json:"poster_path"`
	BackdropPath     string    `json:"backdrop_path"`
	ReleaseDate      string    `json:"release_date"`
	Rating           float64   `json:"rating"`
	Genres           []string  `json:"genres,omitempty"`
	OriginalLanguage string    `json:"original_language"`
	SavedAt          time.Time `json:"saved_at"`
}

func toFavoriteRecord(item domain.CatalogItem, savedAt time.Time) favoriteRecord {
	return favoriteRecord{
		ID:               item.ID,
		Title:            item.Title,
		Overview:         item.Overview,
		PosterPath:       item.PosterPath,
		BackdropPath:     item.BackdropPath,
		ReleaseDate:      item.ReleaseDate,
		Rating:           item.Rating,
		Genres:           item.Genres,
		OriginalLanguage: item.OriginalLanguage,
		SavedAt:          savedAt,
	}
}

func (r favoriteRecord) item() domain.CatalogItem {
	return domain.CatalogItem{
		ID:               r.ID,
		Title:            r.Title,
		Overview:         r.Overview,
		PosterPath:       r.PosterPath,
		BackdropPath:     r.BackdropPath,
		ReleaseDate:      r.ReleaseDate,
		Rating:           r.Rating,
		Genres:           r.Genres,
		OriginalLanguage: r.OriginalLanguage,
		SavedAt:          r.SavedAt,
	}
}

// reviewRecord is the persisted layout of a personal review, keyed by movie id
type reviewRecord struct {
	MovieID   int64     `json:"movie_id"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r reviewRecord) review() domain.PersonalReview {
	return domain.PersonalReview{
		MovieID:   r.MovieID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// sortByTitle orders favorites case-insensitively by title, then by id
func sortByTitle(items []domain.CatalogItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Title), strings.ToLower(items[j].Title)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
}
