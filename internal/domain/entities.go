package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CatalogItem represents one browsable movie entry.
// ID is the sole identity key, shared by the remote and local representations.
type CatalogItem struct {
	ID          int64   // Catalog-wide unique identifier
	Title       string  // Display title
	Overview    string  // Plot synopsis
	PosterPath  string  // Poster reference (relative image path)
	ReleaseDate string  // ISO-like date, first 4 characters are the year
	Rating      float64 // Community rating (0-10 scale)

	// Offline enrichment (filled from the details response or when saved)
	BackdropPath     string    // Background art reference
	Genres           []string  // Genre tags
	OriginalLanguage string    // ISO 639-1 code
	SavedAt          time.Time // Set by the store when the item is persisted
}

// Year returns the release year parsed from ReleaseDate (0 if unknown)
func (c CatalogItem) Year() int {
	if len(c.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(c.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// FormattedRating returns the rating as "7.4/10"
func (c CatalogItem) FormattedRating() string {
	return fmt.Sprintf("%.1f/10", c.Rating)
}

// GenreList returns the genre tags joined for display
func (c CatalogItem) GenreList() string {
	return strings.Join(c.Genres, ", ")
}

// IsEmpty reports whether the item carries no identity (an empty details payload)
func (c *CatalogItem) IsEmpty() bool {
	return c == nil || c.ID == 0
}

// PersonalReview is the user's own rating and comment for an item.
// There is at most one review per item; saving again overwrites it.
type PersonalReview struct {
	MovieID   int64     // CatalogItem.ID this review belongs to
	Rating    float64   // 0.0 to 5.0
	Comment   string    // Free text, may be empty when Rating is set
	CreatedAt time.Time // Stamped at save time
}

// MaxReviewRating is the upper bound of PersonalReview.Rating
const MaxReviewRating = 5.0

// Validate enforces the review invariants: rating in range and
// at least one of rating and comment set.
func (r PersonalReview) Validate() error {
	if math.IsNaN(r.Rating) || r.Rating < 0 || r.Rating > MaxReviewRating {
		return fmt.Errorf("%w: %.1f", ErrInvalidRating, r.Rating)
	}
	if r.Rating == 0 && strings.TrimSpace(r.Comment) == "" {
		return ErrEmptyReview
	}
	return nil
}

// CastMember is a credited actor. Never persisted.
type CastMember struct {
	ID          int64
	Name        string
	Character   string
	ProfilePath string
}

// ItemPage is one page of a paginated list response
type ItemPage struct {
	Page         int
	Items        []CatalogItem
	TotalPages   int
	TotalResults int
}

// DefaultSortBy is the discover ordering used by the filter mode
const DefaultSortBy = "popularity.desc"

// DiscoverQuery holds the parameters of a discover (filter) request
type DiscoverQuery struct {
	Page     int
	GenreIDs []int // Empty means no genre filter
	Year     int   // 0 means no year filter
	SortBy   string
}

// GenreParam returns the comma-joined genre identifiers ("28,35")
func (q DiscoverQuery) GenreParam() string {
	return JoinGenreIDs(q.GenreIDs)
}
