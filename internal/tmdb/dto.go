package tmdb

// TMDB JSON response types. Field names follow the v3 API.

// PageResponse is the envelope of every paginated movie list
// (movie/popular, search/movie, discover/movie)
type PageResponse struct {
	Page         int        `json:"page"`
	Results      []MovieDTO `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// MovieDTO is a movie as it appears in list results
type MovieDTO struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
}

// DetailsDTO is the movie/{id} payload. It carries named genres
// instead of genre ids.
type DetailsDTO struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Overview         string     `json:"overview"`
	PosterPath       string     `json:"poster_path"`
	BackdropPath     string     `json:"backdrop_path"`
	ReleaseDate      string     `json:"release_date"`
	VoteAverage      float64    `json:"vote_average"`
	Genres           []GenreDTO `json:"genres"`
	OriginalLanguage string     `json:"original_language"`
	Runtime          int        `json:"runtime"`
}

// GenreDTO is a named genre
type GenreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreditsResponse is the movie/{id}/credits payload
type CreditsResponse struct {
	ID   int64     `json:"id"`
	Cast []CastDTO `json:"cast"`
}

// CastDTO is one credited actor
type CastDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}
