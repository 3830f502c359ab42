package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import sqlite3 driver

	"github.com/mmcdole/reel/internal/domain"
)

// SQLiteStore implements domain.FavoritesStore on SQLite
type SQLiteStore struct {
	db   *sql.DB
	feed *feed
	now  func() time.Time
}

var _ domain.FavoritesStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at dsn (":memory:" for a throwaway store)
// and initializes the schema
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory database exists per connection, and
	// SQLite allows a single writer anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, feed: newFeed(), now: time.Now}
	if err := s.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the favorites and user_reviews tables
func (s *SQLiteStore) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		overview TEXT,
		poster_path TEXT,
		backdrop_path TEXT,
		release_date TEXT,
		rating REAL,
		genres TEXT,
		original_language TEXT,
		saved_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_favorites_title ON favorites(title COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS user_reviews (
		movie_id INTEGER PRIMARY KEY,
		rating REAL NOT NULL,
		comment TEXT,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// === Favorites ===

func (s *SQLiteStore) UpsertFavorite(item domain.CatalogItem) error {
	genres, err := json.Marshal(item.Genres)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO favorites (id, title, overview, poster_path, backdrop_path,
			release_date, rating, genres, original_language, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			overview = excluded.overview,
			poster_path = excluded.poster_path,
			backdrop_path = excluded.backdrop_path,
			release_date = excluded.release_date,
			rating = excluded.rating,
			genres = excluded.genres,
			original_language = excluded.original_language,
			saved_at = excluded.saved_at`

	_, err = s.db.Exec(query,
		item.ID, item.Title, item.Overview, item.PosterPath, item.BackdropPath,
		item.ReleaseDate, item.Rating, string(genres), item.OriginalLanguage, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save favorite %d: %w", item.ID, err)
	}
	s.publish()
	return nil
}

func (s *SQLiteStore) RemoveFavorite(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM favorites WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove favorite %d: %w", id, err)
	}
	s.publish()
	return nil
}

func (s *SQLiteStore) IsFavorite(id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM favorites WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

const favoriteColumns = `id, title, overview, poster_path, backdrop_path,
	release_date, rating, genres, original_language, saved_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFavorite(row rowScanner) (domain.CatalogItem, error) {
	var item domain.CatalogItem
	var overview, poster, backdrop, release, genres, language sql.NullString
	var rating sql.NullFloat64
	err := row.Scan(&item.ID, &item.Title, &overview, &poster, &backdrop,
		&release, &rating, &genres, &language, &item.SavedAt)
	if err != nil {
		return item, err
	}
	item.Overview = overview.String
	item.PosterPath = poster.String
	item.BackdropPath = backdrop.String
	item.ReleaseDate = release.String
	item.Rating = rating.Float64
	item.OriginalLanguage = language.String
	if genres.String != "" && genres.String != "null" {
		if err := json.Unmarshal([]byte(genres.String), &item.Genres); err != nil {
			return item, fmt.Errorf("decode genres of %d: %w", item.ID, err)
		}
	}
	return item, nil
}

func (s *SQLiteStore) GetFavorite(id int64) (*domain.CatalogItem, error) {
	row := s.db.QueryRow(`SELECT `+favoriteColumns+` FROM favorites WHERE id = ?`, id)
	item, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *SQLiteStore) ListFavorites() ([]domain.CatalogItem, error) {
	rows, err := s.db.Query(`SELECT ` + favoriteColumns + ` FROM favorites ORDER BY title COLLATE NOCASE, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CatalogItem{}
	for rows.Next() {
		item, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) WatchFavorites(fn func([]domain.CatalogItem)) func() {
	return s.feed.watch(fn, s.ListFavorites)
}

func (s *SQLiteStore) publish() {
	s.feed.publish(s.ListFavorites)
}

// === Reviews ===

func (s *SQLiteStore) UpsertReview(review domain.PersonalReview) error {
	createdAt := review.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	query := `
		INSERT INTO user_reviews (movie_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(movie_id) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			created_at = excluded.created_at`
	if _, err := s.db.Exec(query, review.MovieID, review.Rating, review.Comment, createdAt.UTC()); err != nil {
		return fmt.Errorf("save review %d: %w", review.MovieID, err)
	}
	return nil
}

func (s *SQLiteStore) GetReview(movieID int64) (*domain.PersonalReview, error) {
	var (
		review  domain.PersonalReview
		comment sql.NullString
	)
	err := s.db.QueryRow(
		`SELECT movie_id, rating, comment, created_at FROM user_reviews WHERE movie_id = ?`, movieID,
	).Scan(&review.MovieID, &review.Rating, &comment, &review.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	review.Comment = comment.String
	return &review, nil
}

func (s *SQLiteStore) DeleteReview(movieID int64) error {
	if _, err := s.db.Exec(`DELETE FROM user_reviews WHERE movie_id = ?`, movieID); err != nil {
		return fmt.Errorf("delete review %d: %w", movieID, err)
	}
	return nil
}
