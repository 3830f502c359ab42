// Package store persists favorites and personal reviews locally.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/reel/internal/domain"
)

// Bucket names
var (
	bucketFavorites = []byte("favorites")
	bucketReviews   = []byte("reviews")
)

const boltFileName = "reel.db"

// BoltStore implements domain.FavoritesStore using BoltDB.
// With an empty directory it runs memory-only (no persistence).
type BoltStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// Read-through cache; in memory-only mode it is the whole store
	cache map[string][]byte

	feed *feed
	now  func() time.Time
}

var _ domain.FavoritesStore = (*BoltStore)(nil)

// NewBoltStore opens (or creates) reel.db under dir
func NewBoltStore(dir string) (*BoltStore, error) {
	s := &BoltStore{
		cache: make(map[string][]byte),
		feed:  newFeed(),
		now:   time.Now,
	}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, boltFileName), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketFavorites, bucketReviews} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *BoltStore) get(bucket []byte, key string, dest interface{}) (bool, error) {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return true, json.Unmarshal(data, dest)
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return true, json.Unmarshal(data, dest)
}

func (s *BoltStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()
	return nil
}

func (s *BoltStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

// scan returns every raw value in bucket
func (s *BoltStore) scan(bucket []byte) ([][]byte, error) {
	if s.db == nil {
		prefix := string(bucket) + ":"
		s.mu.RLock()
		defer s.mu.RUnlock()
		values := make([][]byte, 0, len(s.cache))
		for k, v := range s.cache {
			if strings.HasPrefix(k, prefix) {
				values = append(values, v)
			}
		}
		return values, nil
	}

	var values [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, v []byte) error {
			data := make([]byte, len(v))
			copy(data, v)
			values = append(values, data)
			return nil
		})
	})
	return values, err
}

// === Favorites ===

func (s *BoltStore) UpsertFavorite(item domain.CatalogItem) error {
	if err := s.set(bucketFavorites, idKey(item.ID), toFavoriteRecord(item, s.now())); err != nil {
		return fmt.Errorf("save favorite %d: %w", item.ID, err)
	}
	s.publish()
	return nil
}

func (s *BoltStore) RemoveFavorite(id int64) error {
	if err := s.delete(bucketFavorites, idKey(id)); err != nil {
		return fmt.Errorf("remove favorite %d: %w", id, err)
	}
	s.publish()
	return nil
}

func (s *BoltStore) IsFavorite(id int64) (bool, error) {
	var rec favoriteRecord
	return s.get(bucketFavorites, idKey(id), &rec)
}

func (s *BoltStore) GetFavorite(id int64) (*domain.CatalogItem, error) {
	var rec favoriteRecord
	ok, err := s.get(bucketFavorites, idKey(id), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	item := rec.item()
	return &item, nil
}

func (s *BoltStore) ListFavorites() ([]domain.CatalogItem, error) {
	values, err := s.scan(bucketFavorites)
	if err != nil {
		return nil, err
	}
	items := make([]domain.CatalogItem, 0, len(values))
	for _, data := range values {
		var rec favoriteRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode favorite: %w", err)
		}
		items = append(items, rec.item())
	}
	sortByTitle(items)
	return items, nil
}

func (s *BoltStore) WatchFavorites(fn func([]domain.CatalogItem)) func() {
	return s.feed.watch(fn, s.ListFavorites)
}

func (s *BoltStore) publish() {
	s.feed.publish(s.ListFavorites)
}

// === Reviews ===

func (s *BoltStore) UpsertReview(review domain.PersonalReview) error {
	rec := reviewRecord{
		MovieID:   review.MovieID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if err := s.set(bucketReviews, idKey(review.MovieID), rec); err != nil {
		return fmt.Errorf("save review %d: %w", review.MovieID, err)
	}
	return nil
}

func (s *BoltStore) GetReview(movieID int64) (*domain.PersonalReview, error) {
	var rec reviewRecord
	ok, err := s.get(bucketReviews, idKey(movieID), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	review := rec.review()
	return &review, nil
}

func (s *BoltStore) DeleteReview(movieID int64) error {
	if err := s.delete(bucketReviews, idKey(movieID)); err != nil {
		return fmt.Errorf("delete review %d: %w", movieID, err)
	}
	return nil
}
