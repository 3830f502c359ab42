package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmcdole/reel/internal/domain"
)

// Drivers accepted by Open
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

const sqliteFileName = "reel.sqlite"

// Open returns the favorites store for driver rooted at dir.
// An empty dir gives a non-persistent store.
func Open(driver, dir string) (domain.FavoritesStore, error) {
	switch driver {
	case "", DriverBolt:
		return NewBoltStore(dir)
	case DriverSQLite:
		dsn := ":memory:"
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
			dsn = filepath.Join(dir, sqliteFileName)
		}
		return NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
