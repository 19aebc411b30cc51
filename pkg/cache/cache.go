// Package cache provides persistent storage for raw query results.
//
// Query runs against a Gerrit server are slow and rate-limited, so the
// raw export is kept in a BoltDB file keyed by query descriptor. A
// cached entry is served until it is older than the caller's maximum
// age.
//
// Example usage:
//
//	store, err := cache.New(cache.Config{Path: "~/.config/gerrit-stats/queries.db"}, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	data, err := store.Get("review.example.org/30d", time.Hour)
//	if errors.Is(err, cache.ErrMiss) {
//	    data = runQuery()
//	    store.Put("review.example.org/30d", data)
//	}
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/0xfelis/gerrit-stats/pkg/logger"
)

var bucketQueries = []byte("queries")

// Store persists raw query results.
type Store interface {
	// Get returns the cached payload for a key.
	//
	// Parameters:
	//   - key: Query descriptor
	//   - maxAge: Maximum acceptable entry age; 0 accepts any age
	//
	// Returns ErrMiss when no entry exists or the entry is older than
	// maxAge.
	Get(key string, maxAge time.Duration) ([]byte, error)

	// Put stores a payload under a key, overwriting any previous
	// entry.
	Put(key string, payload []byte) error

	// Path returns the database file path.
	Path() string

	// Close closes the underlying database.
	Close() error
}

// Config contains cache configuration.
type Config struct {
	// Path to the BoltDB file; a leading ~ expands to the home
	// directory.
	Path string

	// Timeout for acquiring the database file lock.
	Timeout time.Duration
}

// entry is the stored representation of one cached query result.
type entry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Payload   []byte    `json:"payload"`
}

// store implements the Store interface using BoltDB.
type store struct {
	db     *bolt.DB
	path   string
	logger logger.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// New opens (creating if needed) the cache database.
//
// Parameters:
//   - cfg: Cache configuration
//   - log: Logger instance
//
// Returns an error when the database cannot be opened or initialized.
func New(cfg Config, log logger.Logger) (Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	path := expandHome(cfg.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketQueries)
		return createErr
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close cache after initialization error",
				"error", closeErr)
		}
		return nil, fmt.Errorf("failed to create queries bucket: %w", err)
	}

	log.Debug("query cache opened", "path", path)

	return &store{
		db:     db,
		path:   path,
		logger: log,
		now:    time.Now,
	}, nil
}

// Get implements Store.Get.
func (s *store) Get(key string, maxAge time.Duration) ([]byte, error) {
	var e entry

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketQueries).Get([]byte(key))
		if data == nil {
			return ErrMiss
		}
		return json.Unmarshal(data, &e)
	})
	if err != nil {
		return nil, err
	}

	if maxAge > 0 && s.now().Sub(e.FetchedAt) > maxAge {
		s.logger.Debug("cache entry expired",
			"key", key,
			"fetched_at", e.FetchedAt)
		return nil, fmt.Errorf("%w: entry from %s", ErrMiss,
			e.FetchedAt.Format(time.RFC3339))
	}

	return e.Payload, nil
}

// Put implements Store.Put.
func (s *store) Put(key string, payload []byte) error {
	data, err := json.Marshal(entry{
		FetchedAt: s.now(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketQueries).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	s.logger.Debug("cache entry stored", "key", key, "bytes", len(payload))
	return nil
}

// Path implements Store.Path.
func (s *store) Path() string { return s.path }

// Close implements Store.Close.
func (s *store) Close() error {
	return s.db.Close()
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
