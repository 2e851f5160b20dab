// Package store persists Story aggregates and prompt-suggestion reference
// data in an embedded, schema-versioned Badger database.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

// currentSchemaVersion is written to the database on open. Upgrades must
// preserve story and chapter records; the prompt catalog may be rebuilt.
const currentSchemaVersion = 1

// ImageFetcher downloads a remote illustration so it can be stored as a blob.
// Store uses this when a chapter's image URL points outside the database;
// a fetch failure degrades to storing the URL text, never failing the save.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, mime string, err error)
}

// NoopFetcher is an ImageFetcher that always fails, for tests and offline use.
type NoopFetcher struct{}

// Fetch implements ImageFetcher.
func (NoopFetcher) Fetch(context.Context, string) ([]byte, string, error) {
	return nil, "", errors.New("image fetching disabled")
}

// Store wraps a Badger database instance.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	fetcher ImageFetcher
}

// New opens (or creates) the database at path. The fetcher is used to
// materialize remote image URLs into blobs at save time; pass nil to store
// URL text fallbacks instead.
func New(path string, logger *slog.Logger, fetcher ImageFetcher) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to survive crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if fetcher == nil {
		fetcher = NoopFetcher{}
	}

	store := &Store{
		db:      db,
		logger:  logger,
		fetcher: fetcher,
	}

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Info("story database opened", "path", path)
	}
	return store, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing story database")
	}
	return s.db.Close()
}

// migrate records the schema version and applies upgrades from older layouts.
func (s *Store) migrate() error {
	var stored int
	err := s.get([]byte(schemaVersionKey), &stored)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		stored = 0
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}

	if stored == currentSchemaVersion {
		return nil
	}
	if stored > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", stored, currentSchemaVersion)
	}

	// Upgrades keep stories and chapters intact; clearing the seed marker
	// forces the prompt catalog to be rebuilt on next access.
	if stored > 0 {
		if err := s.delete([]byte(promptSeedVersionKey)); err != nil {
			return fmt.Errorf("reset prompt seed marker: %w", err)
		}
	}

	if err := s.set([]byte(schemaVersionKey), currentSchemaVersion); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("database schema migrated",
			"from", strconv.Itoa(stored),
			"to", strconv.Itoa(currentSchemaVersion),
		)
	}
	return nil
}

// Helper methods for database operations.

// get retrieves a JSON value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a JSON value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key. Missing keys are not an error.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// deletePrefix removes every key with the given prefix inside txn.
func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
