package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/dgraph-io/badger/v4"

	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/id"
)

// FallbackPrompt is returned when no suggestion can be produced at all.
const FallbackPrompt = "A magical story waiting to be discovered..."

// Prompt Suggestion Operations

// SeedPrompts loads the built-in prompt catalog into the database. The seed
// is guarded by an explicit version marker rather than a record count, so an
// intentional catalog change (version bump) rebuilds the collection while an
// unchanged version makes this a no-op. Stories are never touched.
func (s *Store) SeedPrompts(ctx context.Context) error {
	var seeded int
	err := s.get([]byte(promptSeedVersionKey), &seeded)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("read prompt seed version: %w", err)
	}
	if seeded == promptCatalogVersion {
		return nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, []byte(promptPrefix)); err != nil {
			return err
		}

		for _, p := range promptCatalog {
			p.ID = id.MustGenerate(id.PrefixPrompt)
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("marshal prompt: %w", err)
			}
			if err := txn.Set(promptKey(p.ID), data); err != nil {
				return err
			}
		}

		version, err := json.Marshal(promptCatalogVersion)
		if err != nil {
			return err
		}
		return txn.Set([]byte(promptSeedVersionKey), version)
	})
	if err != nil {
		return fmt.Errorf("seed prompts: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("prompt catalog seeded",
			"count", len(promptCatalog),
			"version", promptCatalogVersion,
		)
	}
	return nil
}

// ReseedPrompts rebuilds the prompt catalog regardless of the version
// marker. Suggestion IDs are reassigned.
func (s *Store) ReseedPrompts(ctx context.Context) error {
	if err := s.delete([]byte(promptSeedVersionKey)); err != nil {
		return fmt.Errorf("clear prompt seed version: %w", err)
	}
	return s.SeedPrompts(ctx)
}

// CountPrompts returns the number of seeded prompt suggestions.
func (s *Store) CountPrompts(ctx context.Context) (int, error) {
	prompts, err := s.loadPrompts()
	if err != nil {
		return 0, err
	}
	return len(prompts), nil
}

// GetRandomPrompt picks a prompt suggestion uniformly at random among records
// whose genre and audience each match the arguments or are wildcards.
// excludeID removes the previously used suggestion from the pool so the same
// one is not served twice in a row. An empty filtered pool falls back to the
// entire catalog; an empty catalog is seeded once and retried; if nothing can
// be produced the returned suggestion carries FallbackPrompt and no ID.
func (s *Store) GetRandomPrompt(ctx context.Context, genre domain.Genre, audience domain.Audience, excludeID string) (*domain.StoryPrompt, error) {
	all, err := s.loadPrompts()
	if err != nil {
		return nil, err
	}

	if len(all) == 0 {
		if err := s.SeedPrompts(ctx); err != nil {
			return nil, err
		}
		if all, err = s.loadPrompts(); err != nil {
			return nil, err
		}
	}
	if len(all) == 0 {
		return &domain.StoryPrompt{Prompt: FallbackPrompt}, nil
	}

	pool := make([]domain.StoryPrompt, 0, len(all))
	for _, p := range all {
		if p.ID == excludeID {
			continue
		}
		if p.Matches(genre, audience) {
			pool = append(pool, p)
		}
	}

	// Nothing left after filtering and exclusion: fall back to the full
	// catalog for breadth rather than erroring.
	if len(pool) == 0 {
		pool = all
	}

	pick := pool[rand.IntN(len(pool))]
	return &pick, nil
}

// loadPrompts reads the whole suggestion collection.
func (s *Store) loadPrompts() ([]domain.StoryPrompt, error) {
	var prompts []domain.StoryPrompt

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(promptPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p domain.StoryPrompt
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			prompts = append(prompts, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	return prompts, nil
}
