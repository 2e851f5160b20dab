package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/id"
	"github.com/storybookapp/storybook-server/internal/media/images"
)

// Story Operations

// SaveStory persists a story aggregate and returns its storage ID.
//
// A story without a storage ID is inserted with fresh timestamps; an existing
// story has its mutable fields and UpdatedAt replaced. Chapter records are
// always fully replaced: the delete and every reinsert run inside a single
// Badger transaction, so a failed save can never leave a partial chapter set
// behind. Image materialization (data-URI decode, remote fetch) happens
// before the transaction opens; a fetch failure stores the URL text instead
// and never fails the save.
func (s *Store) SaveStory(ctx context.Context, story *domain.Story) (string, error) {
	if strings.TrimSpace(story.Title) == "" {
		return "", ErrEmptyTitle
	}

	// Network and decode work stays outside the write transaction.
	records := make([]storedChapter, len(story.Chapters))
	for i, ch := range story.Chapters {
		records[i] = s.materializeChapter(ctx, story.StorageID, ch)
	}

	storyID := story.StorageID
	isNew := storyID == ""
	if isNew {
		var err error
		storyID, err = id.Generate(id.PrefixStory)
		if err != nil {
			return "", fmt.Errorf("assign story id: %w", err)
		}
		for i := range records {
			records[i].StoryID = storyID
		}
	}

	now := time.Now()
	rec := storedStory{
		ID:            storyID,
		Title:         story.Title,
		Genre:         story.Genre,
		Audience:      story.Audience,
		CoverBlurHash: coverBlurHash(records),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := storyKey(storyID)

		if !isNew {
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrStoryNotFound
			}
			if err != nil {
				return err
			}
			var existing storedStory
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return fmt.Errorf("unmarshal story record: %w", err)
			}
			rec.CreatedAt = existing.CreatedAt

			// Full replacement: drop every existing chapter record before
			// reinserting, inside this same transaction.
			if err := deletePrefix(txn, chapterScanPrefix(storyID)); err != nil {
				return fmt.Errorf("delete chapter records: %w", err)
			}
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal story record: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}

		for seq, chRec := range records {
			data, err := json.Marshal(chRec)
			if err != nil {
				return fmt.Errorf("marshal chapter record: %w", err)
			}
			if err := txn.Set(chapterKey(storyID, seq), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStoryNotFound) {
			return "", err
		}
		return "", fmt.Errorf("save story: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "story saved",
			slog.String("id", storyID),
			slog.String("title", story.Title),
			slog.Int("chapters", len(records)),
			slog.Bool("new", isNew),
		)
	}
	return storyID, nil
}

// GetStory reconstructs a story aggregate from its records. Chapters come
// back in stored order with their original session chapter IDs.
func (s *Store) GetStory(ctx context.Context, storyID string) (*domain.Story, error) {
	var rec storedStory
	var chapterRecs []storedChapter

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storyKey(storyID))
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}

		prefix := chapterScanPrefix(storyID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var chRec storedChapter
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &chRec)
			}); err != nil {
				return err
			}
			chapterRecs = append(chapterRecs, chRec)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("get story: %w", err)
	}

	story := &domain.Story{
		StorageID: storyID,
		Title:     rec.Title,
		Genre:     rec.Genre,
		Audience:  rec.Audience,
		Chapters:  make([]domain.Chapter, len(chapterRecs)),
	}
	for i, chRec := range chapterRecs {
		story.Chapters[i] = chapterFromRecord(chRec)
	}
	return story, nil
}

// ListStories returns summaries of all saved stories ordered by UpdatedAt
// descending. Each summary carries a best-effort cover derived from the first
// chapter's blob; chapters beyond the first are never loaded.
func (s *Store) ListStories(ctx context.Context) ([]StorySummary, error) {
	var summaries []StorySummary

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(storyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec storedStory
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			summaries = append(summaries, StorySummary{
				ID:            rec.ID,
				Title:         rec.Title,
				Genre:         rec.Genre,
				Audience:      rec.Audience,
				CoverBlurHash: rec.CoverBlurHash,
				CreatedAt:     rec.CreatedAt,
				UpdatedAt:     rec.UpdatedAt,
			})
		}

		for i := range summaries {
			count, cover := s.firstChapterCover(txn, summaries[i].ID)
			summaries[i].ChapterCount = count
			summaries[i].CoverImage = cover
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// firstChapterCover counts a story's chapter records and decodes the first
// one's cover, loading only that single value.
func (s *Store) firstChapterCover(txn *badger.Txn, storyID string) (count int, cover string) {
	prefix := chapterScanPrefix(storyID)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if count == 0 {
			var rec storedChapter
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err == nil {
				cover = coverFromRecord(rec)
			}
		}
		count++
	}
	return count, cover
}

// DeleteStory removes the story record and every chapter record in a single
// transaction: both collections change or neither does.
func (s *Store) DeleteStory(ctx context.Context, storyID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := storyKey(storyID)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return deletePrefix(txn, chapterScanPrefix(storyID))
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrStoryNotFound
		}
		return fmt.Errorf("delete story: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("story deleted", "id", storyID)
	}
	return nil
}

// ClearAll atomically empties the story and chapter collections.
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, []byte(storyPrefix)); err != nil {
			return err
		}
		return deletePrefix(txn, []byte(chapterPrefix))
	})
	if err != nil {
		return fmt.Errorf("clear stories: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("all stories cleared")
	}
	return nil
}

// coverBlurHash computes a placeholder hash from the first chapter image.
// Best effort: stories without a decodable first image simply have no hash.
func coverBlurHash(records []storedChapter) string {
	for _, rec := range records {
		if len(rec.ImageBlob) == 0 || !strings.HasPrefix(rec.ImageMIME, "image/") {
			continue
		}
		hash, err := images.ComputeBlurHash(rec.ImageBlob)
		if err != nil {
			return ""
		}
		return hash
	}
	return ""
}
