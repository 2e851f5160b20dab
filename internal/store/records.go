package store

import (
	"context"
	"strings"
	"time"

	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/media/images"
)

// textBlobMIME marks a fallback blob holding the raw URL text of an image
// that could not be fetched at save time.
const textBlobMIME = "text/uri-list"

// storedStory is the storage-facing shape of a story record. It is kept
// separate from domain.Story so the schema can evolve independently of the
// editing model.
type storedStory struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Genre         domain.Genre    `json:"genre"`
	Audience      domain.Audience `json:"audience"`
	CoverBlurHash string          `json:"cover_blurhash,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// storedChapter is the storage-facing shape of one chapter. UIID preserves
// the session-stable chapter ID so the aggregate round-trips; images live
// here as binary blobs, never as base64 text in the URL field.
type storedChapter struct {
	UIID        string `json:"ui_id"`
	StoryID     string `json:"story_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImagePrompt string `json:"image_prompt"`
	ImageBlob   []byte `json:"image_blob,omitempty"`
	ImageMIME   string `json:"image_mime,omitempty"`
}

// StorySummary is the listing shape: story metadata plus a best-effort cover.
type StorySummary struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Genre         domain.Genre    `json:"genre"`
	Audience      domain.Audience `json:"audience"`
	ChapterCount  int             `json:"chapter_count"`
	CoverImage    string          `json:"cover_image,omitempty"`
	CoverBlurHash string          `json:"cover_blurhash,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// materializeChapter converts a UI chapter into its stored record,
// translating the image URL into a blob. Data URIs decode directly; remote
// URLs are fetched; any failure degrades to storing the URL text so the save
// as a whole never aborts on image trouble.
func (s *Store) materializeChapter(ctx context.Context, storyID string, ch domain.Chapter) storedChapter {
	rec := storedChapter{
		UIID:        ch.ID,
		StoryID:     storyID,
		Title:       ch.Title,
		Content:     ch.Content,
		ImagePrompt: ch.ImagePrompt,
	}

	if ch.ImageURL == "" {
		return rec
	}

	if images.IsDataURI(ch.ImageURL) {
		data, mime, err := images.DecodeDataURI(ch.ImageURL)
		if err == nil {
			rec.ImageBlob = data
			rec.ImageMIME = mime
			return rec
		}
		if s.logger != nil {
			s.logger.Warn("undecodable image data URI, storing as text",
				"chapter_id", ch.ID, "error", err)
		}
	} else {
		data, mime, err := s.fetcher.Fetch(ctx, ch.ImageURL)
		if err == nil {
			rec.ImageBlob = data
			rec.ImageMIME = mime
			return rec
		}
		if s.logger != nil {
			s.logger.Warn("image fetch failed, storing URL as text",
				"chapter_id", ch.ID, "url", ch.ImageURL, "error", err)
		}
	}

	rec.ImageBlob = []byte(ch.ImageURL)
	rec.ImageMIME = textBlobMIME
	return rec
}

// chapterFromRecord reconstructs a UI chapter from its stored record.
// Image blobs re-encode to data URIs; text-fallback blobs pass through as
// literal URL strings.
func chapterFromRecord(rec storedChapter) domain.Chapter {
	ch := domain.Chapter{
		ID:          rec.UIID,
		Title:       rec.Title,
		Content:     rec.Content,
		ImagePrompt: rec.ImagePrompt,
	}
	if len(rec.ImageBlob) == 0 {
		return ch
	}
	if strings.HasPrefix(rec.ImageMIME, "image/") {
		ch.ImageURL = images.EncodeDataURI(rec.ImageBlob, rec.ImageMIME)
	} else {
		ch.ImageURL = string(rec.ImageBlob)
	}
	return ch
}

// coverFromRecord derives a displayable cover value from a chapter record.
// Returns "" when the record holds no decodable image.
func coverFromRecord(rec storedChapter) string {
	if len(rec.ImageBlob) == 0 || !strings.HasPrefix(rec.ImageMIME, "image/") {
		return ""
	}
	return images.EncodeDataURI(rec.ImageBlob, rec.ImageMIME)
}
