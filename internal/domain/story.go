// Package domain contains the core business entities for the StoryBook creator.
package domain

// Story is the aggregate being authored: a titled, genre-tagged sequence of
// chapters. StorageID is empty until the story has been persisted at least once.
type Story struct {
	StorageID string    `json:"storage_id,omitempty"`
	Title     string    `json:"title"`
	Genre     Genre     `json:"genre"`
	Audience  Audience  `json:"audience"`
	Chapters  []Chapter `json:"chapters"`
}

// Chapter is one unit of a story as seen by the editing UI.
// ID is a session-stable correlation key, distinct from any storage key.
type Chapter struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Content           string `json:"content"`
	ImagePrompt       string `json:"image_prompt"`
	ImageURL          string `json:"image_url,omitempty"`
	IsGeneratingImage bool   `json:"is_generating_image,omitempty"`
}

// FindChapter returns the chapter with the given UI ID, or nil.
func (s *Story) FindChapter(chapterID string) *Chapter {
	for i := range s.Chapters {
		if s.Chapters[i].ID == chapterID {
			return &s.Chapters[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the story. Dispatch hands out snapshots, so
// readers must never observe a chapters slice shared with the live state.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	out := *s
	out.Chapters = make([]Chapter, len(s.Chapters))
	copy(out.Chapters, s.Chapters)
	return &out
}

// Genre identifies the story genre offered by the prompt form.
type Genre string

// Genres offered by the prompt form.
const (
	GenreFantasy   Genre = "Fantasy"
	GenreSciFi     Genre = "Science Fiction"
	GenreMystery   Genre = "Mystery"
	GenreRomance   Genre = "Romance"
	GenreChildrens Genre = "Children's Book"
	GenreAdventure Genre = "Adventure"

	// GenreAny is the wildcard used by prompt suggestions that fit any genre.
	GenreAny Genre = "any"
)

// Valid reports whether g is one of the selectable genres.
func (g Genre) Valid() bool {
	switch g {
	case GenreFantasy, GenreSciFi, GenreMystery, GenreRomance, GenreChildrens, GenreAdventure:
		return true
	}
	return false
}

// Audience identifies the target readership.
type Audience string

// Audiences offered by the prompt form.
const (
	AudienceChildren Audience = "Children (3-8)"
	AudiencePreTeen  Audience = "Pre-teen (9-12)"
	AudienceTeen     Audience = "Teenagers (13-18)"
	AudienceAdult    Audience = "Adults"

	// AudienceAny is the wildcard used by prompt suggestions.
	AudienceAny Audience = "any"
)

// Valid reports whether a is one of the selectable audiences.
func (a Audience) Valid() bool {
	switch a {
	case AudienceChildren, AudiencePreTeen, AudienceTeen, AudienceAdult:
		return true
	}
	return false
}
