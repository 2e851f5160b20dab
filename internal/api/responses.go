package api

import (
	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/session"
)

// ChapterResponse contains one chapter of the story being authored.
type ChapterResponse struct {
	ID                string `json:"id" doc:"Session-stable chapter ID"`
	Title             string `json:"title" doc:"Chapter title"`
	Content           string `json:"content" doc:"Chapter content as sanitized HTML"`
	ImagePrompt       string `json:"image_prompt,omitempty" doc:"Custom illustration prompt, if any"`
	ImageURL          string `json:"image_url,omitempty" doc:"Illustration as data URI or original URL"`
	IsGeneratingImage bool   `json:"is_generating_image,omitempty" doc:"Whether an illustration is being generated"`
}

// StoryResponse contains story data in API responses.
type StoryResponse struct {
	StorageID string            `json:"storage_id,omitempty" doc:"Assigned storage ID, empty until first save"`
	Title     string            `json:"title" doc:"Story title"`
	Genre     string            `json:"genre" doc:"Story genre"`
	Audience  string            `json:"audience" doc:"Target audience"`
	Chapters  []ChapterResponse `json:"chapters" doc:"Chapters in order"`
}

// SessionResponse is the wizard state snapshot returned by most endpoints.
type SessionResponse struct {
	Story   *StoryResponse `json:"story,omitempty" doc:"Story being authored, if any"`
	Step    int            `json:"step" doc:"Wizard step: 1 prompting, 2 editing, 3 previewing"`
	Loading bool           `json:"loading,omitempty" doc:"Whether a generation is in flight"`
	Error   string         `json:"error,omitempty" doc:"Last user-visible error message"`
	Theme   string         `json:"theme" doc:"Active UI theme"`
	Busy    bool           `json:"busy,omitempty" doc:"Whether a step transition is in flight"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

func storyResponse(story *domain.Story) *StoryResponse {
	if story == nil {
		return nil
	}
	chapters := make([]ChapterResponse, len(story.Chapters))
	for i, ch := range story.Chapters {
		chapters[i] = ChapterResponse{
			ID:                ch.ID,
			Title:             ch.Title,
			Content:           ch.Content,
			ImagePrompt:       ch.ImagePrompt,
			ImageURL:          ch.ImageURL,
			IsGeneratingImage: ch.IsGeneratingImage,
		}
	}
	return &StoryResponse{
		StorageID: story.StorageID,
		Title:     story.Title,
		Genre:     string(story.Genre),
		Audience:  string(story.Audience),
		Chapters:  chapters,
	}
}

func (s *Server) sessionResponse(state session.State) SessionResponse {
	return SessionResponse{
		Story:   storyResponse(state.Story),
		Step:    int(state.Step),
		Loading: state.Loading,
		Error:   state.Err,
		Theme:   string(state.Theme),
		Busy:    s.storyService.Busy(),
	}
}
