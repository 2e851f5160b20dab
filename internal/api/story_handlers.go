package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/store"
)

func (s *Server) registerStoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generateStory",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/generate",
		Summary:     "Generate story",
		Description: "Generates a new story from a prompt and moves the wizard to the editing step",
		Tags:        []string{"Stories"},
	}, s.handleGenerateStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listStories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories",
		Summary:     "List stories",
		Description: "Returns summaries of all saved stories, newest first",
		Tags:        []string{"Stories"},
	}, s.handleListStories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStory",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}",
		Summary:     "Get story",
		Description: "Loads a saved story into the session and returns the session state",
		Tags:        []string{"Stories"},
	}, s.handleGetStory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteStory",
		Method:        http.MethodDelete,
		Path:          "/api/v1/stories/{id}",
		Summary:       "Delete story",
		Description:   "Deletes a saved story and all its chapters",
		Tags:          []string{"Stories"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveStory",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/save",
		Summary:     "Save current story",
		Description: "Persists the story currently being edited",
		Tags:        []string{"Stories"},
	}, s.handleSaveStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportStory",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{id}/export",
		Summary:     "Export story",
		Description: "Renders a saved story as a Markdown document",
		Tags:        []string{"Stories"},
	}, s.handleExportStory)
}

// === DTOs ===

// GenerateStoryRequest is the request body for generating a story.
type GenerateStoryRequest struct {
	Prompt   string `json:"prompt" validate:"required,min=3,max=2000" doc:"Story idea"`
	Genre    string `json:"genre" validate:"required,genre" doc:"Story genre"`
	Audience string `json:"audience" validate:"required,audience" doc:"Target audience"`
}

// GenerateStoryInput wraps the generate request for Huma.
type GenerateStoryInput struct {
	Body GenerateStoryRequest
}

// StorySummaryResponse contains saved-story metadata for the library view.
type StorySummaryResponse struct {
	ID            string    `json:"id" doc:"Storage ID"`
	Title         string    `json:"title" doc:"Story title"`
	Genre         string    `json:"genre" doc:"Story genre"`
	Audience      string    `json:"audience" doc:"Target audience"`
	ChapterCount  int       `json:"chapter_count" doc:"Number of chapters"`
	CoverImage    string    `json:"cover_image,omitempty" doc:"First chapter illustration, if any"`
	CoverBlurHash string    `json:"cover_blurhash,omitempty" doc:"BlurHash placeholder for the cover"`
	CreatedAt     time.Time `json:"created_at" doc:"First save time"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last save time"`
}

// ListStoriesResponse contains the saved-story library.
type ListStoriesResponse struct {
	Stories []StorySummaryResponse `json:"stories" doc:"Saved stories, newest first"`
}

// ListStoriesOutput wraps the list response for Huma.
type ListStoriesOutput struct {
	Body ListStoriesResponse
}

// StoryIDInput addresses a saved story.
type StoryIDInput struct {
	ID string `path:"id" doc:"Storage ID"`
}

// SaveStoryResponse reports the assigned storage ID.
type SaveStoryResponse struct {
	StorageID string `json:"storage_id" doc:"Assigned storage ID"`
}

// SaveStoryOutput wraps the save response for Huma.
type SaveStoryOutput struct {
	Body SaveStoryResponse
}

// ExportStoryOutput returns the rendered Markdown document.
type ExportStoryOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// === Handlers ===

func (s *Server) handleGenerateStory(ctx context.Context, input *GenerateStoryInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	state, err := s.storyService.Generate(ctx, input.Body.Prompt, domain.Genre(input.Body.Genre), domain.Audience(input.Body.Audience))
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: s.sessionResponse(state)}, nil
}

func (s *Server) handleListStories(ctx context.Context, _ *struct{}) (*ListStoriesOutput, error) {
	summaries, err := s.storyService.ListStories(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]StorySummaryResponse, len(summaries))
	for i, sum := range summaries {
		resp[i] = summaryResponse(sum)
	}

	return &ListStoriesOutput{Body: ListStoriesResponse{Stories: resp}}, nil
}

func (s *Server) handleGetStory(ctx context.Context, input *StoryIDInput) (*SessionOutput, error) {
	state, err := s.storyService.LoadStory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: s.sessionResponse(state)}, nil
}

func (s *Server) handleDeleteStory(ctx context.Context, input *StoryIDInput) (*struct{}, error) {
	if err := s.storyService.DeleteStory(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleSaveStory(ctx context.Context, _ *struct{}) (*SaveStoryOutput, error) {
	storageID, err := s.storyService.SaveCurrent(ctx)
	if err != nil {
		return nil, err
	}

	return &SaveStoryOutput{Body: SaveStoryResponse{StorageID: storageID}}, nil
}

func (s *Server) handleExportStory(ctx context.Context, input *StoryIDInput) (*ExportStoryOutput, error) {
	md, err := s.storyService.ExportStoredMarkdown(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ExportStoryOutput{
		ContentType: "text/markdown; charset=utf-8",
		Body:        []byte(md),
	}, nil
}

func summaryResponse(sum store.StorySummary) StorySummaryResponse {
	return StorySummaryResponse{
		ID:            sum.ID,
		Title:         sum.Title,
		Genre:         string(sum.Genre),
		Audience:      string(sum.Audience),
		ChapterCount:  sum.ChapterCount,
		CoverImage:    sum.CoverImage,
		CoverBlurHash: sum.CoverBlurHash,
		CreatedAt:     sum.CreatedAt,
		UpdatedAt:     sum.UpdatedAt,
	}
}
