package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storybookapp/storybook-server/internal/domain"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/session",
		Summary:     "Get session",
		Description: "Returns the current wizard state snapshot",
		Tags:        []string{"Session"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "transitionStep",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/step",
		Summary:     "Change wizard step",
		Description: "Requests a wizard step transition; concurrent requests are dropped, not queued",
		Tags:        []string{"Session"},
	}, s.handleTransitionStep)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/reset",
		Summary:     "Reset session",
		Description: "Discards the current story and returns to the prompting step",
		Tags:        []string{"Session"},
	}, s.handleResetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateChapter",
		Method:      http.MethodPatch,
		Path:        "/api/v1/session/chapters/{chapterID}",
		Summary:     "Update chapter content",
		Description: "Replaces one chapter's content in the story being edited",
		Tags:        []string{"Session"},
	}, s.handleUpdateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "generateIllustration",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/chapters/{chapterID}/illustration",
		Summary:     "Generate chapter illustration",
		Description: "Generates an illustration for one chapter; chapters illustrate independently",
		Tags:        []string{"Session"},
	}, s.handleGenerateIllustration)
}

// === DTOs ===

// TransitionStepRequest is the request body for a wizard step change.
type TransitionStepRequest struct {
	Step int `json:"step" validate:"required,wizardstep" doc:"Target step: 1 prompting, 2 editing, 3 previewing"`
}

// TransitionStepInput wraps the step request for Huma.
type TransitionStepInput struct {
	Body TransitionStepRequest
}

// TransitionStepResponse reports the transition outcome and resulting state.
type TransitionStepResponse struct {
	Applied bool            `json:"applied" doc:"Whether the transition was applied"`
	Session SessionResponse `json:"session" doc:"Resulting wizard state"`
}

// TransitionStepOutput wraps the transition response for Huma.
type TransitionStepOutput struct {
	Body TransitionStepResponse
}

// UpdateChapterRequest is the request body for a chapter content edit.
type UpdateChapterRequest struct {
	Content string `json:"content" validate:"required" doc:"Replacement chapter content"`
}

// UpdateChapterInput wraps the chapter edit for Huma.
type UpdateChapterInput struct {
	ChapterID string `path:"chapterID" doc:"Session chapter ID"`
	Body      UpdateChapterRequest
}

// IllustrationRequest is the request body for generating an illustration.
type IllustrationRequest struct {
	CustomPrompt string `json:"custom_prompt,omitempty" validate:"omitempty,max=500" doc:"Optional custom illustration prompt"`
}

// IllustrationInput wraps the illustration request for Huma.
type IllustrationInput struct {
	ChapterID string `path:"chapterID" doc:"Session chapter ID"`
	Body      IllustrationRequest
}

// === Handlers ===

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	return &SessionOutput{Body: s.sessionResponse(s.storyService.Snapshot())}, nil
}

func (s *Server) handleTransitionStep(ctx context.Context, input *TransitionStepInput) (*TransitionStepOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	state, applied := s.storyService.TransitionTo(ctx, domain.Step(input.Body.Step))
	return &TransitionStepOutput{Body: TransitionStepResponse{
		Applied: applied,
		Session: s.sessionResponse(state),
	}}, nil
}

func (s *Server) handleResetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	return &SessionOutput{Body: s.sessionResponse(s.storyService.Reset())}, nil
}

func (s *Server) handleUpdateChapter(ctx context.Context, input *UpdateChapterInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	state, err := s.storyService.UpdateChapterContent(ctx, input.ChapterID, input.Body.Content)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: s.sessionResponse(state)}, nil
}

func (s *Server) handleGenerateIllustration(ctx context.Context, input *IllustrationInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	state, err := s.storyService.GenerateChapterIllustration(ctx, input.ChapterID, input.Body.CustomPrompt)
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: s.sessionResponse(state)}, nil
}
