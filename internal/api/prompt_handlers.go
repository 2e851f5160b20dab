package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/errors"
)

func (s *Server) registerPromptRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "randomPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/random",
		Summary:     "Random prompt suggestion",
		Description: "Picks a seeded prompt suggestion matching the genre and audience filters; never repeats the previous suggestion",
		Tags:        []string{"Prompts"},
	}, s.handleRandomPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "enhancePrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/enhance",
		Summary:     "Enhance prompt",
		Description: "Expands a short story idea into a richer prompt; falls back to the original on upstream failure",
		Tags:        []string{"Prompts"},
	}, s.handleEnhancePrompt)
}

// === DTOs ===

// RandomPromptRequest filters the prompt suggestion pool. Empty or "any"
// values match every suggestion.
type RandomPromptRequest struct {
	Genre    string `json:"genre,omitempty" doc:"Genre filter, empty or \"any\" for all"`
	Audience string `json:"audience,omitempty" doc:"Audience filter, empty or \"any\" for all"`
}

// RandomPromptInput wraps the suggestion request for Huma.
type RandomPromptInput struct {
	Body RandomPromptRequest
}

// PromptResponse contains one prompt suggestion.
type PromptResponse struct {
	ID       string   `json:"id" doc:"Suggestion ID"`
	Prompt   string   `json:"prompt" doc:"Suggested story idea"`
	Genre    string   `json:"genre" doc:"Genre the suggestion fits, or \"any\""`
	Audience string   `json:"audience" doc:"Audience the suggestion fits, or \"any\""`
	Tags     []string `json:"tags,omitempty" doc:"Descriptive tags"`
}

// PromptOutput wraps the suggestion response for Huma.
type PromptOutput struct {
	Body PromptResponse
}

// EnhancePromptRequest is the request body for prompt enhancement.
type EnhancePromptRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=2000" doc:"Story idea to expand"`
}

// EnhancePromptInput wraps the enhancement request for Huma.
type EnhancePromptInput struct {
	Body EnhancePromptRequest
}

// EnhancePromptResponse contains the expanded prompt.
type EnhancePromptResponse struct {
	Original string `json:"original" doc:"Prompt as submitted"`
	Enhanced string `json:"enhanced" doc:"Expanded prompt, equal to the original if enhancement was unavailable"`
}

// EnhancePromptOutput wraps the enhancement response for Huma.
type EnhancePromptOutput struct {
	Body EnhancePromptResponse
}

// === Handlers ===

func (s *Server) handleRandomPrompt(ctx context.Context, input *RandomPromptInput) (*PromptOutput, error) {
	genre, err := genreFilter(input.Body.Genre)
	if err != nil {
		return nil, err
	}
	audience, err := audienceFilter(input.Body.Audience)
	if err != nil {
		return nil, err
	}

	prompt, err := s.storyService.RandomPrompt(ctx, genre, audience)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: PromptResponse{
		ID:       prompt.ID,
		Prompt:   prompt.Prompt,
		Genre:    string(prompt.Genre),
		Audience: string(prompt.Audience),
		Tags:     prompt.Tags,
	}}, nil
}

func (s *Server) handleEnhancePrompt(ctx context.Context, input *EnhancePromptInput) (*EnhancePromptOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	enhanced, err := s.storyService.EnhancePrompt(ctx, input.Body.Prompt)
	if err != nil {
		return nil, err
	}

	return &EnhancePromptOutput{Body: EnhancePromptResponse{
		Original: input.Body.Prompt,
		Enhanced: enhanced,
	}}, nil
}

// genreFilter maps the wire value to a genre filter, treating empty as the
// wildcard.
func genreFilter(value string) (domain.Genre, error) {
	if value == "" || value == string(domain.GenreAny) {
		return domain.GenreAny, nil
	}
	g := domain.Genre(value)
	if !g.Valid() {
		return "", errors.Validation("unknown genre filter")
	}
	return g, nil
}

// audienceFilter maps the wire value to an audience filter, treating empty
// as the wildcard.
func audienceFilter(value string) (domain.Audience, error) {
	if value == "" || value == string(domain.AudienceAny) {
		return domain.AudienceAny, nil
	}
	a := domain.Audience(value)
	if !a.Valid() {
		return "", errors.Validation("unknown audience filter")
	}
	return a, nil
}
