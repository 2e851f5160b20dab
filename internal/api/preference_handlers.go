package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/errors"
)

func (s *Server) registerPreferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences",
		Summary:     "Get preferences",
		Description: "Returns the persisted theme and generation credential status",
		Tags:        []string{"Preferences"},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePreferences",
		Method:      http.MethodPut,
		Path:        "/api/v1/preferences",
		Summary:     "Update preferences",
		Description: "Updates the theme and/or the generation API key",
		Tags:        []string{"Preferences"},
	}, s.handleUpdatePreferences)
}

// === DTOs ===

// PreferencesResponse contains the persisted preferences. The API key itself
// is never echoed back, only whether one is set.
type PreferencesResponse struct {
	Theme     string `json:"theme" doc:"Active UI theme"`
	APIKeySet bool   `json:"api_key_set" doc:"Whether a generation API key is configured"`
}

// PreferencesOutput wraps the preferences response for Huma.
type PreferencesOutput struct {
	Body PreferencesResponse
}

// UpdatePreferencesRequest is the request body for preference updates. Nil
// fields are left unchanged; an empty API key removes the stored credential.
type UpdatePreferencesRequest struct {
	Theme  *string `json:"theme,omitempty" validate:"omitempty,oneof=flash-era flash-era-light" doc:"UI theme"`
	APIKey *string `json:"api_key,omitempty" doc:"Generation API key, empty to remove"`
}

// UpdatePreferencesInput wraps the update request for Huma.
type UpdatePreferencesInput struct {
	Body UpdatePreferencesRequest
}

// === Handlers ===

func (s *Server) handleGetPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	p := s.prefs.Get()
	return &PreferencesOutput{Body: PreferencesResponse{
		Theme:     string(p.Theme),
		APIKeySet: p.APIKey != "",
	}}, nil
}

func (s *Server) handleUpdatePreferences(ctx context.Context, input *UpdatePreferencesInput) (*PreferencesOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if input.Body.Theme != nil {
		if _, err := s.storyService.SetTheme(domain.Theme(*input.Body.Theme)); err != nil {
			return nil, err
		}
	}
	if input.Body.APIKey != nil {
		if err := s.prefs.SetAPIKey(*input.Body.APIKey); err != nil {
			return nil, errors.Internal("failed to persist API key", err)
		}
	}

	p := s.prefs.Get()
	return &PreferencesOutput{Body: PreferencesResponse{
		Theme:     string(p.Theme),
		APIKeySet: p.APIKey != "",
	}}, nil
}
