// Package service orchestrates the wizard flow: generation, editing,
// auto-save coordination, and story library operations.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storybookapp/storybook-server/internal/ai"
	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/errors"
	"github.com/storybookapp/storybook-server/internal/format"
	"github.com/storybookapp/storybook-server/internal/prefs"
	"github.com/storybookapp/storybook-server/internal/session"
	"github.com/storybookapp/storybook-server/internal/store"
)

// StoryService is the single entry point the API layer talks to. It owns the
// wiring between the session controller, the step transitioner, the story
// repository, and the generation gateway.
type StoryService struct {
	store     *store.Store
	generator ai.Generator
	ctrl      *session.Controller
	trans     *session.Transitioner
	prefs     *prefs.Store
	logger    *slog.Logger
}

// NewStoryService creates the story service.
func NewStoryService(
	st *store.Store,
	generator ai.Generator,
	ctrl *session.Controller,
	trans *session.Transitioner,
	prefStore *prefs.Store,
	logger *slog.Logger,
) *StoryService {
	return &StoryService{
		store:     st,
		generator: generator,
		ctrl:      ctrl,
		trans:     trans,
		prefs:     prefStore,
		logger:    logger,
	}
}

// Snapshot returns the current session state.
func (s *StoryService) Snapshot() session.State {
	return s.ctrl.Snapshot()
}

// Busy reports whether a step transition is in flight.
func (s *StoryService) Busy() bool {
	return s.trans.Busy()
}

// Generate produces a new story from a prompt and moves the wizard to the
// editing step. On upstream failure the session records a retryable error
// and stays at the prompting step.
func (s *StoryService) Generate(ctx context.Context, prompt string, genre domain.Genre, audience domain.Audience) (session.State, error) {
	if strings.TrimSpace(prompt) == "" {
		return s.ctrl.Snapshot(), errors.Validation("prompt must not be empty")
	}
	if !genre.Valid() || genre == domain.GenreAny {
		return s.ctrl.Snapshot(), errors.Validation("a concrete genre is required")
	}
	if !audience.Valid() || audience == domain.AudienceAny {
		return s.ctrl.Snapshot(), errors.Validation("a concrete audience is required")
	}

	s.ctrl.Dispatch(session.SetLoading{Loading: true})

	story, err := s.generator.GenerateStory(ctx, prompt, genre, audience)
	if err != nil {
		s.logger.Error("story generation failed", "error", err)
		state := s.ctrl.Dispatch(session.SetError{Message: "Failed to generate story. Please try again."})
		return state, errors.GenerationFailed("failed to generate story", err)
	}

	s.ctrl.Dispatch(session.SetStory{Story: story})
	s.trans.TransitionTo(ctx, domain.StepEditing)

	s.logger.Info("story generated",
		"title", story.Title,
		"chapters", len(story.Chapters),
		"genre", string(genre),
	)
	return s.ctrl.Snapshot(), nil
}

// UpdateChapterContent replaces one chapter's content in the session.
func (s *StoryService) UpdateChapterContent(ctx context.Context, chapterID, content string) (session.State, error) {
	if _, err := s.requireChapter(chapterID); err != nil {
		return s.ctrl.Snapshot(), err
	}
	return s.ctrl.Dispatch(session.UpdateChapterContent{ChapterID: chapterID, Content: content}), nil
}

// GenerateChapterIllustration produces an illustration for one chapter and
// stores the resulting image URL on it. The chapter's generating flag is set
// for the duration so concurrent requests for other chapters stay
// independent.
func (s *StoryService) GenerateChapterIllustration(ctx context.Context, chapterID, customPrompt string) (session.State, error) {
	chapter, err := s.requireChapter(chapterID)
	if err != nil {
		return s.ctrl.Snapshot(), err
	}

	s.ctrl.Dispatch(session.SetChapterGenerating{ChapterID: chapterID, Generating: true})

	plain := format.HTMLToText(chapter.Content)
	imageURL, err := s.generator.GenerateChapterImage(ctx, plain, customPrompt)
	if err != nil {
		s.logger.Error("illustration generation failed", "chapter_id", chapterID, "error", err)
		state := s.ctrl.Dispatch(session.SetChapterGenerating{ChapterID: chapterID, Generating: false})
		return state, errors.GenerationFailed("failed to generate image for the chapter", err)
	}

	state := s.ctrl.Dispatch(session.SetChapterImage{
		ChapterID:   chapterID,
		ImageURL:    imageURL,
		ImagePrompt: customPrompt,
	})
	s.logger.Info("chapter illustration attached", "chapter_id", chapterID)
	return state, nil
}

// SaveCurrent persists the story being edited and merges the assigned
// storage ID back into the session.
func (s *StoryService) SaveCurrent(ctx context.Context) (string, error) {
	story := s.ctrl.CurrentStory()
	if story == nil {
		return "", errors.Validation("no story is currently loaded")
	}

	storageID, err := s.store.SaveStory(ctx, story)
	if err != nil {
		return "", s.repositoryError("save failed", err)
	}

	s.ctrl.Dispatch(session.SetStorageID{ID: storageID})
	return storageID, nil
}

// LoadStory reads a saved story into the session and moves the wizard to
// the editing step.
func (s *StoryService) LoadStory(ctx context.Context, storageID string) (session.State, error) {
	story, err := s.store.GetStory(ctx, storageID)
	if err != nil {
		return s.ctrl.Snapshot(), s.repositoryError("load failed", err)
	}

	s.ctrl.Dispatch(session.SetStory{Story: story})
	s.trans.TransitionTo(ctx, domain.StepEditing)
	return s.ctrl.Snapshot(), nil
}

// ListStories returns summaries of every saved story, newest first.
func (s *StoryService) ListStories(ctx context.Context) ([]store.StorySummary, error) {
	summaries, err := s.store.ListStories(ctx)
	if err != nil {
		return nil, s.repositoryError("list failed", err)
	}
	return summaries, nil
}

// DeleteStory removes a saved story. If it is the one being edited, its
// storage ID is detached so a later save re-inserts it.
func (s *StoryService) DeleteStory(ctx context.Context, storageID string) error {
	if err := s.store.DeleteStory(ctx, storageID); err != nil {
		return s.repositoryError("delete failed", err)
	}

	if story := s.ctrl.CurrentStory(); story != nil && story.StorageID == storageID {
		s.ctrl.Dispatch(session.SetStorageID{ID: ""})
	}
	return nil
}

// TransitionTo requests a wizard step change through the coordinator.
// Returns the resulting state and whether the change was applied.
func (s *StoryService) TransitionTo(ctx context.Context, step domain.Step) (session.State, bool) {
	applied := s.trans.TransitionTo(ctx, step)
	return s.ctrl.Snapshot(), applied
}

// Reset discards the session story and returns to the prompting step.
func (s *StoryService) Reset() session.State {
	return s.ctrl.Dispatch(session.Reset{})
}

// RandomPrompt picks a prompt suggestion, excluding the one served last so
// repeated clicks always feel fresh.
func (s *StoryService) RandomPrompt(ctx context.Context, genre domain.Genre, audience domain.Audience) (*domain.StoryPrompt, error) {
	state := s.ctrl.Snapshot()

	prompt, err := s.store.GetRandomPrompt(ctx, genre, audience, state.LastPromptID)
	if err != nil {
		return nil, s.repositoryError("prompt suggestion failed", err)
	}

	s.ctrl.Dispatch(session.SetLastPromptID{ID: prompt.ID})
	return prompt, nil
}

// EnhancePrompt expands a story idea. Best effort: on upstream failure the
// original prompt comes back unchanged rather than an error.
func (s *StoryService) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.Validation("prompt must not be empty")
	}

	enhanced, err := s.generator.EnhancePrompt(ctx, prompt)
	if err != nil {
		s.logger.Warn("prompt enhancement failed, returning original", "error", err)
		return prompt, nil
	}
	return enhanced, nil
}

// SetTheme persists the theme preference and applies it to the session.
func (s *StoryService) SetTheme(theme domain.Theme) (session.State, error) {
	if !theme.Valid() {
		return s.ctrl.Snapshot(), errors.Validation("unknown theme")
	}
	if err := s.prefs.SetTheme(theme); err != nil {
		return s.ctrl.Snapshot(), errors.Internal("failed to persist theme", err)
	}
	return s.ctrl.Dispatch(session.SetTheme{Theme: theme}), nil
}

// ExportMarkdown renders the current story as a Markdown document.
func (s *StoryService) ExportMarkdown(ctx context.Context) (string, error) {
	story := s.ctrl.CurrentStory()
	if story == nil {
		return "", errors.Validation("no story is currently loaded")
	}

	md, err := format.StoryToMarkdown(story)
	if err != nil {
		return "", errors.Internal("failed to render story as markdown", err)
	}
	return md, nil
}

// ExportStoredMarkdown renders a saved story as a Markdown document without
// touching the session.
func (s *StoryService) ExportStoredMarkdown(ctx context.Context, storageID string) (string, error) {
	story, err := s.store.GetStory(ctx, storageID)
	if err != nil {
		return "", s.repositoryError("export failed", err)
	}

	md, err := format.StoryToMarkdown(story)
	if err != nil {
		return "", errors.Internal("failed to render story as markdown", err)
	}
	return md, nil
}

// CheckConnection verifies the generation backend is reachable.
func (s *StoryService) CheckConnection(ctx context.Context) error {
	if err := s.generator.CheckConnection(ctx); err != nil {
		return errors.GenerationFailed("generation backend unreachable", err)
	}
	return nil
}

// requireChapter returns the addressed chapter from the current story.
func (s *StoryService) requireChapter(chapterID string) (*domain.Chapter, error) {
	story := s.ctrl.CurrentStory()
	if story == nil {
		return nil, errors.Validation("no story is currently loaded")
	}
	chapter := story.FindChapter(chapterID)
	if chapter == nil {
		return nil, errors.NotFound("chapter not found")
	}
	return chapter, nil
}

// repositoryError converts storage errors to domain errors, preserving
// not-found and validation distinctions.
func (s *StoryService) repositoryError(message string, err error) error {
	switch {
	case errors.Is(err, store.ErrStoryNotFound):
		return errors.NotFound("story not found")
	case errors.Is(err, store.ErrEmptyTitle):
		return errors.Validation("story title must not be empty")
	default:
		s.logger.Error(message, "error", err)
		return errors.Repository(message, err)
	}
}
