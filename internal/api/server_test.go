package api

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storybookapp/storybook-server/internal/ai"
	"github.com/storybookapp/storybook-server/internal/config"
	"github.com/storybookapp/storybook-server/internal/prefs"
	"github.com/storybookapp/storybook-server/internal/service"
	"github.com/storybookapp/storybook-server/internal/session"
	"github.com/storybookapp/storybook-server/internal/store"
)

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer creates a server backed by a temp database and the
// instant demo generator.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.NoopFetcher{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	prefStore, err := prefs.New(filepath.Join(tmpDir, "prefs.json"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = prefStore.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	generator := ai.NewDemoInstant(nil)
	ctrl := session.NewController(nil)
	trans := session.NewTransitionerInstant(ctrl, st, nil)
	storyService := service.NewStoryService(st, generator, ctrl, trans, prefStore, logger)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name:        "Test Server",
			Port:        "8080",
			CORSOrigins: []string{"*"},
		},
	}

	s := NewServer(cfg, st, storyService, prefStore, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// decodeBody unmarshals a JSON response body into dest.
func decodeBody(t *testing.T, data []byte, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, dest))
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	decodeBody(t, resp.Body.Bytes(), &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["generator"].Status)
}

func TestGenerateStory(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/stories/generate", map[string]any{
		"prompt":   "a dragon who collects moonlight",
		"genre":    "Fantasy",
		"audience": "Children (3-8)",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var sess SessionResponse
	decodeBody(t, resp.Body.Bytes(), &sess)
	require.NotNil(t, sess.Story)
	assert.Equal(t, "Luna and the Crystal Dragon", sess.Story.Title)
	assert.Equal(t, 2, sess.Step, "generation moves the wizard to editing")
	assert.NotEmpty(t, sess.Story.StorageID, "forward transition auto-saves")
	assert.GreaterOrEqual(t, len(sess.Story.Chapters), 5)
}

func TestGenerateStory_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/stories/generate", map[string]any{
		"prompt":   "idea",
		"genre":    "Noir",
		"audience": "Children (3-8)",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var apiErr APIError
	decodeBody(t, resp.Body.Bytes(), &apiErr)
	assert.Equal(t, "VALIDATION", apiErr.Code)
}

func TestSessionLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	// Fresh session starts at the prompting step.
	resp := ts.api.Get("/api/v1/session")
	require.Equal(t, http.StatusOK, resp.Code)
	var sess SessionResponse
	decodeBody(t, resp.Body.Bytes(), &sess)
	assert.Equal(t, 1, sess.Step)
	assert.Nil(t, sess.Story)

	resp = ts.api.Post("/api/v1/stories/generate", map[string]any{
		"prompt":   "a lighthouse keeper's secret",
		"genre":    "Mystery",
		"audience": "Adults",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp.Body.Bytes(), &sess)
	chapterID := sess.Story.Chapters[0].ID

	// Edit a chapter.
	resp = ts.api.Patch("/api/v1/session/chapters/"+chapterID, map[string]any{
		"content": "<p>Rewritten opening.</p>",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp.Body.Bytes(), &sess)
	assert.Equal(t, "<p>Rewritten opening.</p>", sess.Story.Chapters[0].Content)

	// Editing an unknown chapter is a 404.
	resp = ts.api.Patch("/api/v1/session/chapters/ch-nope", map[string]any{
		"content": "<p>x</p>",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Illustrate the edited chapter.
	resp = ts.api.Post("/api/v1/session/chapters/"+chapterID+"/illustration", map[string]any{
		"custom_prompt": "watercolor lighthouse at dusk",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp.Body.Bytes(), &sess)
	assert.Contains(t, sess.Story.Chapters[0].ImageURL, "data:image/")
	assert.False(t, sess.Story.Chapters[0].IsGeneratingImage)

	// Move to previewing: forward, so the edit is persisted.
	resp = ts.api.Post("/api/v1/session/step", map[string]any{"step": 3})
	require.Equal(t, http.StatusOK, resp.Code)
	var transition TransitionStepResponse
	decodeBody(t, resp.Body.Bytes(), &transition)
	assert.True(t, transition.Applied)
	assert.Equal(t, 3, transition.Session.Step)

	// Reset clears the story but keeps the library intact. Decode into a
	// fresh value: the story field is omitted from the response, and
	// unmarshalling into the reused struct would keep the stale pointer.
	resp = ts.api.Post("/api/v1/session/reset")
	require.Equal(t, http.StatusOK, resp.Code)
	var afterReset SessionResponse
	decodeBody(t, resp.Body.Bytes(), &afterReset)
	assert.Nil(t, afterReset.Story)
	assert.Equal(t, 1, afterReset.Step)

	resp = ts.api.Get("/api/v1/stories")
	require.Equal(t, http.StatusOK, resp.Code)
	var list ListStoriesResponse
	decodeBody(t, resp.Body.Bytes(), &list)
	require.Len(t, list.Stories, 1)
	assert.Equal(t, list.Stories[0].ChapterCount, 5)
}

func TestTransitionStep_InvalidStep(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/session/step", map[string]any{"step": 7})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var apiErr APIError
	decodeBody(t, resp.Body.Bytes(), &apiErr)
	assert.Equal(t, "VALIDATION", apiErr.Code)
}

func TestStoryLibrary(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/stories/generate", map[string]any{
		"prompt":   "a paper boat's voyage",
		"genre":    "Fantasy",
		"audience": "Children (3-8)",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var sess SessionResponse
	decodeBody(t, resp.Body.Bytes(), &sess)
	storageID := sess.Story.StorageID

	// Explicit save returns the same storage ID.
	resp = ts.api.Post("/api/v1/stories/save")
	require.Equal(t, http.StatusOK, resp.Code)
	var saved SaveStoryResponse
	decodeBody(t, resp.Body.Bytes(), &saved)
	assert.Equal(t, storageID, saved.StorageID)

	// Loading a story replaces the session.
	ts.api.Post("/api/v1/session/reset")
	resp = ts.api.Get("/api/v1/stories/" + storageID)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp.Body.Bytes(), &sess)
	assert.Equal(t, storageID, sess.Story.StorageID)
	assert.Equal(t, 2, sess.Step)

	resp = ts.api.Get("/api/v1/stories/sty-nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Export renders Markdown.
	resp = ts.api.Get("/api/v1/stories/" + storageID + "/export")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, resp.Body.String(), "# Luna and the Crystal Dragon")

	// Delete removes the story and detaches the session binding.
	resp = ts.api.Delete("/api/v1/stories/" + storageID)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Delete("/api/v1/stories/" + storageID)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/stories")
	require.Equal(t, http.StatusOK, resp.Code)
	var list ListStoriesResponse
	decodeBody(t, resp.Body.Bytes(), &list)
	assert.Empty(t, list.Stories)
}

func TestSaveStory_NoSession(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/stories/save")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var apiErr APIError
	decodeBody(t, resp.Body.Bytes(), &apiErr)
	assert.Equal(t, "VALIDATION", apiErr.Code)
}

func TestRandomPrompt(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/prompts/random", map[string]any{
		"genre":    "Fantasy",
		"audience": "Children (3-8)",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var prompt PromptResponse
	decodeBody(t, resp.Body.Bytes(), &prompt)
	assert.NotEmpty(t, prompt.ID)
	assert.NotEmpty(t, prompt.Prompt)

	// The next draw never repeats the previous suggestion.
	resp = ts.api.Post("/api/v1/prompts/random", map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code)
	var next PromptResponse
	decodeBody(t, resp.Body.Bytes(), &next)
	assert.NotEqual(t, prompt.ID, next.ID)

	resp = ts.api.Post("/api/v1/prompts/random", map[string]any{"genre": "Noir"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEnhancePrompt(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/prompts/enhance", map[string]any{
		"prompt": "a cat who paints",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var enhanced EnhancePromptResponse
	decodeBody(t, resp.Body.Bytes(), &enhanced)
	assert.Equal(t, "a cat who paints", enhanced.Original)
	assert.NotEmpty(t, enhanced.Enhanced)
}

func TestPreferences(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/preferences")
	require.Equal(t, http.StatusOK, resp.Code)
	var p PreferencesResponse
	decodeBody(t, resp.Body.Bytes(), &p)
	assert.Equal(t, "flash-era", p.Theme)
	assert.False(t, p.APIKeySet)

	resp = ts.api.Put("/api/v1/preferences", map[string]any{
		"theme":   "flash-era-light",
		"api_key": "sk-test",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp.Body.Bytes(), &p)
	assert.Equal(t, "flash-era-light", p.Theme)
	assert.True(t, p.APIKeySet)

	resp = ts.api.Put("/api/v1/preferences", map[string]any{"theme": "neon"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
