package providers

import (
	"context"
	"sync"

	"github.com/samber/do/v2"

	"github.com/storybookapp/storybook-server/internal/ai"
	"github.com/storybookapp/storybook-server/internal/config"
	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/logger"
	"github.com/storybookapp/storybook-server/internal/prefs"
)

// GeneratorHandle delegates to the active generation backend. The backend is
// swapped live when the stored API key changes: a key flips the app from
// demo mode to the real gateway and back without a restart.
type GeneratorHandle struct {
	mu      sync.RWMutex
	current ai.Generator
}

var _ ai.Generator = (*GeneratorHandle)(nil)

// GenerateStory implements ai.Generator.
func (h *GeneratorHandle) GenerateStory(ctx context.Context, prompt string, genre domain.Genre, audience domain.Audience) (*domain.Story, error) {
	return h.generator().GenerateStory(ctx, prompt, genre, audience)
}

// GenerateChapterImage implements ai.Generator.
func (h *GeneratorHandle) GenerateChapterImage(ctx context.Context, chapterContent, customPrompt string) (string, error) {
	return h.generator().GenerateChapterImage(ctx, chapterContent, customPrompt)
}

// EnhancePrompt implements ai.Generator.
func (h *GeneratorHandle) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	return h.generator().EnhancePrompt(ctx, prompt)
}

// CheckConnection implements ai.Generator.
func (h *GeneratorHandle) CheckConnection(ctx context.Context) error {
	return h.generator().CheckConnection(ctx)
}

func (h *GeneratorHandle) generator() ai.Generator {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

func (h *GeneratorHandle) swap(g ai.Generator) {
	h.mu.Lock()
	h.current = g
	h.mu.Unlock()
}

// ProvideGenerator provides the story generation gateway. The stored API key
// takes precedence over the environment one; with neither set, the demo
// generator serves canned content.
func ProvideGenerator(i do.Injector) (*GeneratorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	prefsHandle := do.MustInvoke[*PrefsHandle](i)

	build := func(apiKey string) ai.Generator {
		aiCfg := cfg.AI
		if apiKey != "" {
			aiCfg.APIKey = apiKey
		}
		if aiCfg.DemoMode() {
			log.Info("Generation gateway in demo mode")
			return ai.NewDemo(log.Logger)
		}
		client, err := ai.NewClient(aiCfg, log.Logger)
		if err != nil {
			log.Error("Generation gateway unavailable, falling back to demo mode", "error", err)
			return ai.NewDemo(log.Logger)
		}
		log.Info("Generation gateway ready", "model", aiCfg.Model, "image_model", aiCfg.ImageModel)
		return client
	}

	lastKey := prefsHandle.Get().APIKey
	handle := &GeneratorHandle{current: build(lastKey)}

	// Theme edits also fire OnChange; only a key change rebuilds the backend.
	var keyMu sync.Mutex
	prefsHandle.OnChange(func(p prefs.Prefs) {
		keyMu.Lock()
		defer keyMu.Unlock()
		if p.APIKey == lastKey {
			return
		}
		lastKey = p.APIKey
		handle.swap(build(p.APIKey))
	})

	return handle, nil
}
