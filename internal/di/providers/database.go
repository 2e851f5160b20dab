package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storybookapp/storybook-server/internal/config"
	"github.com/storybookapp/storybook-server/internal/logger"
	"github.com/storybookapp/storybook-server/internal/media/fetch"
	"github.com/storybookapp/storybook-server/internal/prefs"
	"github.com/storybookapp/storybook-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the story database.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	fetcher := fetch.New(log.Logger)

	dbPath := cfg.Data.DatabasePath()
	db, err := store.New(dbPath, log.Logger, fetcher)
	if err != nil {
		return nil, err
	}

	// Seed the prompt catalog up front so the first suggestion request
	// doesn't pay for it.
	if err := db.SeedPrompts(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// PrefsHandle wraps the preference store with shutdown capability.
type PrefsHandle struct {
	*prefs.Store
}

// Shutdown implements do.Shutdownable.
func (h *PrefsHandle) Shutdown() error {
	return h.Close()
}

// ProvidePrefs provides the preference store with hot reload enabled.
func ProvidePrefs(i do.Injector) (*PrefsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	prefStore, err := prefs.New(cfg.Data.PrefsPath(), log.Logger)
	if err != nil {
		return nil, err
	}
	if err := prefStore.Watch(); err != nil {
		log.Warn("Preference hot reload unavailable", "error", err)
	}

	return &PrefsHandle{Store: prefStore}, nil
}
