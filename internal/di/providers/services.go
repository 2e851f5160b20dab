package providers

import (
	"github.com/samber/do/v2"

	"github.com/storybookapp/storybook-server/internal/logger"
	"github.com/storybookapp/storybook-server/internal/service"
	"github.com/storybookapp/storybook-server/internal/session"
)

// ProvideSessionController provides the in-memory session state controller.
func ProvideSessionController(i do.Injector) (*session.Controller, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return session.NewController(log.Logger), nil
}

// ProvideTransitioner provides the wizard step transition coordinator.
func ProvideTransitioner(i do.Injector) (*session.Transitioner, error) {
	ctrl := do.MustInvoke[*session.Controller](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return session.NewTransitioner(ctrl, storeHandle.Store, log.Logger), nil
}

// ProvideStoryService provides the story orchestration service.
func ProvideStoryService(i do.Injector) (*service.StoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	generator := do.MustInvoke[*GeneratorHandle](i)
	ctrl := do.MustInvoke[*session.Controller](i)
	trans := do.MustInvoke[*session.Transitioner](i)
	prefsHandle := do.MustInvoke[*PrefsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStoryService(storeHandle.Store, generator, ctrl, trans, prefsHandle.Store, log.Logger), nil
}
