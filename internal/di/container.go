// Package di provides dependency injection configuration for the StoryBook server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/storybookapp/storybook-server/internal/config"
	"github.com/storybookapp/storybook-server/internal/di/providers"
	"github.com/storybookapp/storybook-server/internal/logger"
	"github.com/storybookapp/storybook-server/internal/service"
	"github.com/storybookapp/storybook-server/internal/session"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvidePrefs)

	// Generation gateway
	do.Provide(injector, providers.ProvideGenerator)

	// Session layer
	do.Provide(injector, providers.ProvideSessionController)
	do.Provide(injector, providers.ProvideTransitioner)

	// Business services
	do.Provide(injector, providers.ProvideStoryService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.PrefsHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.GeneratorHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*session.Controller](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*session.Transitioner](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.StoryService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
