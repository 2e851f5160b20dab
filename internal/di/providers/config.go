// Package providers contains dependency injection providers for the StoryBook server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/storybookapp/storybook-server/internal/config"
	"github.com/storybookapp/storybook-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting StoryBook Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"demo_mode", cfg.AI.DemoMode(),
	)

	return log, nil
}
