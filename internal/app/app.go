// internal/app/app.go
package app

import (
	"fmt"

	"go.uber.org/zap"

	"scenario-builder/internal/config"
	"scenario-builder/internal/di"
	"scenario-builder/internal/services"
	"scenario-builder/internal/storage"

	// Provider registration.
	_ "scenario-builder/internal/llm/providers/openai"
	_ "scenario-builder/internal/llm/providers/openrouter"
)

// InitServices builds the domain services in dependency order and registers
// them in the DI container. The router pulls them back out by name.
func InitServices(cfg *config.Config, logger *zap.Logger) error {
	container := di.GetContainer()

	store, err := storage.NewProjectStore(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("creating project store: %w", err)
	}
	container.Register("store", store)

	gateway := services.NewGenerationService(cfg.LLMProvider, cfg.LLMConfig(), logger)
	container.Register("gateway", gateway)

	scenarioService := services.NewScenarioService(gateway, logger)
	metadataService := services.NewMetadataService(gateway, logger)
	screenService := services.NewScreenService(gateway, logger)
	imageService := services.NewImageService(gateway, store, logger)

	compositor, err := services.NewCompositorService(store, logger)
	if err != nil {
		return fmt.Errorf("creating compositor: %w", err)
	}
	container.Register("compositor", compositor)

	controller := services.NewStageController(
		store,
		scenarioService,
		metadataService,
		screenService,
		imageService,
		compositor,
		logger,
	)
	container.Register("controller", controller)

	return nil
}
