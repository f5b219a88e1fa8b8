// internal/services/screen_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"scenario-builder/internal/models"
	"scenario-builder/internal/utils"
)

// ScreenService scripts the per-screen image descriptions and captions for
// the final scenario.
type ScreenService struct {
	gateway Gateway
	logger  *zap.Logger
}

func NewScreenService(gateway Gateway, logger *zap.Logger) *ScreenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreenService{gateway: gateway, logger: logger}
}

// GenerateScreens asks the model for the full screen list as JSON. On any
// failure it returns an error and the caller keeps its current screens.
func (s *ScreenService) GenerateScreens(ctx context.Context, projectContext *models.ProjectContext, finalScenario string, metadata *models.ScenarioMetadata) (*models.ScreenList, error) {
	text, err := s.gateway.GenerateText(ctx, TextRequest{
		Prompt:       buildScreensPrompt(projectContext, finalScenario, metadata),
		SystemPrompt: systemPromptScreens,
		MaxTokens:    maxTokensScreens,
	})
	if err != nil {
		return nil, err
	}

	block := utils.ExtractJSONBlock(text)
	if block == "" {
		s.logger.Warn("screens reply contained no JSON")
		return nil, ErrResponseNotJSON
	}

	var list models.ScreenList
	if err := json.Unmarshal([]byte(block), &list); err != nil {
		s.logger.Warn("screens JSON did not parse", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrResponseNotJSON, err)
	}
	if len(list.Screens) == 0 {
		return nil, fmt.Errorf("%w: no screens in reply", ErrResponseNotJSON)
	}

	list.Reindex()
	return &list, nil
}
