// internal/services/metadata_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"scenario-builder/internal/models"
	"scenario-builder/internal/utils"
)

// MetadataService extracts structured scenario metadata (screen count,
// aspect ratio, actors) from the final scenario text.
type MetadataService struct {
	gateway Gateway
	logger  *zap.Logger
}

func NewMetadataService(gateway Gateway, logger *zap.Logger) *MetadataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataService{gateway: gateway, logger: logger}
}

// GenerateMetadata asks the model for the metadata document and parses the
// first JSON object out of the reply. Any failure returns an error and no
// metadata, so the caller's existing state stays untouched.
func (s *MetadataService) GenerateMetadata(ctx context.Context, projectContext *models.ProjectContext, finalScenario string) (*models.ScenarioMetadata, error) {
	text, err := s.gateway.GenerateText(ctx, TextRequest{
		Prompt:       buildMetadataPrompt(projectContext, finalScenario),
		SystemPrompt: systemPromptMetadata,
		MaxTokens:    maxTokensShort,
	})
	if err != nil {
		return nil, err
	}

	block := utils.ExtractJSONBlock(text)
	if block == "" {
		s.logger.Warn("metadata reply contained no JSON")
		return nil, ErrResponseNotJSON
	}

	var metadata models.ScenarioMetadata
	if err := json.Unmarshal([]byte(block), &metadata); err != nil {
		s.logger.Warn("metadata JSON did not parse", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrResponseNotJSON, err)
	}

	metadata.Normalize()
	return &metadata, nil
}
