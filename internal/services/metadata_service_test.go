// internal/services/metadata_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scenario-builder/internal/models"
)

func TestGenerateMetadata(t *testing.T) {
	t.Run("parses fenced json and normalizes", func(t *testing.T) {
		reply := "Here you go:\n```json\n" +
			`{"num_screens": 4, "aspect_ratio": "9:16", "actors": [{"name": "Priya", "role": "Analyst", "purpose": "Leads the audit", "appearance": "A woman in her 30s"}]}` +
			"\n```"

		gateway := new(mockGateway)
		gateway.On("GenerateText", mock.Anything, mock.MatchedBy(func(req TextRequest) bool {
			return req.SystemPrompt == systemPromptMetadata
		})).Return(reply, nil).Once()

		service := NewMetadataService(gateway, zap.NewNop())
		got, err := service.GenerateMetadata(context.Background(), testProjectContext(), "final scenario text")

		require.NoError(t, err)
		assert.Equal(t, 4, got.NumScreens)
		assert.Equal(t, "9:16", got.AspectRatio)
		require.Len(t, got.Actors, 1)
		assert.Equal(t, "Priya", got.Actors[0].Name)
		// Normalize fills the style default the model does not produce.
		assert.Equal(t, models.DefaultVisualStyle, got.VisualStyle)
	})

	t.Run("no json in reply", func(t *testing.T) {
		gateway := new(mockGateway)
		gateway.On("GenerateText", mock.Anything, mock.Anything).
			Return("I am unable to produce metadata right now.", nil).Once()

		service := NewMetadataService(gateway, zap.NewNop())
		got, err := service.GenerateMetadata(context.Background(), testProjectContext(), "scenario")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrResponseNotJSON)
	})

	t.Run("malformed json in reply", func(t *testing.T) {
		gateway := new(mockGateway)
		gateway.On("GenerateText", mock.Anything, mock.Anything).
			Return(`{"num_screens": "not a number"}`, nil).Once()

		service := NewMetadataService(gateway, zap.NewNop())
		got, err := service.GenerateMetadata(context.Background(), testProjectContext(), "scenario")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrResponseNotJSON)
	})

	t.Run("provider error passes through", func(t *testing.T) {
		gateway := new(mockGateway)
		gateway.On("GenerateText", mock.Anything, mock.Anything).
			Return("", errors.New("rate limited")).Once()

		service := NewMetadataService(gateway, zap.NewNop())
		got, err := service.GenerateMetadata(context.Background(), testProjectContext(), "scenario")

		assert.Nil(t, got)
		assert.Error(t, err)
	})
}
