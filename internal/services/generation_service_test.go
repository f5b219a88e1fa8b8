// internal/services/generation_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGenerationServiceNotReady(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		service := NewGenerationService("openai", map[string]string{}, zap.NewNop())

		assert.False(t, service.IsReady())
		assert.Equal(t, "API key not configured", service.ReadyState())

		_, err := service.GenerateText(context.Background(), TextRequest{Prompt: "hi"})
		assert.ErrorIs(t, err, ErrServiceNotReady)

		_, err = service.GenerateImage(context.Background(), "hi", "1:1")
		assert.ErrorIs(t, err, ErrServiceNotReady)
	})

	t.Run("unknown provider", func(t *testing.T) {
		service := NewGenerationService("no-such-provider", map[string]string{"api_key": "k"}, zap.NewNop())

		assert.False(t, service.IsReady())
		assert.Contains(t, service.ReadyState(), "Initialization failed")
	})

	t.Run("empty provider name", func(t *testing.T) {
		service := NewGenerationService("", map[string]string{"api_key": "k"}, zap.NewNop())
		assert.False(t, service.IsReady())
	})
}

func TestGenerationServiceSetProviderUnknown(t *testing.T) {
	service := NewGenerationService("", nil, zap.NewNop())
	err := service.SetProvider("no-such-provider", map[string]string{"api_key": "k"})
	assert.Error(t, err)
	assert.False(t, service.IsReady())
}
