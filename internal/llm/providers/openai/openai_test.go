// internal/llm/providers/openai/openai_test.go
package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeForAspectRatio(t *testing.T) {
	tests := []struct {
		ratio    string
		expected string
	}{
		{"1:1", "1024x1024"},
		{"", "1024x1024"},
		{"16:9", "1536x1024"},
		{"9:16", "1024x1536"},
		{"4:3", "1024x1024"},
		{"banana", "1024x1024"},
	}

	for _, tt := range tests {
		t.Run(tt.ratio, func(t *testing.T) {
			assert.Equal(t, tt.expected, SizeForAspectRatio(tt.ratio))
		})
	}
}

func TestInitialize(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		p := &Provider{}
		assert.Error(t, p.Initialize(map[string]string{}))
	})

	t.Run("applies model defaults", func(t *testing.T) {
		p := &Provider{}
		assert.NoError(t, p.Initialize(map[string]string{"api_key": "sk-test"}))
		assert.Equal(t, "gpt-4o-mini", p.defaultModel)
		assert.Equal(t, "gpt-image-1-mini", p.defaultImageModel)
	})

	t.Run("honors configured models", func(t *testing.T) {
		p := &Provider{}
		assert.NoError(t, p.Initialize(map[string]string{
			"api_key":       "sk-test",
			"default_model": "gpt-4.1",
			"image_model":   "gpt-image-1",
		}))
		assert.Equal(t, "gpt-4.1", p.defaultModel)
		assert.Equal(t, "gpt-image-1", p.defaultImageModel)
	})
}
