// internal/utils/jsonextract_test.go
package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"num_screens": 5}`,
			expected: `{"num_screens": 5}`,
		},
		{
			name:     "markdown fence",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "strips byte order mark and zero-width runes",
			input:    "\ufeff```json\n{\"a\": \u200b1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "prose around object",
			input:    "Here is the metadata you asked for:\n{\"a\": 1}\nLet me know if you need changes.",
			expected: `{"a": 1}`,
		},
		{
			name:     "array",
			input:    "The screens: [1, 2, 3] done",
			expected: `[1, 2, 3]`,
		},
		{
			name:     "nested objects",
			input:    `{"outer": {"inner": [1, {"deep": true}]}} trailing`,
			expected: `{"outer": {"inner": [1, {"deep": true}]}}`,
		},
		{
			name:     "braces inside string literal",
			input:    `{"caption": "use {curly} braces \" carefully"} extra`,
			expected: `{"caption": "use {curly} braces \" carefully"}`,
		},
		{
			name:     "no json at all",
			input:    "Sorry, I cannot help with that.",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "truncated object falls back to last brace",
			input:    `{"screens": [{"screen_number": 1}`,
			expected: `{"screens": [{"screen_number": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONBlockUnmarshals(t *testing.T) {
	reply := "Sure! Here is the result:\n```json\n{\n  \"num_screens\": 4,\n  \"aspect_ratio\": \"16:9\"\n}\n```\nHope that helps."

	block := ExtractJSONBlock(reply)
	require.NotEmpty(t, block)

	var parsed struct {
		NumScreens  int    `json:"num_screens"`
		AspectRatio string `json:"aspect_ratio"`
	}
	require.NoError(t, json.Unmarshal([]byte(block), &parsed))
	assert.Equal(t, 4, parsed.NumScreens)
	assert.Equal(t, "16:9", parsed.AspectRatio)
}
