// internal/storage/path_resolver_test.go
package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain title", "Intro to AI", "Intro_to_AI"},
		{"punctuation stripped", "C++: Advanced!", "C_Advanced"},
		{"hyphen and underscore kept", "unit-3_final", "unit-3_final"},
		{"trailing whitespace trimmed", "Ethics  ", "Ethics"},
		{"unicode stripped", "Café Culture", "Caf_Culture"},
		{"only punctuation falls back", "!!!", "unknown_course"},
		{"empty falls back", "", "unknown_course"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input, FallbackCourseSlug))
		})
	}
}

func TestResolveProjectDir(t *testing.T) {
	dir := ResolveProjectDir("Data Science 101", "Module 2: Regression")
	assert.Equal(t, filepath.Join("Data_Science_101", "Module_2_Regression"), dir)

	// Deterministic: the same titles always map to the same directory.
	assert.Equal(t, dir, ResolveProjectDir("Data Science 101", "Module 2: Regression"))

	assert.Equal(t, filepath.Join(FallbackCourseSlug, FallbackModuleSlug), ResolveProjectDir("", ""))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Data Science 101", DisplayName("data_science_101"))
	assert.Equal(t, "Intro", DisplayName("INTRO"))
	assert.Equal(t, "", DisplayName(""))
}
