// internal/services/prompts_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"scenario-builder/internal/models"
)

func TestBuildImagePrompt(t *testing.T) {
	screens := []models.Screen{
		{ScreenNumber: 1, ImageDescription: "A bright open-plan office"},
		{ScreenNumber: 2, ImageDescription: "A tense meeting room"},
	}
	metadata := &models.ScenarioMetadata{
		AspectRatio: "16:9",
		VisualStyle: "flat vector illustration",
		Actors: []models.Actor{
			{Name: "Amara", Appearance: "a woman in her 40s with short gray hair"},
			{Name: "Jon", Appearance: ""},
		},
	}

	t.Run("first screen has no previous context", func(t *testing.T) {
		prompt := buildImagePrompt(screens, 0, metadata)

		assert.True(t, strings.HasPrefix(prompt, "A bright open-plan office"))
		assert.NotContains(t, prompt, "Previous screen context")
		assert.Contains(t, prompt, "Character appearances for consistency: Amara: a woman in her 40s with short gray hair.")
		assert.Contains(t, prompt, "Style: flat vector illustration.")
		assert.Contains(t, prompt, "Aspect ratio: 16:9.")
	})

	t.Run("later screen carries previous description", func(t *testing.T) {
		prompt := buildImagePrompt(screens, 1, metadata)

		assert.Contains(t, prompt, "Previous screen context for visual consistency: A bright open-plan office.")
	})

	t.Run("actors without appearance are skipped", func(t *testing.T) {
		prompt := buildImagePrompt(screens, 0, metadata)
		assert.NotContains(t, prompt, "Jon")
	})

	t.Run("no actors drops the consistency clause", func(t *testing.T) {
		bare := &models.ScenarioMetadata{AspectRatio: "1:1", VisualStyle: "photo"}
		prompt := buildImagePrompt(screens, 0, bare)
		assert.NotContains(t, prompt, "Character appearances")
	})
}

func TestBuildScreensPrompt(t *testing.T) {
	projectContext := testProjectContext()

	t.Run("lists actors", func(t *testing.T) {
		metadata := &models.ScenarioMetadata{
			NumScreens: 5,
			Actors: []models.Actor{
				{Name: "Priya", Role: "Team Lead", Purpose: "Drives the decision"},
			},
		}
		prompt := buildScreensPrompt(projectContext, "scenario text", metadata)

		assert.Contains(t, prompt, "Create 5 sequential screens")
		assert.Contains(t, prompt, "- Priya (Team Lead): Drives the decision")
		assert.Contains(t, prompt, projectContext.Project.KeyConcept)
	})

	t.Run("empty actor list", func(t *testing.T) {
		metadata := &models.ScenarioMetadata{NumScreens: 3}
		prompt := buildScreensPrompt(projectContext, "scenario text", metadata)

		assert.Contains(t, prompt, "No actors are needed for this scenario.")
	})
}

func TestBuildScenarioPromptIncludesInputs(t *testing.T) {
	projectContext := testProjectContext()
	prompt := buildScenarioPrompt(projectContext)

	assert.Contains(t, prompt, "SCENARIO 1:")
	assert.Contains(t, prompt, projectContext.Course.CourseTitle)
	assert.Contains(t, prompt, projectContext.Project.KeyConcept)
	assert.Contains(t, prompt, projectContext.Audience.ProfessionalDomain)
}
