// internal/services/scenario_service_test.go
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

func testProjectContext() *models.ProjectContext {
	return &models.ProjectContext{
		Course: models.CourseInfo{
			CourseTitle:       "Applied Machine Learning",
			CourseDescription: "Practical ML for working engineers",
		},
		Project: models.ProjectInfo{
			ModuleTitle:       "Model Evaluation",
			KeyConcept:        "precision and recall tradeoffs",
			ExistingChallenge: "learners know basic statistics",
		},
		Audience: models.AudienceInfo{ProfessionalDomain: "software engineering"},
	}
}

func TestParseScenarioCandidates(t *testing.T) {
	t.Run("three clean markers", func(t *testing.T) {
		text := "SCENARIO 1: First summary.\nSCENARIO 2: Second summary.\nSCENARIO 3: Third summary."
		got := ParseScenarioCandidates(text)

		require.Len(t, got, ScenarioCandidateCount)
		assert.Equal(t, "First summary.", got[0])
		assert.Equal(t, "Second summary.", got[1])
		assert.Equal(t, "Third summary.", got[2])
	})

	t.Run("folds continuation lines", func(t *testing.T) {
		text := "SCENARIO 1: Maya leads a review.\nShe finds a flaw in the model.\n\nSCENARIO 2: Second.\nSCENARIO 3: Third."
		got := ParseScenarioCandidates(text)

		assert.Equal(t, "Maya leads a review. She finds a flaw in the model.", got[0])
	})

	t.Run("pads shortfall", func(t *testing.T) {
		got := ParseScenarioCandidates("SCENARIO 1: Only one came back.")

		require.Len(t, got, ScenarioCandidateCount)
		assert.Equal(t, "Only one came back.", got[0])
		assert.Equal(t, paddingScenario, got[1])
		assert.Equal(t, paddingScenario, got[2])
	})

	t.Run("ignores prose before first marker", func(t *testing.T) {
		text := "Here are your scenarios:\n\nSCENARIO 1: A.\nSCENARIO 2: B.\nSCENARIO 3: C."
		got := ParseScenarioCandidates(text)
		assert.Equal(t, "A.", got[0])
	})

	t.Run("empty reply pads fully", func(t *testing.T) {
		got := ParseScenarioCandidates("")
		require.Len(t, got, ScenarioCandidateCount)
		for _, s := range got {
			assert.Equal(t, paddingScenario, s)
		}
	})
}

func TestGenerateScenariosDegradesToPlaceholders(t *testing.T) {
	gateway := new(mockGateway)
	gateway.On("GenerateText", mock.Anything, mock.Anything).
		Return("", errors.New("provider down")).Once()

	service := NewScenarioService(gateway, zap.NewNop())
	got := service.GenerateScenarios(context.Background(), testProjectContext())

	require.Len(t, got, ScenarioCandidateCount)
	assert.Equal(t, placeholderScenarios[0], got[0])
	assert.Equal(t, placeholderScenarios[2], got[2])
	gateway.AssertExpectations(t)
}

func TestGenerateScenariosParsesReply(t *testing.T) {
	gateway := new(mockGateway)
	gateway.On("GenerateText", mock.Anything, mock.MatchedBy(func(req TextRequest) bool {
		return req.SystemPrompt == systemPromptGeneral && req.MaxTokens == maxTokensShort
	})).Return("SCENARIO 1: A.\nSCENARIO 2: B.\nSCENARIO 3: C.", nil).Once()

	service := NewScenarioService(gateway, zap.NewNop())
	got := service.GenerateScenarios(context.Background(), testProjectContext())

	assert.Equal(t, []string{"A.", "B.", "C."}, got)
	gateway.AssertExpectations(t)
}

func TestRefineScenario(t *testing.T) {
	t.Run("trims reply", func(t *testing.T) {
		gateway := new(mockGateway)
		gateway.On("GenerateText", mock.Anything, mock.Anything).
			Return("\n  The refined scenario text.  \n", nil).Once()

		service := NewScenarioService(gateway, zap.NewNop())
		got, err := service.RefineScenario(context.Background(), testProjectContext(), "old text", "make it shorter")

		require.NoError(t, err)
		assert.Equal(t, "The refined scenario text.", got)
	})

	t.Run("surfaces provider error", func(t *testing.T) {
		gateway := new(mockGateway)
		gateway.On("GenerateText", mock.Anything, mock.Anything).
			Return("", errors.New("timeout")).Once()

		service := NewScenarioService(gateway, zap.NewNop())
		_, err := service.RefineScenario(context.Background(), testProjectContext(), "old text", "shorter")
		assert.Error(t, err)
	})
}
