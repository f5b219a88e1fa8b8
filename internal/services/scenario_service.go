// internal/services/scenario_service.go
package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"scenario-builder/internal/models"
)

// ScenarioCandidateCount is the fixed number of candidate summaries offered
// for selection.
const ScenarioCandidateCount = 3

var scenarioMarkers = []string{"SCENARIO 1:", "SCENARIO 2:", "SCENARIO 3:"}

// placeholderScenarios are returned when generation fails outright, keeping
// the candidate list a valid selection target.
var placeholderScenarios = []string{
	"Scenario generation failed. Please try again or contact support.",
	"Unable to generate scenario at this time.",
	"Error occurred during scenario generation.",
}

const paddingScenario = "Additional scenario could not be generated."

// ScenarioService produces and refines the candidate scenario summaries.
type ScenarioService struct {
	gateway Gateway
	logger  *zap.Logger
}

func NewScenarioService(gateway Gateway, logger *zap.Logger) *ScenarioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScenarioService{gateway: gateway, logger: logger}
}

// GenerateScenarios asks the model for three candidate summaries. The result
// always has exactly ScenarioCandidateCount entries: parse shortfalls are
// padded, surplus is truncated, and a failed call degrades to placeholder
// strings instead of an error so the session can continue.
func (s *ScenarioService) GenerateScenarios(ctx context.Context, projectContext *models.ProjectContext) []string {
	text, err := s.gateway.GenerateText(ctx, TextRequest{
		Prompt:       buildScenarioPrompt(projectContext),
		SystemPrompt: systemPromptGeneral,
		MaxTokens:    maxTokensShort,
	})
	if err != nil {
		s.logger.Warn("scenario generation failed, using placeholders", zap.Error(err))
		result := make([]string, ScenarioCandidateCount)
		copy(result, placeholderScenarios)
		return result
	}

	return ParseScenarioCandidates(text)
}

// ParseScenarioCandidates extracts the candidate summaries from model prose.
// Each candidate starts at a "SCENARIO n:" marker; subsequent non-empty
// lines are folded into the running candidate.
func ParseScenarioCandidates(text string) []string {
	var scenarios []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			scenarios = append(scenarios, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if marker := matchScenarioMarker(line); marker != "" {
			flush()
			current.WriteString(strings.TrimSpace(strings.TrimPrefix(line, marker)))
			continue
		}

		if current.Len() > 0 && line != "" {
			current.WriteString(" ")
			current.WriteString(line)
		}
	}
	flush()

	for len(scenarios) < ScenarioCandidateCount {
		scenarios = append(scenarios, paddingScenario)
	}
	return scenarios[:ScenarioCandidateCount]
}

func matchScenarioMarker(line string) string {
	for _, marker := range scenarioMarkers {
		if strings.HasPrefix(line, marker) {
			return marker
		}
	}
	return ""
}

// RefineScenario rewrites the current scenario text per free-form
// instructions. Unlike candidate generation this surfaces the error: the
// caller keeps the current text untouched on failure.
func (s *ScenarioService) RefineScenario(ctx context.Context, projectContext *models.ProjectContext, currentScenario, instructions string) (string, error) {
	text, err := s.gateway.GenerateText(ctx, TextRequest{
		Prompt:       buildRefinePrompt(projectContext, currentScenario, instructions),
		SystemPrompt: systemPromptGeneral,
		MaxTokens:    maxTokensShort,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
