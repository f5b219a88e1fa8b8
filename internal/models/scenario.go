// internal/models/scenario.go
package models

// ScenarioCandidateSet holds the three alternative scenario summaries offered
// for selection, the index of the user's pick, and the edited/refined final
// text. SelectedScenario is nil until the user picks; FinalScenario is only
// meaningful once a selection exists.
type ScenarioCandidateSet struct {
	GeneratedScenarios []string `json:"generated_scenarios"`
	SelectedScenario   *int     `json:"selected_scenario"`
	FinalScenario      string   `json:"final_scenario,omitempty"`
}

// ScenarioSummary is the persisted shape of scenario_descriptions.json: the
// final scenario text alone. Tools that only need the chosen scenario read
// this; the full candidate set lives in its own document.
type ScenarioSummary struct {
	ScenarioDescription string `json:"scenario_description"`
}

// HasSelection reports whether the user has picked a candidate.
func (c *ScenarioCandidateSet) HasSelection() bool {
	return c != nil && c.SelectedScenario != nil &&
		*c.SelectedScenario >= 0 && *c.SelectedScenario < len(c.GeneratedScenarios)
}

// Actor is a named character whose appearance string is kept verbatim across
// every image prompt so the generated screens stay visually consistent.
type Actor struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Purpose    string `json:"purpose"`
	Appearance string `json:"appearance"`
}

// ScenarioMetadata carries the structured facts extracted from the final
// scenario: screen count, aspect ratio, visual style directive and the actor
// list. One main actor plus at most one supporting actor is the expected
// shape, but any count is tolerated for hand editing.
type ScenarioMetadata struct {
	NumScreens  int     `json:"num_screens"`
	AspectRatio string  `json:"aspect_ratio"`
	VisualStyle string  `json:"visual_style,omitempty"`
	Actors      []Actor `json:"actors"`
}

// Normalize clamps NumScreens into the supported 1..20 range and fills the
// defaults the original tool used for empty ratio/style fields.
func (m *ScenarioMetadata) Normalize() {
	if m.NumScreens < 1 {
		m.NumScreens = DefaultNumScreens
	}
	if m.NumScreens > MaxNumScreens {
		m.NumScreens = MaxNumScreens
	}
	if m.AspectRatio == "" {
		m.AspectRatio = DefaultAspectRatio
	}
	if m.VisualStyle == "" {
		m.VisualStyle = DefaultVisualStyle
	}
}

const (
	DefaultNumScreens = 5
	MaxNumScreens     = 20

	DefaultAspectRatio = "16:9"

	DefaultVisualStyle = "A vibrant, semi-realistic digital illustration in a modern vector art style, " +
		"with soft gradients, clean lines, and cinematic lighting."
)
