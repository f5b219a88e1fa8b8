// internal/models/stage.go
package models

// Stage is one node in the fixed forward sequence of the wizard.
type Stage int

const (
	StageSetup Stage = iota
	StageReview
	StageScenarioSelection
	StageMetadataExtraction
	StageScreenScripting
	StageImageSynthesis
	StageCompositing
)

// String returns the stage name used in logs and API payloads.
func (s Stage) String() string {
	switch s {
	case StageSetup:
		return "setup"
	case StageReview:
		return "review"
	case StageScenarioSelection:
		return "scenario_selection"
	case StageMetadataExtraction:
		return "metadata_extraction"
	case StageScreenScripting:
		return "screen_scripting"
	case StageImageSynthesis:
		return "image_synthesis"
	case StageCompositing:
		return "compositing"
	default:
		return "unknown"
	}
}

// MarshalText makes Stage serialize as its name inside JSON documents.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts a stage name; unknown names default to setup so that
// tolerant loads never fail on a stage field.
func (s *Stage) UnmarshalText(text []byte) error {
	switch string(text) {
	case "review":
		*s = StageReview
	case "scenario_selection":
		*s = StageScenarioSelection
	case "metadata_extraction":
		*s = StageMetadataExtraction
	case "screen_scripting":
		*s = StageScreenScripting
	case "image_synthesis":
		*s = StageImageSynthesis
	case "compositing":
		*s = StageCompositing
	default:
		*s = StageSetup
	}
	return nil
}
