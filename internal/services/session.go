// internal/services/session.go
package services

import (
	"github.com/google/uuid"

	"scenario-builder/internal/models"
)

// Session is the complete in-flight state of one wizard run. It is an
// explicit value owned by the caller; the controller mutates it but keeps no
// state of its own, so tests and the API layer can hold as many sessions as
// they like.
type Session struct {
	ID    string       `json:"id"`
	Stage models.Stage `json:"stage"`

	Context  *models.ProjectContext       `json:"context"`
	Scenario *models.ScenarioCandidateSet `json:"scenario"`
	Metadata *models.ScenarioMetadata     `json:"metadata"`
	Screens  []models.Screen              `json:"screens"`
	Images   []models.GeneratedImage      `json:"images"`

	// CurrentScreen is the image-synthesis cursor.
	CurrentScreen int `json:"current_screen"`

	// Regeneration flags. Armed when a stage is entered without usable
	// data, or explicitly by a regenerate command. Consumed by the
	// corresponding generate call.
	ScenariosNeedGeneration bool `json:"scenarios_need_generation"`
	MetadataNeedGeneration  bool `json:"metadata_need_generation"`
	ScreensNeedGeneration   bool `json:"screens_need_generation"`

	// CompositedDir is set once preview compositing has run.
	CompositedDir string `json:"composited_dir,omitempty"`
}

// NewSession returns a fresh session at the setup stage.
func NewSession() *Session {
	return &Session{
		ID:                      uuid.NewString(),
		Stage:                   models.StageSetup,
		Context:                 &models.ProjectContext{},
		Scenario:                &models.ScenarioCandidateSet{},
		Metadata:                &models.ScenarioMetadata{},
		ScenariosNeedGeneration: true,
		MetadataNeedGeneration:  true,
		ScreensNeedGeneration:   true,
	}
}

// Reset returns the session to a blank setup state, keeping only its ID.
func (s *Session) Reset() {
	id := s.ID
	*s = *NewSession()
	s.ID = id
}

// CourseTitle and ModuleTitle identify the on-disk project for this session.
func (s *Session) CourseTitle() string {
	if s.Context == nil {
		return ""
	}
	return s.Context.Course.CourseTitle
}

func (s *Session) ModuleTitle() string {
	if s.Context == nil {
		return ""
	}
	return s.Context.Project.ModuleTitle
}
