// internal/models/project.go
package models

import (
	"strings"
	"time"
)

// CourseInfo describes the course or program the scenario belongs to.
type CourseInfo struct {
	CourseTitle       string `json:"course_title"`
	CourseDescription string `json:"course_description"`
	CourseObjectives  string `json:"course_objectives,omitempty"`
}

// ProjectInfo describes the module the scenario should focus on.
type ProjectInfo struct {
	ModuleTitle               string `json:"module_title"`
	ModuleDescription         string `json:"module_description,omitempty"`
	KeyConcept                string `json:"key_concept"`
	ExistingChallenge         string `json:"existing_challenge"`
	ProjectLearningObjectives string `json:"project_learning_objectives,omitempty"`
}

// AudienceInfo describes who the learners are.
type AudienceInfo struct {
	ProfessionalDomain string `json:"professional_domain"`
	EducationLevel     string `json:"education_level,omitempty"`
	Prerequisites      string `json:"prerequisites,omitempty"`
	ClassSize          int    `json:"class_size,omitempty"`
}

// ProjectContext is the persisted input record for a course/module pair.
// Its (course_title, module_title) pair is the natural key that maps onto
// the on-disk project directory. Mutated only by the setup stage and the
// optional-details panel; everything downstream reads it.
type ProjectContext struct {
	Course         CourseInfo   `json:"course"`
	Project        ProjectInfo  `json:"project"`
	Audience       AudienceInfo `json:"audience"`
	AdditionalInfo string       `json:"additional_info,omitempty"`
	LastUpdated    time.Time    `json:"last_updated,omitempty"`
}

// Validate reports the required setup fields that are still empty.
func (p *ProjectContext) Validate() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"course_title", p.Course.CourseTitle},
		{"course_description", p.Course.CourseDescription},
		{"module_title", p.Project.ModuleTitle},
		{"key_concept", p.Project.KeyConcept},
		{"existing_challenge", p.Project.ExistingChallenge},
		{"professional_domain", p.Audience.ProfessionalDomain},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
