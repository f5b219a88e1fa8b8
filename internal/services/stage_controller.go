// internal/services/stage_controller.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "scenario-builder/internal/errors"
	"scenario-builder/internal/models"
	"scenario-builder/internal/storage"
)

var (
	// ErrNoSelection reports a scenario command that needs a picked
	// candidate before it can run.
	ErrNoSelection = errors.New("no scenario candidate selected")

	// ErrScreensIncomplete reports a preview request while screens still
	// lack generated images.
	ErrScreensIncomplete = errors.New("not every screen has a generated image")

	// ErrNothingToResume reports a resume request for a project with no
	// saved documents.
	ErrNothingToResume = errors.New("no saved project state found")
)

// ValidationError lists the required setup fields that are still empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// StageController drives a Session through the wizard's stages. Every state
// change is an explicit command; the controller owns the transition rules
// and the persistence points, the services own the generation calls.
type StageController struct {
	store      *storage.ProjectStore
	scenarios  *ScenarioService
	metadata   *MetadataService
	screens    *ScreenService
	images     *ImageService
	compositor *CompositorService
	logger     *zap.Logger
}

func NewStageController(
	store *storage.ProjectStore,
	scenarios *ScenarioService,
	metadata *MetadataService,
	screens *ScreenService,
	images *ImageService,
	compositor *CompositorService,
	logger *zap.Logger,
) *StageController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StageController{
		store:      store,
		scenarios:  scenarios,
		metadata:   metadata,
		screens:    screens,
		images:     images,
		compositor: compositor,
		logger:     logger,
	}
}

// Resume loads a saved project and positions the session at the furthest
// stage the on-disk documents support.
func (c *StageController) Resume(courseTitle, moduleTitle string) (*Session, error) {
	courseSlug, moduleSlug, ok := c.store.FindProject(courseTitle, moduleTitle)
	if !ok {
		return nil, ErrNothingToResume
	}

	session := NewSession()

	var projectContext models.ProjectContext
	if found, err := c.store.LoadBySlug(courseSlug, moduleSlug, storage.DocContext, &projectContext); err != nil {
		return nil, fmt.Errorf("loading context: %w", err)
	} else if found {
		session.Context = &projectContext
	} else {
		return nil, ErrNothingToResume
	}

	var scenario models.ScenarioCandidateSet
	if found, err := c.store.LoadBySlug(courseSlug, moduleSlug, storage.DocScenarioCandidates, &scenario); err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	} else if found {
		session.Scenario = &scenario
		session.ScenariosNeedGeneration = false
	} else {
		var summary models.ScenarioSummary
		if found, err := c.store.LoadBySlug(courseSlug, moduleSlug, storage.DocScenarioDescriptions, &summary); err != nil {
			return nil, fmt.Errorf("loading scenario summary: %w", err)
		} else if found && strings.TrimSpace(summary.ScenarioDescription) != "" {
			scenario = candidateSetFromSummary(summary)
			session.Scenario = &scenario
			session.ScenariosNeedGeneration = false
		}
	}

	var metadata models.ScenarioMetadata
	if found, err := c.store.LoadBySlug(courseSlug, moduleSlug, storage.DocScenarioMetadata, &metadata); err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	} else if found {
		metadata.Normalize()
		session.Metadata = &metadata
		session.MetadataNeedGeneration = false
	}

	var screenList models.ScreenList
	if found, err := c.store.LoadBySlug(courseSlug, moduleSlug, storage.DocScreens, &screenList); err != nil {
		return nil, fmt.Errorf("loading screens: %w", err)
	} else if found {
		screenList.Reindex()
		session.Screens = screenList.Screens
		session.ScreensNeedGeneration = false
	}

	var images []models.GeneratedImage
	if _, err := c.store.LoadBySlug(courseSlug, moduleSlug, storage.DocGeneratedImages, &images); err != nil {
		return nil, fmt.Errorf("loading images: %w", err)
	}
	session.Images = models.AlignImages(session.Screens, images)
	session.CurrentScreen = firstUngenerated(session.Images)

	session.Stage = c.store.DetectResumePoint(session.CourseTitle(), session.ModuleTitle())

	c.logger.Info("resumed project",
		zap.String("course", courseSlug),
		zap.String("module", moduleSlug),
		zap.String("stage", session.Stage.String()))

	return session, nil
}

func firstUngenerated(images []models.GeneratedImage) int {
	for i, img := range images {
		if img.ImageB64 == "" {
			return i
		}
	}
	return 0
}

// SubmitSetup validates and persists the project context, then moves the
// session to the review stage.
func (c *StageController) SubmitSetup(session *Session, projectContext *models.ProjectContext) error {
	if missing := projectContext.Validate(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	projectContext.LastUpdated = time.Now().UTC()
	session.Context = projectContext

	if err := c.store.Save(session.CourseTitle(), session.ModuleTitle(), storage.DocContext, projectContext); err != nil {
		return fmt.Errorf("persisting context: %w", err)
	}

	session.Stage = models.StageReview
	return nil
}

// UpdateContext rewrites the persisted context without leaving the current
// stage. Used by the review screen's edit panel.
func (c *StageController) UpdateContext(session *Session, projectContext *models.ProjectContext) error {
	if missing := projectContext.Validate(); len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	projectContext.LastUpdated = time.Now().UTC()
	session.Context = projectContext

	if err := c.store.Save(session.CourseTitle(), session.ModuleTitle(), storage.DocContext, projectContext); err != nil {
		return fmt.Errorf("persisting context: %w", err)
	}
	return nil
}

// ConfirmReview advances from review to scenario selection. Candidate
// generation is always re-armed: the context may have changed since the last
// pass, and the "use existing" command is the only short-circuit.
func (c *StageController) ConfirmReview(session *Session) {
	session.Stage = models.StageScenarioSelection
	session.ScenariosNeedGeneration = true
}

// StartOver resets the session to a blank setup state. Saved documents on
// disk are untouched.
func (c *StageController) StartOver(session *Session) {
	c.logger.Info("session reset", zap.String("session", session.ID))
	session.Reset()
}

// GenerateScenarios produces a fresh candidate set, discarding any previous
// selection. The service degrades to placeholder candidates on provider
// failure, so this never errors.
func (c *StageController) GenerateScenarios(ctx context.Context, session *Session) {
	candidates := c.scenarios.GenerateScenarios(ctx, session.Context)
	session.Scenario = &models.ScenarioCandidateSet{GeneratedScenarios: candidates}
	session.ScenariosNeedGeneration = false
}

// SelectScenario records the picked candidate and seeds the final text from
// it.
func (c *StageController) SelectScenario(session *Session, index int) error {
	if session.Scenario == nil || index < 0 || index >= len(session.Scenario.GeneratedScenarios) {
		return apperrors.NewValidationError(fmt.Sprintf("candidate index %d out of range", index), nil)
	}
	session.Scenario.SelectedScenario = &index
	session.Scenario.FinalScenario = session.Scenario.GeneratedScenarios[index]
	return nil
}

// EditScenario replaces the final scenario text with a hand edit, keeping
// the selected candidate in sync.
func (c *StageController) EditScenario(session *Session, text string) error {
	if !session.Scenario.HasSelection() {
		return ErrNoSelection
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return apperrors.NewValidationError("scenario text is empty", nil)
	}
	session.Scenario.GeneratedScenarios[*session.Scenario.SelectedScenario] = text
	session.Scenario.FinalScenario = text
	return nil
}

// RefineScenario rewrites the final scenario per free-form instructions. On
// provider failure the current text is left untouched.
func (c *StageController) RefineScenario(ctx context.Context, session *Session, instructions string) error {
	if !session.Scenario.HasSelection() {
		return ErrNoSelection
	}
	if strings.TrimSpace(instructions) == "" {
		return apperrors.NewValidationError("update instructions are empty", nil)
	}

	refined, err := c.scenarios.RefineScenario(ctx, session.Context, session.Scenario.FinalScenario, instructions)
	if err != nil {
		return err
	}

	session.Scenario.GeneratedScenarios[*session.Scenario.SelectedScenario] = refined
	session.Scenario.FinalScenario = refined
	return nil
}

// UseExistingScenario loads the saved candidate set instead of generating a
// new one. Projects saved with only the summary document still load: the
// final text becomes a single selected candidate.
func (c *StageController) UseExistingScenario(session *Session) error {
	var scenario models.ScenarioCandidateSet
	found, err := c.store.Load(session.CourseTitle(), session.ModuleTitle(), storage.DocScenarioCandidates, &scenario)
	if err != nil {
		return fmt.Errorf("loading candidates: %w", err)
	}
	if !found {
		var summary models.ScenarioSummary
		found, err = c.store.Load(session.CourseTitle(), session.ModuleTitle(), storage.DocScenarioDescriptions, &summary)
		if err != nil {
			return fmt.Errorf("loading scenario summary: %w", err)
		}
		if !found || strings.TrimSpace(summary.ScenarioDescription) == "" {
			return apperrors.NewNotFoundError("no saved scenarios for this project", nil)
		}
		scenario = candidateSetFromSummary(summary)
	}
	session.Scenario = &scenario
	session.ScenariosNeedGeneration = false
	return nil
}

// candidateSetFromSummary rebuilds a selectable candidate set from a
// summary-only scenario_descriptions.json.
func candidateSetFromSummary(summary models.ScenarioSummary) models.ScenarioCandidateSet {
	selected := 0
	return models.ScenarioCandidateSet{
		GeneratedScenarios: []string{summary.ScenarioDescription},
		SelectedScenario:   &selected,
		FinalScenario:      summary.ScenarioDescription,
	}
}

// SaveScenario persists the scenario documents and advances to metadata
// extraction. Metadata generation is always re-armed: the saved text may
// differ from what any existing metadata was extracted from.
func (c *StageController) SaveScenario(session *Session) error {
	if !session.Scenario.HasSelection() {
		return ErrNoSelection
	}
	if strings.TrimSpace(session.Scenario.FinalScenario) == "" {
		return apperrors.NewValidationError("final scenario is empty", nil)
	}

	if err := c.store.Save(session.CourseTitle(), session.ModuleTitle(), storage.DocScenarioCandidates, session.Scenario); err != nil {
		return fmt.Errorf("persisting candidates: %w", err)
	}
	summary := models.ScenarioSummary{ScenarioDescription: session.Scenario.FinalScenario}
	if err := c.store.Save(session.CourseTitle(), session.ModuleTitle(), storage.DocScenarioDescriptions, summary); err != nil {
		return fmt.Errorf("persisting scenario summary: %w", err)
	}

	session.Stage = models.StageMetadataExtraction
	session.MetadataNeedGeneration = true
	return nil
}

func metadataPresent(m *models.ScenarioMetadata) bool {
	return m != nil && (m.NumScreens > 0 || len(m.Actors) > 0)
}

// GenerateMetadata extracts fresh metadata from the final scenario. A parse
// or provider failure leaves the session's current metadata untouched.
func (c *StageController) GenerateMetadata(ctx context.Context, session *Session) error {
	metadata, err := c.metadata.GenerateMetadata(ctx, session.Context, session.Scenario.FinalScenario)
	if err != nil {
		return err
	}
	session.Metadata = metadata
	session.MetadataNeedGeneration = false
	return nil
}

// UpdateMetadata applies a hand edit to the metadata.
func (c *StageController) UpdateMetadata(session *Session, metadata *models.ScenarioMetadata) {
	metadata.Normalize()
	session.Metadata = metadata
	session.MetadataNeedGeneration = false
}

// UseExistingMetadata loads the saved metadata document.
func (c *StageController) UseExistingMetadata(session *Session) error {
	var metadata models.ScenarioMetadata
	found, err := c.store.Load(session.CourseTitle(), session.ModuleTitle(), storage.DocScenarioMetadata, &metadata)
	if err != nil {
		return fmt.Errorf("loading metadata: %w", err)
	}
	if !found {
		return apperrors.NewNotFoundError("no saved metadata for this project", nil)
	}
	metadata.Normalize()
	session.Metadata = &metadata
	session.MetadataNeedGeneration = false
	return nil
}

// SaveMetadata persists the metadata and advances to screen scripting,
// always re-arming screen generation. Any existing screen list may have been
// scripted against older metadata, so only the explicit "use existing"
// command keeps it.
func (c *StageController) SaveMetadata(session *Session) error {
	if !metadataPresent(session.Metadata) {
		return apperrors.NewValidationError("metadata is empty", nil)
	}
	session.Metadata.Normalize()

	if err := c.store.Save(session.CourseTitle(), session.ModuleTitle(), storage.DocScenarioMetadata, session.Metadata); err != nil {
		return fmt.Errorf("persisting metadata: %w", err)
	}

	session.Stage = models.StageScreenScripting
	session.ScreensNeedGeneration = true
	return nil
}

// GenerateScreens scripts a fresh screen list. Failure leaves the current
// screens untouched.
func (c *StageController) GenerateScreens(ctx context.Context, session *Session) error {
	list, err := c.screens.GenerateScreens(ctx, session.Context, session.Scenario.FinalScenario, session.Metadata)
	if err != nil {
		return err
	}
	session.Screens = list.Screens
	session.Images = models.AlignImages(session.Screens, session.Images)
	session.ScreensNeedGeneration = false
	return nil
}

// UpdateScreens applies hand edits to the screen list. Generated images are
// kept positionally and realigned to the new count.
func (c *StageController) UpdateScreens(session *Session, screens []models.Screen) error {
	if len(screens) == 0 {
		return apperrors.NewValidationError("screen list is empty", nil)
	}
	list := models.ScreenList{Screens: screens}
	list.Reindex()
	session.Screens = list.Screens
	session.Images = models.AlignImages(session.Screens, session.Images)
	return nil
}

// SaveScreens persists the screen list and advances to image synthesis,
// positioning the cursor at the first screen without an image.
func (c *StageController) SaveScreens(session *Session) error {
	if len(session.Screens) == 0 {
		return apperrors.NewValidationError("no screens to save", nil)
	}

	if err := c.store.Save(session.CourseTitle(), session.ModuleTitle(), storage.DocScreens, models.ScreenList{Screens: session.Screens}); err != nil {
		return fmt.Errorf("persisting screens: %w", err)
	}

	session.Stage = models.StageImageSynthesis
	session.Images = models.AlignImages(session.Screens, session.Images)
	session.CurrentScreen = firstUngenerated(session.Images)
	return nil
}

// GenerateImage synthesizes the image for one screen, with write-through
// persistence handled by the image service.
func (c *StageController) GenerateImage(ctx context.Context, session *Session, index int) error {
	images, err := c.images.GenerateForScreen(ctx,
		session.CourseTitle(), session.ModuleTitle(),
		session.Screens, session.Images, index, session.Metadata)
	session.Images = images
	return err
}

// RegenerateImage discards one screen's image and synthesizes a new one.
func (c *StageController) RegenerateImage(ctx context.Context, session *Session, index int) error {
	images, err := c.images.ClearScreen(session.CourseTitle(), session.ModuleTitle(), session.Images, index)
	session.Images = images
	if err != nil {
		return err
	}
	return c.GenerateImage(ctx, session, index)
}

// AcceptImage marks one screen's image as accepted, persists screens and
// images, and advances the cursor past the accepted screen.
func (c *StageController) AcceptImage(session *Session, index int) error {
	if err := c.images.AcceptScreen(session.CourseTitle(), session.ModuleTitle(), session.Screens, session.Images, index); err != nil {
		return err
	}
	if index == session.CurrentScreen && session.CurrentScreen < len(session.Screens)-1 {
		session.CurrentScreen++
	}
	return nil
}

// EnterPreview composites every frame and advances to the final stage. All
// screens must have images first. Compositing is idempotent: re-entering
// overwrites the frames from current state.
func (c *StageController) EnterPreview(session *Session) error {
	if len(session.Screens) == 0 || !models.ImagesComplete(session.Screens, session.Images) {
		return ErrScreensIncomplete
	}

	dir, err := c.compositor.CompositeAll(session.CourseTitle(), session.ModuleTitle(), session.Screens, session.Images)
	if err != nil {
		return err
	}

	session.CompositedDir = dir
	session.Stage = models.StageCompositing
	return nil
}

// Back steps to the previous stage. Session data is preserved so moving
// forward again does not regenerate anything.
func (c *StageController) Back(session *Session) {
	if session.Stage > models.StageSetup {
		session.Stage--
	}
}
