// internal/storage/project_store.go
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"scenario-builder/internal/models"
)

// Document names, in wizard order. detect_resume_point probes them in
// reverse: the furthest existing document wins.
const (
	DocContext              = "context.json"
	DocScenarioDescriptions = "scenario_descriptions.json"
	DocScenarioCandidates   = "scenario_candidates.json"
	DocScenarioMetadata     = "scenario_metadata.json"
	DocScreens              = "screens.json"
	DocGeneratedImages      = "generated_images.json"

	textOutputsDir    = "text_outputs"
	CompositedDirName = "composited_screens"
)

// ProjectStore reads and writes the JSON documents of a course/module pair
// under <BaseDir>/<course_slug>/<module_slug>/text_outputs/. Writes are
// whole-document overwrites via temp file + rename, so a failed save never
// leaves a partial document behind.
type ProjectStore struct {
	BaseDir string

	logger    *zap.Logger
	fileLocks sync.Map // full path -> *sync.RWMutex
}

// NewProjectStore creates the store and its base directory.
func NewProjectStore(baseDir string, logger *zap.Logger) (*ProjectStore, error) {
	if baseDir == "" {
		baseDir = "data"
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectStore{BaseDir: baseDir, logger: logger}, nil
}

func (s *ProjectStore) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := s.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// textOutputsPath returns the absolute text_outputs directory for a pair.
func (s *ProjectStore) textOutputsPath(courseTitle, moduleTitle string) string {
	return filepath.Join(s.BaseDir, ResolveProjectDir(courseTitle, moduleTitle), textOutputsDir)
}

// CompositedPath returns the absolute composited_screens directory.
func (s *ProjectStore) CompositedPath(courseTitle, moduleTitle string) string {
	return filepath.Join(s.textOutputsPath(courseTitle, moduleTitle), CompositedDirName)
}

// Save serializes payload as 2-space-indented JSON and writes it atomically,
// creating intermediate directories. Overwrite semantics, no merge.
func (s *ProjectStore) Save(courseTitle, moduleTitle, documentName string, payload interface{}) error {
	content, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", documentName, err)
	}

	dir := s.textOutputsPath(courseTitle, moduleTitle)
	fullPath := filepath.Join(dir, documentName)

	lock := s.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			s.logger.Warn("failed to clean up temp file after rename failure",
				zap.String("path", tempPath), zap.Error(removeErr))
		}
		return fmt.Errorf("failed to save %s: %w", fullPath, err)
	}
	return nil
}

// Load unmarshals a document into v. Returns false when the file does not
// exist or does not parse; a corrupt document is treated as absent so the
// wizard falls back to regeneration instead of dead-ending. The corruption
// is logged for operators rather than surfaced to the user.
func (s *ProjectStore) Load(courseTitle, moduleTitle, documentName string, v interface{}) (bool, error) {
	fullPath := filepath.Join(s.textOutputsPath(courseTitle, moduleTitle), documentName)

	lock := s.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", fullPath, err)
	}

	if err := json.Unmarshal(content, v); err != nil {
		s.logger.Warn("treating malformed document as absent",
			zap.String("path", fullPath), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// LoadBySlug reads a document from an already-resolved directory pair, as
// returned by FindProject. Same tolerant semantics as Load.
func (s *ProjectStore) LoadBySlug(courseSlug, moduleSlug, documentName string, v interface{}) (bool, error) {
	fullPath := filepath.Join(s.BaseDir, courseSlug, moduleSlug, textOutputsDir, documentName)

	lock := s.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", fullPath, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		s.logger.Warn("treating malformed document as absent",
			zap.String("path", fullPath), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Exists reports whether a document file is present.
func (s *ProjectStore) Exists(courseTitle, moduleTitle, documentName string) bool {
	fullPath := filepath.Join(s.textOutputsPath(courseTitle, moduleTitle), documentName)
	_, err := os.Stat(fullPath)
	return err == nil
}

// CompositedNonEmpty reports whether the composited_screens directory exists
// and holds at least one file.
func (s *ProjectStore) CompositedNonEmpty(courseTitle, moduleTitle string) bool {
	entries, err := os.ReadDir(s.CompositedPath(courseTitle, moduleTitle))
	return err == nil && len(entries) > 0
}

// SaveCompositedFrame writes one finished frame as
// composited_screens/screen_<n>.png, overwriting any previous render.
func (s *ProjectStore) SaveCompositedFrame(courseTitle, moduleTitle string, screenNumber int, pngData []byte) (string, error) {
	dir := s.CompositedPath(courseTitle, moduleTitle)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	fullPath := filepath.Join(dir, fmt.Sprintf("screen_%d.png", screenNumber))

	lock := s.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.WriteFile(fullPath, pngData, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", fullPath, err)
	}
	return fullPath, nil
}

// LoadCompositedFrame reads one finished frame back.
func (s *ProjectStore) LoadCompositedFrame(courseTitle, moduleTitle string, screenNumber int) ([]byte, error) {
	fullPath := filepath.Join(s.CompositedPath(courseTitle, moduleTitle), fmt.Sprintf("screen_%d.png", screenNumber))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fullPath, err)
	}
	return data, nil
}

// DetectResumePoint inspects which documents exist and returns one stage
// past the last existing document, so work picks up where the next output is
// still missing. A fixed reverse-ordered existence probe, most advanced
// first, not a dependency graph. Images and the composited frames resume in
// place: both can be partially done.
func (s *ProjectStore) DetectResumePoint(courseTitle, moduleTitle string) models.Stage {
	switch {
	case s.CompositedNonEmpty(courseTitle, moduleTitle):
		return models.StageCompositing
	case s.Exists(courseTitle, moduleTitle, DocGeneratedImages):
		return models.StageImageSynthesis
	case s.Exists(courseTitle, moduleTitle, DocScreens):
		return models.StageImageSynthesis
	case s.Exists(courseTitle, moduleTitle, DocScenarioMetadata):
		return models.StageScreenScripting
	case s.Exists(courseTitle, moduleTitle, DocScenarioDescriptions):
		return models.StageMetadataExtraction
	case s.Exists(courseTitle, moduleTitle, DocContext):
		return models.StageReview
	default:
		return models.StageSetup
	}
}

// ListProjects returns the display names of every saved course, sorted.
func (s *ProjectStore) ListProjects() ([]string, error) {
	slugs, err := s.listDirs(s.BaseDir)
	if err != nil {
		return nil, err
	}
	courses := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		courses = append(courses, DisplayName(slug))
	}
	sort.Strings(courses)
	return courses, nil
}

// ListModules returns the display names of every saved module of a course,
// sorted. The course name goes through the same sanitization as saves do.
func (s *ProjectStore) ListModules(courseTitle string) ([]string, error) {
	courseSlug, ok := s.matchDir(s.BaseDir, SanitizeName(courseTitle, FallbackCourseSlug))
	if !ok {
		return nil, nil
	}
	slugs, err := s.listDirs(filepath.Join(s.BaseDir, courseSlug))
	if err != nil {
		return nil, err
	}
	modules := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		modules = append(modules, DisplayName(slug))
	}
	sort.Strings(modules)
	return modules, nil
}

// FindProject locates the stored course/module directory pair for titles
// that may have round-tripped through DisplayName (which loses case). The
// sanitized names are matched case-insensitively against what is actually
// on disk; the on-disk spelling wins.
func (s *ProjectStore) FindProject(courseTitle, moduleTitle string) (courseSlug, moduleSlug string, ok bool) {
	courseSlug, ok = s.matchDir(s.BaseDir, SanitizeName(courseTitle, FallbackCourseSlug))
	if !ok {
		return "", "", false
	}
	moduleSlug, ok = s.matchDir(filepath.Join(s.BaseDir, courseSlug), SanitizeName(moduleTitle, FallbackModuleSlug))
	if !ok {
		return "", "", false
	}
	return courseSlug, moduleSlug, true
}

func (s *ProjectStore) matchDir(parent, want string) (string, bool) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", false
	}
	lowerWant := strings.ToLower(want)
	for _, entry := range entries {
		if entry.IsDir() && strings.ToLower(entry.Name()) == lowerWant {
			return entry.Name(), true
		}
	}
	return "", false
}

func (s *ProjectStore) listDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}
