// internal/storage/project_store_test.go
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scenario-builder/internal/models"
)

func newTestStore(t *testing.T) *ProjectStore {
	t.Helper()
	store, err := NewProjectStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestProjectStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	saved := models.ScenarioMetadata{
		NumScreens:  4,
		AspectRatio: "16:9",
		Actors:      []models.Actor{{Name: "Amara", Role: "Engineer"}},
	}
	require.NoError(t, store.Save("My Course", "My Module", DocScenarioMetadata, saved))

	var loaded models.ScenarioMetadata
	found, err := store.Load("My Course", "My Module", DocScenarioMetadata, &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, saved, loaded)
}

func TestProjectStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)

	var v models.ScenarioMetadata
	found, err := store.Load("No Course", "No Module", DocScenarioMetadata, &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProjectStoreLoadMalformed(t *testing.T) {
	store := newTestStore(t)

	dir := filepath.Join(store.BaseDir, "Broken", "Mod", "text_outputs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocContext), []byte("{not json"), 0644))

	// A corrupt document is treated as absent, not as a hard error.
	var v models.ProjectContext
	found, err := store.Load("Broken", "Mod", DocContext, &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProjectStoreExists(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.Exists("C", "M", DocContext))
	require.NoError(t, store.Save("C", "M", DocContext, models.ProjectContext{}))
	assert.True(t, store.Exists("C", "M", DocContext))
}

func TestDetectResumePoint(t *testing.T) {
	store := newTestStore(t)
	course, module := "Resume Course", "Resume Module"

	assert.Equal(t, models.StageSetup, store.DetectResumePoint(course, module))

	require.NoError(t, store.Save(course, module, DocContext, models.ProjectContext{}))
	assert.Equal(t, models.StageReview, store.DetectResumePoint(course, module))

	// A saved scenario summary with no metadata yet resumes at metadata
	// extraction, one stage past the last document on disk.
	require.NoError(t, store.Save(course, module, DocScenarioDescriptions, models.ScenarioSummary{ScenarioDescription: "S"}))
	assert.Equal(t, models.StageMetadataExtraction, store.DetectResumePoint(course, module))

	require.NoError(t, store.Save(course, module, DocScenarioMetadata, models.ScenarioMetadata{}))
	assert.Equal(t, models.StageScreenScripting, store.DetectResumePoint(course, module))

	require.NoError(t, store.Save(course, module, DocScreens, models.ScreenList{}))
	assert.Equal(t, models.StageImageSynthesis, store.DetectResumePoint(course, module))

	// Image synthesis resumes in place: the list may be partially done.
	require.NoError(t, store.Save(course, module, DocGeneratedImages, []models.GeneratedImage{}))
	assert.Equal(t, models.StageImageSynthesis, store.DetectResumePoint(course, module))

	_, err := store.SaveCompositedFrame(course, module, 1, []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, models.StageCompositing, store.DetectResumePoint(course, module))
}

func TestCompositedFrames(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.CompositedNonEmpty("C", "M"))

	path, err := store.SaveCompositedFrame("C", "M", 2, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "screen_2.png", filepath.Base(path))
	assert.True(t, store.CompositedNonEmpty("C", "M"))

	data, err := store.LoadCompositedFrame("C", "M", 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = store.LoadCompositedFrame("C", "M", 9)
	assert.Error(t, err)
}

func TestListProjectsAndModules(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("data science", "unit one", DocContext, models.ProjectContext{}))
	require.NoError(t, store.Save("data science", "unit two", DocContext, models.ProjectContext{}))
	require.NoError(t, store.Save("biology", "cells", DocContext, models.ProjectContext{}))

	courses, err := store.ListProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"Biology", "Data Science"}, courses)

	modules, err := store.ListModules("data science")
	require.NoError(t, err)
	assert.Equal(t, []string{"Unit One", "Unit Two"}, modules)

	missing, err := store.ListModules("chemistry")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestFindProjectCaseInsensitive(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("Data Science", "Unit One", DocContext, models.ProjectContext{}))

	// Titles that round-tripped through DisplayName lose their case; the
	// on-disk spelling still has to win.
	courseSlug, moduleSlug, ok := store.FindProject("data science", "UNIT ONE")
	require.True(t, ok)
	assert.Equal(t, "Data_Science", courseSlug)
	assert.Equal(t, "Unit_One", moduleSlug)

	_, _, ok = store.FindProject("data science", "unit nine")
	assert.False(t, ok)
}
