// internal/services/image_service_test.go
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scenario-builder/internal/models"
	"scenario-builder/internal/storage"
)

func newTestStore(t *testing.T) *storage.ProjectStore {
	t.Helper()
	store, err := storage.NewProjectStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestGenerateForScreen(t *testing.T) {
	screens := []models.Screen{
		{ScreenNumber: 1, ImageDescription: "A harbor at dusk"},
		{ScreenNumber: 2, ImageDescription: "A crowded control room"},
	}
	metadata := &models.ScenarioMetadata{AspectRatio: "16:9", VisualStyle: "photo"}

	t.Run("stores image and writes through", func(t *testing.T) {
		store := newTestStore(t)
		gateway := new(mockGateway)
		gateway.On("GenerateImage", mock.Anything, mock.Anything, "16:9").
			Return([]byte{0x89, 0x50, 0x4e, 0x47}, nil).Once()

		service := NewImageService(gateway, store, zap.NewNop())
		images, err := service.GenerateForScreen(context.Background(), "C", "M", screens, nil, 1, metadata)

		require.NoError(t, err)
		require.Len(t, images, 2)
		assert.Empty(t, images[0].ImageB64)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47}), images[1].ImageB64)
		assert.Equal(t, 2, images[1].ScreenNumber)
		assert.False(t, images[1].Accepted)

		// Write-through: the list is already on disk.
		var persisted []models.GeneratedImage
		found, err := store.Load("C", "M", storage.DocGeneratedImages, &persisted)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, images, persisted)
	})

	t.Run("gateway failure leaves list unchanged", func(t *testing.T) {
		store := newTestStore(t)
		gateway := new(mockGateway)
		gateway.On("GenerateImage", mock.Anything, mock.Anything, "16:9").
			Return(nil, errors.New("quota exceeded")).Once()

		before := []models.GeneratedImage{{ImageB64: "existing", ScreenNumber: 1}}
		service := NewImageService(gateway, store, zap.NewNop())
		images, err := service.GenerateForScreen(context.Background(), "C", "M", screens, before, 0, metadata)

		assert.Error(t, err)
		assert.Equal(t, before, images)
		assert.False(t, store.Exists("C", "M", storage.DocGeneratedImages))
	})

	t.Run("index out of range", func(t *testing.T) {
		service := NewImageService(new(mockGateway), newTestStore(t), zap.NewNop())
		_, err := service.GenerateForScreen(context.Background(), "C", "M", screens, nil, 5, metadata)
		assert.Error(t, err)
	})
}

func TestAcceptScreen(t *testing.T) {
	screens := []models.Screen{{ScreenNumber: 1, Caption: "caption"}}

	t.Run("marks accepted and persists both documents", func(t *testing.T) {
		store := newTestStore(t)
		service := NewImageService(new(mockGateway), store, zap.NewNop())

		images := []models.GeneratedImage{{ImageB64: "abc", ScreenNumber: 1}}
		require.NoError(t, service.AcceptScreen("C", "M", screens, images, 0))

		assert.True(t, images[0].Accepted)
		assert.True(t, store.Exists("C", "M", storage.DocScreens))
		assert.True(t, store.Exists("C", "M", storage.DocGeneratedImages))
	})

	t.Run("cannot accept an empty slot", func(t *testing.T) {
		service := NewImageService(new(mockGateway), newTestStore(t), zap.NewNop())
		images := []models.GeneratedImage{{ScreenNumber: 1}}
		assert.Error(t, service.AcceptScreen("C", "M", screens, images, 0))
	})
}

func TestClearScreen(t *testing.T) {
	store := newTestStore(t)
	service := NewImageService(new(mockGateway), store, zap.NewNop())

	images := []models.GeneratedImage{{ImageB64: "abc", Accepted: true, ScreenNumber: 1}}
	cleared, err := service.ClearScreen("C", "M", images, 0)

	require.NoError(t, err)
	assert.Empty(t, cleared[0].ImageB64)
	assert.False(t, cleared[0].Accepted)
	assert.Equal(t, 1, cleared[0].ScreenNumber)
	assert.True(t, store.Exists("C", "M", storage.DocGeneratedImages))
}
