// internal/services/image_service.go
package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"

	"scenario-builder/internal/models"
	"scenario-builder/internal/storage"
)

// ImageService generates one screen image at a time and persists the image
// list after every successful call, so a crash never loses finished work.
type ImageService struct {
	gateway Gateway
	store   *storage.ProjectStore
	logger  *zap.Logger
}

func NewImageService(gateway Gateway, store *storage.ProjectStore, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{gateway: gateway, store: store, logger: logger}
}

// GenerateForScreen synthesizes the image for screens[index], slots it into
// the image list (growing the list as needed) and writes the list through to
// disk. The returned slice is the updated list; on error the input list is
// returned unchanged.
func (s *ImageService) GenerateForScreen(
	ctx context.Context,
	courseTitle, moduleTitle string,
	screens []models.Screen,
	images []models.GeneratedImage,
	index int,
	metadata *models.ScenarioMetadata,
) ([]models.GeneratedImage, error) {
	if index < 0 || index >= len(screens) {
		return images, fmt.Errorf("screen index %d out of range [0,%d)", index, len(screens))
	}

	prompt := buildImagePrompt(screens, index, metadata)

	data, err := s.gateway.GenerateImage(ctx, prompt, metadata.AspectRatio)
	if err != nil {
		return images, err
	}

	for index >= len(images) {
		images = append(images, models.GeneratedImage{})
	}
	images[index] = models.GeneratedImage{
		ImageB64:     base64.StdEncoding.EncodeToString(data),
		Accepted:     false,
		ScreenNumber: index + 1,
	}

	if err := s.store.Save(courseTitle, moduleTitle, storage.DocGeneratedImages, images); err != nil {
		s.logger.Warn("persisting generated images failed",
			zap.Int("screen", index+1),
			zap.Error(err))
	}

	return images, nil
}

// AcceptScreen marks screens[index]'s image as accepted and persists both
// the screen list and the image list.
func (s *ImageService) AcceptScreen(
	courseTitle, moduleTitle string,
	screens []models.Screen,
	images []models.GeneratedImage,
	index int,
) error {
	if index < 0 || index >= len(images) {
		return fmt.Errorf("image index %d out of range [0,%d)", index, len(images))
	}
	if images[index].ImageB64 == "" {
		return fmt.Errorf("screen %d has no generated image to accept", index+1)
	}

	images[index].Accepted = true

	if err := s.store.Save(courseTitle, moduleTitle, storage.DocScreens, models.ScreenList{Screens: screens}); err != nil {
		return fmt.Errorf("persisting screens: %w", err)
	}
	if err := s.store.Save(courseTitle, moduleTitle, storage.DocGeneratedImages, images); err != nil {
		return fmt.Errorf("persisting images: %w", err)
	}
	return nil
}

// ClearScreen drops screens[index]'s image so the next generate call redoes
// it, persisting the cleared list.
func (s *ImageService) ClearScreen(
	courseTitle, moduleTitle string,
	images []models.GeneratedImage,
	index int,
) ([]models.GeneratedImage, error) {
	if index < 0 || index >= len(images) {
		return images, fmt.Errorf("image index %d out of range [0,%d)", index, len(images))
	}

	images[index] = models.GeneratedImage{ScreenNumber: index + 1}

	if err := s.store.Save(courseTitle, moduleTitle, storage.DocGeneratedImages, images); err != nil {
		return images, fmt.Errorf("persisting images: %w", err)
	}
	return images, nil
}
