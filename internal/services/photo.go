package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"matchwave-backend/internal/models"

	"github.com/google/uuid"
)

// PhotoService handles photo upload and management
type PhotoService struct {
	photos PhotoStore
	images ImageStore
}

// NewPhotoService creates a new photo service
func NewPhotoService(photos PhotoStore, images ImageStore) *PhotoService {
	return &PhotoService{
		photos: photos,
		images: images,
	}
}

// Upload stores the photo bytes with the image host and persists the
// metadata. A user's first photo becomes their main photo.
func (s *PhotoService) Upload(ctx context.Context, userID, contentType string, body io.Reader) (*models.Photo, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: photo file is required", ErrInvalidInput)
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	photoID := uuid.New().String()
	key := fmt.Sprintf("photos/%s/%s", userID, photoID)

	url, err := s.images.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	photo := &models.Photo{
		ID:         photoID,
		UserID:     userID,
		URL:        url,
		StorageKey: &key,
		AddedAt:    time.Now(),
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to persist photo: %w", err)
	}

	return photo, nil
}

// Get retrieves a photo by ID
func (s *PhotoService) Get(ctx context.Context, id string) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil {
		return nil, ErrNotFound
	}
	return photo, nil
}

// SetMain promotes the photo to the user's main photo, demoting the current
// one in the same transaction
func (s *PhotoService) SetMain(ctx context.Context, userID, photoID string) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil || photo.UserID != userID {
		return nil, ErrNotFound
	}
	if photo.IsMain {
		return nil, ErrAlreadyMain
	}

	if err := s.photos.SetMain(ctx, userID, photoID); err != nil {
		return nil, fmt.Errorf("failed to set main photo: %w", err)
	}

	photo.IsMain = true
	return photo, nil
}

// Delete removes a photo. The main photo is protected until demoted. If the
// photo has a storage key the object is deleted from the image host first:
// a host-side "not found" is tolerated, any other host failure aborts.
func (s *PhotoService) Delete(ctx context.Context, userID, photoID string) error {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil || photo.UserID != userID {
		return ErrNotFound
	}
	if photo.IsMain {
		return ErrMainPhotoDelete
	}

	if photo.StorageKey != nil {
		if err := s.images.Delete(ctx, *photo.StorageKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
			return fmt.Errorf("%w: %v", ErrExternalService, err)
		}
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
