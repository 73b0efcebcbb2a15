package repository

import (
	"context"
	"errors"
	"fmt"

	"matchwave-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts a new photo. The first photo for a user becomes the main
// photo; the subquery and insert are a single statement so two concurrent
// first uploads cannot both become main (backed by the partial unique index).
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, user_id, url, storage_key, is_main, added_at)
		VALUES ($1, $2, $3, $4,
			NOT EXISTS(SELECT 1 FROM photos WHERE user_id = $2 AND is_main = true),
			$5)
		RETURNING is_main
	`
	err := r.db.QueryRow(ctx, query,
		photo.ID, photo.UserID, photo.URL, photo.StorageKey, photo.AddedAt,
	).Scan(&photo.IsMain)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID, or nil when absent
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `
		SELECT id, user_id, url, storage_key, is_main, added_at
		FROM photos
		WHERE id = $1
	`
	var photo models.Photo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&photo.ID, &photo.UserID, &photo.URL, &photo.StorageKey,
		&photo.IsMain, &photo.AddedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &photo, nil
}

// ListByUser retrieves all photos for a user, main photo first
func (r *PhotoRepository) ListByUser(ctx context.Context, userID string) ([]*models.Photo, error) {
	query := `
		SELECT id, user_id, url, storage_key, is_main, added_at
		FROM photos
		WHERE user_id = $1
		ORDER BY is_main DESC, added_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		var photo models.Photo
		err := rows.Scan(
			&photo.ID, &photo.UserID, &photo.URL, &photo.StorageKey,
			&photo.IsMain, &photo.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, &photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

// SetMain demotes the user's current main photo and promotes the target in
// one transaction, so no concurrent reader sees zero or two main photos.
func (r *PhotoRepository) SetMain(ctx context.Context, userID, photoID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	demote := `UPDATE photos SET is_main = false WHERE user_id = $1 AND is_main = true`
	if _, err := tx.Exec(ctx, demote, userID); err != nil {
		return fmt.Errorf("failed to demote main photo: %w", err)
	}

	promote := `UPDATE photos SET is_main = true WHERE id = $1 AND user_id = $2`
	result, err := tx.Exec(ctx, promote, photoID, userID)
	if err != nil {
		return fmt.Errorf("failed to promote photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit set main: %w", err)
	}
	return nil
}

// Delete removes a photo row
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}
	return nil
}
