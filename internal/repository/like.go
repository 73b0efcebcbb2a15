package repository

import (
	"context"
	"errors"
	"fmt"

	"matchwave-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles database operations for like edges
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a like edge. The (liker_id, likee_id) unique constraint
// turns a concurrent duplicate into ErrDuplicate rather than a second row.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	query := `
		INSERT INTO likes (liker_id, likee_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.Exec(ctx, query, like.LikerID, like.LikeeID, like.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

// Get retrieves a like edge, or nil when absent
func (r *LikeRepository) Get(ctx context.Context, likerID, likeeID string) (*models.Like, error) {
	query := `
		SELECT liker_id, likee_id, created_at
		FROM likes
		WHERE liker_id = $1 AND likee_id = $2
	`
	var like models.Like
	err := r.db.QueryRow(ctx, query, likerID, likeeID).Scan(
		&like.LikerID, &like.LikeeID, &like.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}
