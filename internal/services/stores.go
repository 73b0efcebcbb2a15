package services

import (
	"context"
	"io"
	"time"

	"matchwave-backend/internal/models"
	"matchwave-backend/internal/repository"
)

// The services accept narrow store interfaces so the business rules can be
// exercised against in-memory fakes; the pgx repositories satisfy them.

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, f repository.UserFilter) ([]*models.User, int, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
	TouchLastActive(ctx context.Context, userID string, at time.Time) error
}

// LikeStore persists like edges
type LikeStore interface {
	Create(ctx context.Context, like *models.Like) error
	Get(ctx context.Context, likerID, likeeID string) (*models.Like, error)
}

// MessageStore persists messages
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	ListMailbox(ctx context.Context, userID string, box repository.Mailbox, limit, offset int) ([]*models.Message, int, error)
	Thread(ctx context.Context, viewerID, otherID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	SetDeleted(ctx context.Context, id string, bySender bool) error
}

// PhotoStore persists photo metadata
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Photo, error)
	SetMain(ctx context.Context, userID, photoID string) error
	Delete(ctx context.Context, id string) error
}

// ImageStore is the external image host holding the photo bytes
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// Notifier delivers best-effort events about state changes. Implementations
// must not block the request path for long and never fail it.
type Notifier interface {
	MessageCreated(msg *models.Message)
	MessageRead(msg *models.Message)
	LikeCreated(like *models.Like)
}
