package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"matchwave-backend/internal/models"
	"matchwave-backend/internal/pagination"
	"matchwave-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 4

// UserService handles registration, login, profiles and likes
type UserService struct {
	users    UserStore
	likes    LikeStore
	photos   PhotoStore
	notifier Notifier

	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewUserService creates a new user service
func NewUserService(users UserStore, likes LikeStore, photos PhotoStore, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		users:     users,
		likes:     likes,
		photos:    photos,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// SetNotifier attaches the event notifier; nil disables notifications
func (s *UserService) SetNotifier(n Notifier) {
	s.notifier = n
}

// RegisterInput carries the registration form
type RegisterInput struct {
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Gender    string    `json:"gender"`
	BirthDate time.Time `json:"birth_date"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
}

// Register creates a new user. Usernames are case-normalized to lowercase.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.ToLower(strings.TrimSpace(input.Username))

	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if input.BirthDate.IsZero() {
		return nil, fmt.Errorf("%w: birth date is required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		PasswordHash: string(hash),
		Gender:       input.Gender,
		BirthDate:    input.BirthDate,
		City:         input.City,
		Country:      input.Country,
		CreatedAt:    now,
		LastActive:   now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a bearer token
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// GenerateJWT generates a bearer token binding the user's id and username
func (s *UserService) GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a bearer token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

// GetUser retrieves a user with their photo collection
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	photos, err := s.photos.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	user.Photos = photos

	return user, nil
}

// ListUsersInput narrows the member listing
type ListUsersInput struct {
	Gender  string
	MinAge  int
	MaxAge  int
	OrderBy string
	Page    pagination.Params
}

// ListUsers returns a page of members, excluding the caller. When no gender
// filter is given the caller sees the opposite gender by default.
func (s *UserService) ListUsers(ctx context.Context, callerID string, input ListUsersInput) ([]*models.User, pagination.Meta, error) {
	gender := input.Gender
	if gender == "" {
		caller, err := s.users.GetByID(ctx, callerID)
		if err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("failed to get caller: %w", err)
		}
		if caller != nil {
			if caller.Gender == "male" {
				gender = "female"
			} else {
				gender = "male"
			}
		}
	}

	page := input.Page.Clamp()
	users, total, err := s.users.List(ctx, repository.UserFilter{
		ExcludeID: callerID,
		Gender:    gender,
		MinAge:    input.MinAge,
		MaxAge:    input.MaxAge,
		OrderBy:   input.OrderBy,
		Limit:     page.Limit(),
		Offset:    page.Offset(),
	})
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list users: %w", err)
	}

	return users, pagination.NewMeta(page, total), nil
}

// UpdateInput carries the mutable profile fields
type UpdateInput struct {
	Gender       string    `json:"gender"`
	BirthDate    time.Time `json:"birth_date"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	Introduction string    `json:"introduction"`
}

// UpdateProfile updates the user's profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if input.Gender != "" {
		user.Gender = input.Gender
	}
	if !input.BirthDate.IsZero() {
		user.BirthDate = input.BirthDate
	}
	user.City = input.City
	user.Country = input.Country
	user.Introduction = input.Introduction

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// UpdatePushToken registers or clears the user's push device token
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.users.UpdatePushToken(ctx, userID, pushToken)
}

// TouchLastActive stamps the user's activity time
func (s *UserService) TouchLastActive(ctx context.Context, userID string) error {
	return s.users.TouchLastActive(ctx, userID, time.Now())
}

// Like records a like edge from liker to likee. Duplicate likes surface as
// ErrAlreadyLiked via the unique pair constraint, so two concurrent likes
// cannot both insert.
func (s *UserService) Like(ctx context.Context, likerID, likeeID string) (*models.Like, error) {
	if likerID == likeeID {
		return nil, fmt.Errorf("%w: cannot like yourself", ErrInvalidInput)
	}

	likee, err := s.users.GetByID(ctx, likeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get likee: %w", err)
	}
	if likee == nil {
		return nil, ErrNotFound
	}

	like := &models.Like{
		LikerID:   likerID,
		LikeeID:   likeeID,
		CreatedAt: time.Now(),
	}
	if err := s.likes.Create(ctx, like); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyLiked
		}
		return nil, fmt.Errorf("failed to create like: %w", err)
	}

	if s.notifier != nil {
		s.notifier.LikeCreated(like)
	}

	return like, nil
}
