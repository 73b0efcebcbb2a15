package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"matchwave-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// UserFilter narrows and orders the member listing
type UserFilter struct {
	ExcludeID string
	Gender    string
	MinAge    int
	MaxAge    int
	OrderBy   string // "created" or "lastActive"
	Limit     int
	Offset    int
}

const userColumns = `id, username, password_hash, gender, birth_date, city, country,
	introduction, push_token, created_at, last_active`

// Create inserts a new user. Returns ErrDuplicate if the username is taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, gender, birth_date, city, country,
			introduction, created_at, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.Gender, user.BirthDate,
		user.City, user.Country, user.Introduction, user.CreatedAt, user.LastActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID, or nil when absent
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByUsername retrieves a user by username, or nil when absent
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(ctx, query, username)
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Gender, &user.BirthDate,
		&user.City, &user.Country, &user.Introduction, &user.PushToken,
		&user.CreatedAt, &user.LastActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// List retrieves users matching the filter with a total count for pagination
func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]*models.User, int, error) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.ExcludeID != "" {
		add("id <> $%d", f.ExcludeID)
	}
	if f.Gender != "" {
		add("gender = $%d", f.Gender)
	}
	if f.MinAge > 0 {
		// at least MinAge years old
		add("birth_date <= $%d", time.Now().AddDate(-f.MinAge, 0, 0))
	}
	if f.MaxAge > 0 {
		// not yet MaxAge+1 years old
		add("birth_date > $%d", time.Now().AddDate(-(f.MaxAge+1), 0, 0))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM users` + where
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	order := "last_active DESC"
	if f.OrderBy == "created" {
		order = "created_at DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		userColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Username, &user.PasswordHash, &user.Gender, &user.BirthDate,
			&user.City, &user.Country, &user.Introduction, &user.PushToken,
			&user.CreatedAt, &user.LastActive,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

// UpdateProfile updates the mutable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET gender = $1, birth_date = $2, city = $3, country = $4, introduction = $5
		WHERE id = $6
	`
	result, err := r.db.Exec(ctx, query,
		user.Gender, user.BirthDate, user.City, user.Country, user.Introduction, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// TouchLastActive stamps the user's last activity time
func (r *UserRepository) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE users SET last_active = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, at, userID)
	if err != nil {
		return fmt.Errorf("failed to touch last active: %w", err)
	}
	return nil
}
