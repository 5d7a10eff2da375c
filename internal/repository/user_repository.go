package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"linklytics-be/internal/apperrors"
	"linklytics-be/internal/entities"

	"github.com/lib/pq"
)

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string, name *string, credits int) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	GetSubscriptionPlan(ctx context.Context, id string) (string, error)
	GetAvailableCredits(ctx context.Context, id string) (int, error)
	DecrementCredits(ctx context.Context, id string) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, subscription_plan, available_credits, created_at, updated_at`

func scanUser(row *sql.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name,
		&u.SubscriptionPlan, &u.AvailableCredits, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. A duplicate email surfaces as ErrEmailTaken via
// the unique constraint, not a pre-check.
func (r *userRepository) Create(ctx context.Context, email, passwordHash string, name *string, credits int) (*entities.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, available_credits)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email, passwordHash, name, credits))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// FindByID finds a user by ID (UUID)
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// GetSubscriptionPlan returns the plan tier string for a user.
func (r *userRepository) GetSubscriptionPlan(ctx context.Context, id string) (string, error) {
	var tier string
	err := r.db.QueryRowContext(ctx,
		`SELECT subscription_plan FROM users WHERE id = $1`, id).Scan(&tier)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get subscription plan: %w", err)
	}
	return tier, nil
}

// GetAvailableCredits returns the remaining generation credits for a user.
func (r *userRepository) GetAvailableCredits(ctx context.Context, id string) (int, error) {
	var credits int
	err := r.db.QueryRowContext(ctx,
		`SELECT available_credits FROM users WHERE id = $1`, id).Scan(&credits)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get credits: %w", err)
	}
	return credits, nil
}

// DecrementCredits spends one generation credit atomically, refusing to go
// below zero.
func (r *userRepository) DecrementCredits(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET available_credits = available_credits - 1,
		    updated_at = (NOW() AT TIME ZONE 'UTC')
		WHERE id = $1 AND available_credits > 0
	`, id)
	if err != nil {
		return fmt.Errorf("failed to decrement credits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrNoCredits
	}

	return nil
}
