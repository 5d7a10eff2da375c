package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"linklytics-be/internal/apperrors"
	"linklytics-be/internal/entities"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// CreateURLParams carries everything needed to persist a new link.
type CreateURLParams struct {
	ShortCode    string
	CustomAlias  *string
	OriginalURL  string
	UserID       string
	PasswordHash string
	ExpiresAt    *time.Time
	ActivatesAt  *time.Time
	IOSURL       *string
	AndroidURL   *string
}

// UpdateURLParams carries the partial update for an existing link.
// Nil pointers leave the column unchanged; ClearPassword wins over
// PasswordHash.
type UpdateURLParams struct {
	OriginalURL   *string
	CustomAlias   *string
	ExpiresAt     *time.Time
	SetExpiresAt  bool
	ActivatesAt   *time.Time
	SetActivates  bool
	PasswordHash  *string
	ClearPassword bool
	IsActive      *bool
	IOSURL        *string
	AndroidURL    *string
	SetDeviceURLs bool
}

// URLRepository defines the interface for link database operations
type URLRepository interface {
	Create(ctx context.Context, p CreateURLParams) (*entities.URL, error)
	FindExisting(ctx context.Context, originalURL, userID string) (string, error)
	ResolveForRedirect(ctx context.Context, code string) (*entities.URL, error)
	FindByOwner(ctx context.Context, shortCode, userID string) (*entities.URL, error)
	Update(ctx context.Context, shortCode, userID string, p UpdateURLParams) error
	Delete(ctx context.Context, shortCode, userID string) error
	IncrementClicks(ctx context.Context, shortCode string) error
	ListByOwner(ctx context.Context, userID string) ([]*entities.URL, error)
	AliasInUse(ctx context.Context, alias string) (bool, error)
}

type urlRepository struct {
	db *sql.DB
}

// NewURLRepository creates a new URL repository
func NewURLRepository(db *sql.DB) URLRepository {
	return &urlRepository{db: db}
}

const urlColumns = `id, short_code, custom_alias, original_url, user_id, password_hash,
		is_active, expires_at, activates_at, ios_url, android_url, total_clicks, created_at, updated_at`

func scanURL(row *sql.Row) (*entities.URL, error) {
	var u entities.URL
	err := row.Scan(
		&u.ID, &u.ShortCode, &u.CustomAlias, &u.OriginalURL, &u.UserID, &u.PasswordHash,
		&u.IsActive, &u.ExpiresAt, &u.ActivatesAt, &u.IOSURL, &u.AndroidURL,
		&u.TotalClicks, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new link. The unique indexes on short_code and
// custom_alias are authoritative: a losing racer gets ErrAliasTaken from the
// constraint violation, not from any pre-check.
func (r *urlRepository) Create(ctx context.Context, p CreateURLParams) (*entities.URL, error) {
	query := `
		INSERT INTO urls (short_code, custom_alias, original_url, user_id, password_hash,
			expires_at, activates_at, ios_url, android_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + urlColumns

	row := r.db.QueryRowContext(ctx, query,
		p.ShortCode, p.CustomAlias, p.OriginalURL, p.UserID, p.PasswordHash,
		p.ExpiresAt, p.ActivatesAt, p.IOSURL, p.AndroidURL,
	)

	url, err := scanURL(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperrors.ErrAliasTaken
		}
		return nil, fmt.Errorf("failed to create URL: %w", err)
	}

	return url, nil
}

// FindExisting returns the short code of an owner's existing plain link for
// the same destination, or ErrNotFound.
func (r *urlRepository) FindExisting(ctx context.Context, originalURL, userID string) (string, error) {
	query := `
		SELECT short_code FROM urls
		WHERE original_url = $1 AND user_id = $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	var shortCode string
	err := r.db.QueryRowContext(ctx, query, originalURL, userID).Scan(&shortCode)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up existing URL: %w", err)
	}

	return shortCode, nil
}

// ResolveForRedirect looks a link up by short code or custom alias in a
// single either-match query. Public path, so no ownership predicate.
func (r *urlRepository) ResolveForRedirect(ctx context.Context, code string) (*entities.URL, error) {
	query := `
		SELECT ` + urlColumns + `
		FROM urls
		WHERE short_code = $1 OR custom_alias = $1
	`

	url, err := scanURL(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve URL: %w", err)
	}

	return url, nil
}

// FindByOwner fetches a link with the combined code+owner predicate. A link
// owned by someone else is reported as ErrNotFound, never as forbidden.
func (r *urlRepository) FindByOwner(ctx context.Context, shortCode, userID string) (*entities.URL, error) {
	query := `
		SELECT ` + urlColumns + `
		FROM urls
		WHERE short_code = $1 AND user_id = $2
	`

	url, err := scanURL(r.db.QueryRowContext(ctx, query, shortCode, userID))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find URL: %w", err)
	}

	return url, nil
}

// Update applies a partial update under the same combined code+owner
// predicate used everywhere else.
func (r *urlRepository) Update(ctx context.Context, shortCode, userID string, p UpdateURLParams) error {
	query := `
		UPDATE urls SET
			original_url = COALESCE($3, original_url),
			custom_alias = COALESCE($4, custom_alias),
			expires_at   = CASE WHEN $5 THEN $6 ELSE expires_at END,
			activates_at = CASE WHEN $7 THEN $8 ELSE activates_at END,
			password_hash = CASE WHEN $9 THEN '' ELSE COALESCE($10, password_hash) END,
			is_active    = COALESCE($11, is_active),
			ios_url      = CASE WHEN $12 THEN $13 ELSE ios_url END,
			android_url  = CASE WHEN $12 THEN $14 ELSE android_url END,
			updated_at   = (NOW() AT TIME ZONE 'UTC')
		WHERE short_code = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		shortCode, userID,
		p.OriginalURL, p.CustomAlias,
		p.SetExpiresAt, p.ExpiresAt,
		p.SetActivates, p.ActivatesAt,
		p.ClearPassword, p.PasswordHash,
		p.IsActive,
		p.SetDeviceURLs, p.IOSURL, p.AndroidURL,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.ErrAliasTaken
		}
		return fmt.Errorf("failed to update URL: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a link under the combined code+owner predicate.
func (r *urlRepository) Delete(ctx context.Context, shortCode, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM urls WHERE short_code = $1 AND user_id = $2`, shortCode, userID)
	if err != nil {
		return fmt.Errorf("failed to delete URL: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// IncrementClicks bumps the denormalized click counter atomically in SQL;
// it is never read-modify-write in Go. A missing row is not an error for
// the caller, the redirect already happened.
func (r *urlRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE urls SET total_clicks = total_clicks + 1 WHERE short_code = $1`, shortCode)
	if err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}
	return nil
}

// ListByOwner returns all links belonging to a user, newest first.
func (r *urlRepository) ListByOwner(ctx context.Context, userID string) ([]*entities.URL, error) {
	query := `
		SELECT ` + urlColumns + `
		FROM urls
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	var urls []*entities.URL
	for rows.Next() {
		var u entities.URL
		err := rows.Scan(
			&u.ID, &u.ShortCode, &u.CustomAlias, &u.OriginalURL, &u.UserID, &u.PasswordHash,
			&u.IsActive, &u.ExpiresAt, &u.ActivatesAt, &u.IOSURL, &u.AndroidURL,
			&u.TotalClicks, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating URLs: %w", err)
	}

	return urls, nil
}

// AliasInUse checks the alias against the combined short_code + custom_alias
// key space. This pre-check is a best-effort courtesy only; the unique index
// at write time is what actually prevents duplicates.
func (r *urlRepository) AliasInUse(ctx context.Context, alias string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM urls WHERE short_code = $1 OR custom_alias = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, alias).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check alias: %w", err)
	}
	return exists, nil
}
