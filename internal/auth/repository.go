package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

// ErrNotFound is returned when no admin matches the lookup.
var ErrNotFound = errors.New("admin not found")

// Repository handles admin persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmail returns an admin by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	const q = `SELECT id, email, password_hash, COALESCE(reset_token,''), reset_token_expires_at, created_at, updated_at
		FROM admins WHERE email = $1`
	var a models.Admin
	err := r.pool.QueryRow(ctx, q, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.ResetToken, &a.ResetTokenExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID returns an admin by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	const q = `SELECT id, email, password_hash, COALESCE(reset_token,''), reset_token_expires_at, created_at, updated_at
		FROM admins WHERE id = $1`
	var a models.Admin
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.ResetToken, &a.ResetTokenExpiresAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new admin.
func (r *Repository) Create(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	const q = `INSERT INTO admins (email, password_hash) VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at, updated_at`
	var a models.Admin
	err := r.pool.QueryRow(ctx, q, email, passwordHash).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetResetToken stores a password reset token with expiry.
func (r *Repository) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	const q = `UPDATE admins SET reset_token = $2, reset_token_expires_at = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, token, expiresAt)
	return err
}

// ResetPassword updates the password if the reset token matches and has not
// expired, clearing the token.
func (r *Repository) ResetPassword(ctx context.Context, token, passwordHash string) error {
	const q = `UPDATE admins
		SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE reset_token = $1 AND reset_token_expires_at > NOW()`
	tag, err := r.pool.Exec(ctx, q, token, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
