package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

const userColumns = `id, email, first_name, last_name, COALESCE(phone,''), COALESCE(title,''),
	COALESCE(company,''), COALESCE(comment,''), email_status, COALESCE(invitation_link,''),
	token_invalidated, created_at, updated_at`

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Title,
		&u.Company, &u.Comment, &u.EmailStatus, &u.InvitationLink,
		&u.TokenInvalidated, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by exact email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// CreateParams holds the fields accepted at user creation.
type CreateParams struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Title     string
	Company   string
	Comment   string
}

// Create inserts a new user. A duplicate email surfaces as a
// unique-constraint error for the handler to classify.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.User, error) {
	const q = `INSERT INTO users (email, first_name, last_name, phone, title, company, comment)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''))
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, p.Email, p.FirstName, p.LastName, p.Phone, p.Title, p.Company, p.Comment))
}

// Update applies non-empty fields of p to the user row.
func (r *Repository) Update(ctx context.Context, id int64, p CreateParams) (*models.User, error) {
	const q = `UPDATE users SET
			email = COALESCE(NULLIF($2,''), email),
			first_name = COALESCE(NULLIF($3,''), first_name),
			last_name = COALESCE(NULLIF($4,''), last_name),
			phone = COALESCE(NULLIF($5,''), phone),
			title = COALESCE(NULLIF($6,''), title),
			company = COALESCE(NULLIF($7,''), company),
			comment = COALESCE(NULLIF($8,''), comment),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, id, p.Email, p.FirstName, p.LastName, p.Phone, p.Title, p.Company, p.Comment))
}

// ApplyProfilePatch overwrites profile fields with the acceptance form data.
// Unlike Update, submitted values win even when empty: the form is the
// source of truth at acceptance time.
func (r *Repository) ApplyProfilePatch(ctx context.Context, id int64, email, phone, title, company, comment string) error {
	const q = `UPDATE users SET
			email = COALESCE(NULLIF($2,''), email),
			phone = $3, title = $4, company = $5, comment = $6,
			updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, email, phone, title, company, comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetInvitationSent records a successful invitation send on the user row.
func (r *Repository) SetInvitationSent(ctx context.Context, id int64, token string) error {
	const q = `UPDATE users SET email_status = TRUE, invitation_link = $2, token_invalidated = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, token)
	return err
}

// Delete removes a user; join rows, answers and tag memberships cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of users, optionally filtered by a case-insensitive
// email/name search.
func (r *Repository) List(ctx context.Context, p response.ListParams) ([]models.User, int, error) {
	where := ""
	args := []interface{}{}
	if p.Search != "" {
		where = ` WHERE email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1`
		args = append(args, "%"+p.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + userColumns + ` FROM users` + where +
		fmt.Sprintf(` ORDER BY %s %s`, p.SortBy, p.SortDir)
	if !p.All {
		q += fmt.Sprintf(` LIMIT %d OFFSET %d`, p.Limit, p.Offset())
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *u)
	}
	return list, total, rows.Err()
}

// SearchByEmail returns users whose email contains the fragment.
func (r *Repository) SearchByEmail(ctx context.Context, fragment string) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email ILIKE $1 ORDER BY email`, "%"+fragment+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, rows.Err()
}

// ListAll returns every user, for the "all users" bulk-send audience.
func (r *Repository) ListAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, rows.Err()
}

// ListByIDs returns the users matching the given ids, preserving no
// particular order. Missing ids are silently skipped; the notification
// workflow reports them per-recipient.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, rows.Err()
}

// TagsFor loads the tags attached to a user.
func (r *Repository) TagsFor(ctx context.Context, userID int64) ([]models.Tag, error) {
	const q = `SELECT t.id, t.tag_name, t.created_at FROM tags t
		JOIN user_tags ut ON ut.tag_id = t.id WHERE ut.user_id = $1 ORDER BY t.tag_name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.TagName, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
