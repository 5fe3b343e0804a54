package tags

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

// ErrNotFound is returned when no tag matches the lookup.
var ErrNotFound = errors.New("tag not found")

// Repository handles tag persistence and user membership.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tags repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a tag. Duplicate names surface as unique-constraint errors.
func (r *Repository) Create(ctx context.Context, name string) (*models.Tag, error) {
	const q = `INSERT INTO tags (tag_name) VALUES ($1) RETURNING id, tag_name, created_at`
	var t models.Tag
	if err := r.pool.QueryRow(ctx, q, name).Scan(&t.ID, &t.TagName, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns a tag by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	var t models.Tag
	err := r.pool.QueryRow(ctx, `SELECT id, tag_name, created_at FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.TagName, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tags with their member counts.
func (r *Repository) List(ctx context.Context) ([]TagWithCount, error) {
	const q = `SELECT t.id, t.tag_name, t.created_at, COUNT(ut.user_id)
		FROM tags t LEFT JOIN user_tags ut ON ut.tag_id = t.id
		GROUP BY t.id ORDER BY t.tag_name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TagWithCount
	for rows.Next() {
		var t TagWithCount
		if err := rows.Scan(&t.ID, &t.TagName, &t.CreatedAt, &t.UserCount); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// TagWithCount is a tag with its member count for list views.
type TagWithCount struct {
	models.Tag
	UserCount int `json:"userCount"`
}

// Update renames a tag.
func (r *Repository) Update(ctx context.Context, id int64, name string) (*models.Tag, error) {
	const q = `UPDATE tags SET tag_name = $2 WHERE id = $1 RETURNING id, tag_name, created_at`
	var t models.Tag
	err := r.pool.QueryRow(ctx, q, id, name).Scan(&t.ID, &t.TagName, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a tag; memberships cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddUser attaches a user to a tag. Re-adding is a no-op.
func (r *Repository) AddUser(ctx context.Context, tagID, userID int64) error {
	const q = `INSERT INTO user_tags (user_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, q, userID, tagID)
	return err
}

// RemoveUser detaches a user from a tag.
func (r *Repository) RemoveUser(ctx context.Context, tagID, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_tags WHERE user_id = $1 AND tag_id = $2`, userID, tagID)
	return err
}

// MemberIDs returns the user ids attached to a tag, for audience
// resolution in bulk sends.
func (r *Repository) MemberIDs(ctx context.Context, tagID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM user_tags WHERE tag_id = $1 ORDER BY user_id`, tagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
