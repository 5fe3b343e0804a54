package templates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

var (
	// ErrNotFound is returned when no template matches the lookup.
	ErrNotFound = errors.New("email template not found")
	// ErrExists is returned when the event already has a template of this
	// kind; each event holds at most one of each.
	ErrExists = errors.New("email template already exists for this event")
)

// Repository handles one kind of per-event email template. Two instances
// exist, one over event_email_templates (invitation) and one over
// verified_email_templates (confirmation).
type Repository struct {
	pool  *pgxpool.Pool
	table string
	kind  models.TemplateKind
}

// NewInvitationRepository creates the repository for invitation templates.
func NewInvitationRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, table: "event_email_templates", kind: models.TemplateInvitation}
}

// NewVerifiedRepository creates the repository for confirmation templates.
func NewVerifiedRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, table: "verified_email_templates", kind: models.TemplateVerified}
}

// Kind returns which template kind this repository serves.
func (r *Repository) Kind() models.TemplateKind { return r.kind }

// Create inserts a template for an event. The table's unique event_id
// constraint rejects a second template per event.
func (r *Repository) Create(ctx context.Context, eventID int64, html string, design []byte) (*models.EmailTemplate, error) {
	q := `INSERT INTO ` + r.table + ` (event_id, template_html, template_design)
		VALUES ($1, $2, $3) RETURNING id, event_id, template_html, COALESCE(template_design, 'null'), created_at, updated_at`
	var t models.EmailTemplate
	err := r.pool.QueryRow(ctx, q, eventID, html, nullable(design)).
		Scan(&t.ID, &t.EventID, &t.TemplateHTML, &t.Design, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns a template by its id, with the owning event's name.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.EmailTemplate, error) {
	q := `SELECT t.id, t.event_id, t.template_html, COALESCE(t.template_design, 'null'), t.created_at, t.updated_at, e.event_name
		FROM ` + r.table + ` t JOIN events e ON e.id = t.event_id WHERE t.id = $1`
	var t models.EmailTemplate
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&t.ID, &t.EventID, &t.TemplateHTML, &t.Design, &t.CreatedAt, &t.UpdatedAt, &t.EventName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByEvent returns the template owned by an event.
func (r *Repository) GetByEvent(ctx context.Context, eventID int64) (*models.EmailTemplate, error) {
	q := `SELECT id, event_id, template_html, COALESCE(template_design, 'null'), created_at, updated_at
		FROM ` + r.table + ` WHERE event_id = $1`
	var t models.EmailTemplate
	err := r.pool.QueryRow(ctx, q, eventID).
		Scan(&t.ID, &t.EventID, &t.TemplateHTML, &t.Design, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all templates of this kind with their event names.
func (r *Repository) List(ctx context.Context) ([]models.EmailTemplate, error) {
	q := `SELECT t.id, t.event_id, t.template_html, COALESCE(t.template_design, 'null'), t.created_at, t.updated_at, e.event_name
		FROM ` + r.table + ` t JOIN events e ON e.id = t.event_id ORDER BY t.id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.EmailTemplate
	for rows.Next() {
		var t models.EmailTemplate
		if err := rows.Scan(&t.ID, &t.EventID, &t.TemplateHTML, &t.Design, &t.CreatedAt, &t.UpdatedAt, &t.EventName); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update replaces the template HTML and design.
func (r *Repository) Update(ctx context.Context, id int64, html string, design []byte) (*models.EmailTemplate, error) {
	q := `UPDATE ` + r.table + ` SET template_html = $2, template_design = $3, updated_at = NOW()
		WHERE id = $1 RETURNING id, event_id, template_html, COALESCE(template_design, 'null'), created_at, updated_at`
	var t models.EmailTemplate
	err := r.pool.QueryRow(ctx, q, id, html, nullable(design)).
		Scan(&t.ID, &t.EventID, &t.TemplateHTML, &t.Design, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a template.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
