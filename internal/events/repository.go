package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// ErrNotFound is returned when no event matches the lookup.
var ErrNotFound = errors.New("event not found")

const columns = `id, event_name, COALESCE(event_page,''), COALESCE(event_banner_image,''),
	COALESCE(apologize_content,''), COALESCE(accepted_content,''),
	COALESCE(invitation_subject,''), COALESCE(verification_subject,''),
	id_image_mode, created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scan(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.EventName, &e.EventPage, &e.EventBannerImage,
		&e.ApologizeContent, &e.AcceptedContent,
		&e.InvitationSubject, &e.VerificationSubject,
		&e.IDImageMode, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Params holds event fields for create and update.
type Params struct {
	EventName           string
	EventPage           string
	EventBannerImage    string
	ApologizeContent    string
	AcceptedContent     string
	InvitationSubject   string
	VerificationSubject string
	IDImageMode         models.IDImageMode
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, p Params) (*models.Event, error) {
	if p.IDImageMode == "" {
		p.IDImageMode = models.IDImageDisabled
	}
	const q = `INSERT INTO events
			(event_name, event_page, event_banner_image, apologize_content, accepted_content,
			 invitation_subject, verification_subject, id_image_mode)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,''), $8)
		RETURNING ` + columns
	return scan(r.pool.QueryRow(ctx, q, p.EventName, p.EventPage, p.EventBannerImage,
		p.ApologizeContent, p.AcceptedContent, p.InvitationSubject, p.VerificationSubject, p.IDImageMode))
}

// GetByID returns an event by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM events WHERE id = $1`, id))
}

// Update applies non-empty fields of p to the event.
func (r *Repository) Update(ctx context.Context, id int64, p Params) (*models.Event, error) {
	const q = `UPDATE events SET
			event_name = COALESCE(NULLIF($2,''), event_name),
			event_page = COALESCE(NULLIF($3,''), event_page),
			event_banner_image = COALESCE(NULLIF($4,''), event_banner_image),
			apologize_content = COALESCE(NULLIF($5,''), apologize_content),
			accepted_content = COALESCE(NULLIF($6,''), accepted_content),
			invitation_subject = COALESCE(NULLIF($7,''), invitation_subject),
			verification_subject = COALESCE(NULLIF($8,''), verification_subject),
			id_image_mode = COALESCE(NULLIF($9,''), id_image_mode),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + columns
	return scan(r.pool.QueryRow(ctx, q, id, p.EventName, p.EventPage, p.EventBannerImage,
		p.ApologizeContent, p.AcceptedContent, p.InvitationSubject, p.VerificationSubject, string(p.IDImageMode)))
}

// Delete removes an event; templates, questions and join rows cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of events, optionally filtered by name search.
func (r *Repository) List(ctx context.Context, p response.ListParams) ([]models.Event, int, error) {
	where := ""
	args := []interface{}{}
	if p.Search != "" {
		where = ` WHERE event_name ILIKE $1`
		args = append(args, "%"+p.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + columns + ` FROM events` + where +
		fmt.Sprintf(` ORDER BY %s %s`, p.SortBy, p.SortDir)
	if !p.All {
		q += fmt.Sprintf(` LIMIT %d OFFSET %d`, p.Limit, p.Offset())
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *e)
	}
	return list, total, rows.Err()
}
