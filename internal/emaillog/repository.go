package emaillog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

// ErrNotFound is returned when no log row matches.
var ErrNotFound = errors.New("email log not found")

// Repository persists the outbound email delivery log.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const logColumns = `id, event_id, user_id, email_type, recipient_email,
	COALESCE(subject, ''), status, sent_at, COALESCE(error_message, ''), created_at`

func scanLog(row pgx.Row) (*models.EmailLog, error) {
	var l models.EmailLog
	err := row.Scan(&l.ID, &l.EventID, &l.UserID, &l.EmailType, &l.RecipientEmail,
		&l.Subject, &l.Status, &l.SentAt, &l.ErrorMessage, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a pending log row and returns it.
func (r *Repository) Create(ctx context.Context, eventID, userID int64, emailType, recipient, subject string) (*models.EmailLog, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO email_logs (event_id, user_id, email_type, recipient_email, subject, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING `+logColumns,
		eventID, userID, emailType, recipient, subject)
	return scanLog(row)
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE email_logs SET status = 'sent', sent_at = $2, error_message = NULL
		WHERE id = $1`, id, time.Now())
	return err
}

// MarkFailed records a delivery failure with its error message.
func (r *Repository) MarkFailed(ctx context.Context, id int64, msg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE email_logs SET status = 'failed', error_message = $2
		WHERE id = $1`, id, msg)
	return err
}

// GetByID returns one log row.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.EmailLog, error) {
	l, err := scanLog(r.pool.QueryRow(ctx,
		`SELECT `+logColumns+` FROM email_logs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

// ListByEvent returns the delivery log for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID int64) ([]models.EmailLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+logColumns+`
		FROM email_logs
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.EmailLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}
