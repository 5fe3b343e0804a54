package userevents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

var (
	// ErrNotFound is returned when no join row matches (user, event).
	ErrNotFound = errors.New("user event not found")
	// ErrAlreadyEntered is returned when check-in is attempted twice.
	ErrAlreadyEntered = errors.New("user already entered")
	// ErrAlreadyAccepted is returned on a second acceptance attempt.
	ErrAlreadyAccepted = errors.New("invitation already accepted")
)

const columns = `id, user_id, event_id, COALESCE(invitation_url,''), email_status,
	accepted_invitation_status, is_enter, id_image, created_at, updated_at`

// Repository handles the (user, event) join entity. The table carries a
// UNIQUE (user_id, event_id) constraint so upserts are atomic.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user-events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scan(row pgx.Row) (*models.UserEvent, error) {
	var ue models.UserEvent
	err := row.Scan(&ue.ID, &ue.UserID, &ue.EventID, &ue.InvitationURL, &ue.EmailStatus,
		&ue.AcceptedInvitationStatus, &ue.IsEnter, &ue.IDImage, &ue.CreatedAt, &ue.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ue.IDImage == nil {
		ue.IDImage = []string{}
	}
	return &ue, nil
}

// Get returns the join row for (user, event).
func (r *Repository) Get(ctx context.Context, userID, eventID int64) (*models.UserEvent, error) {
	const q = `SELECT ` + columns + ` FROM user_events WHERE user_id = $1 AND event_id = $2`
	return scan(r.pool.QueryRow(ctx, q, userID, eventID))
}

// UpsertInvitation records a successful invitation send: creates the row
// if absent, otherwise replaces the token and marks the email sent. A
// repeated send updates rather than duplicates the row.
func (r *Repository) UpsertInvitation(ctx context.Context, userID, eventID int64, token string) (*models.UserEvent, error) {
	const q = `INSERT INTO user_events (user_id, event_id, invitation_url, email_status)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id, event_id) DO UPDATE
			SET invitation_url = EXCLUDED.invitation_url, email_status = TRUE, updated_at = NOW()
		RETURNING ` + columns
	return scan(r.pool.QueryRow(ctx, q, userID, eventID, token))
}

// Accept flips acceptedInvitationStatus and stores uploaded id image paths.
// A row already accepted returns ErrAlreadyAccepted and is left unchanged.
func (r *Repository) Accept(ctx context.Context, userID, eventID int64, idImages []string) (*models.UserEvent, error) {
	if idImages == nil {
		idImages = []string{}
	}
	const q = `UPDATE user_events
		SET accepted_invitation_status = TRUE, id_image = $3, updated_at = NOW()
		WHERE user_id = $1 AND event_id = $2 AND accepted_invitation_status = FALSE
		RETURNING ` + columns
	ue, err := scan(r.pool.QueryRow(ctx, q, userID, eventID, idImages))
	if errors.Is(err, ErrNotFound) {
		// Distinguish "no row" from "already accepted".
		if _, getErr := r.Get(ctx, userID, eventID); getErr == nil {
			return nil, ErrAlreadyAccepted
		}
		return nil, ErrNotFound
	}
	return ue, err
}

// MarkEntered flips isEnter exactly once. A second attempt returns
// ErrAlreadyEntered without changing state.
func (r *Repository) MarkEntered(ctx context.Context, userID, eventID int64) (*models.UserEvent, error) {
	const q = `UPDATE user_events SET is_enter = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND event_id = $2 AND is_enter = FALSE
		RETURNING ` + columns
	ue, err := scan(r.pool.QueryRow(ctx, q, userID, eventID))
	if errors.Is(err, ErrNotFound) {
		if existing, getErr := r.Get(ctx, userID, eventID); getErr == nil && existing.IsEnter {
			return nil, ErrAlreadyEntered
		}
		return nil, ErrNotFound
	}
	return ue, err
}

// InvitedUser pairs a join row with its user for export.
type InvitedUser struct {
	models.UserEvent
	User models.User `json:"user"`
}

// ListByEvent returns every invited user for an event, ordered by user id.
func (r *Repository) ListByEvent(ctx context.Context, eventID int64) ([]InvitedUser, error) {
	const q = `SELECT ue.id, ue.user_id, ue.event_id, COALESCE(ue.invitation_url,''), ue.email_status,
			ue.accepted_invitation_status, ue.is_enter, ue.id_image, ue.created_at, ue.updated_at,
			u.id, u.email, u.first_name, u.last_name, COALESCE(u.phone,''), COALESCE(u.title,''), COALESCE(u.company,'')
		FROM user_events ue JOIN users u ON u.id = ue.user_id
		WHERE ue.event_id = $1 ORDER BY u.id`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []InvitedUser
	for rows.Next() {
		var iu InvitedUser
		if err := rows.Scan(&iu.ID, &iu.UserID, &iu.EventID, &iu.InvitationURL, &iu.EmailStatus,
			&iu.AcceptedInvitationStatus, &iu.IsEnter, &iu.IDImage, &iu.CreatedAt, &iu.UpdatedAt,
			&iu.User.ID, &iu.User.Email, &iu.User.FirstName, &iu.User.LastName,
			&iu.User.Phone, &iu.User.Title, &iu.User.Company); err != nil {
			return nil, err
		}
		if iu.IDImage == nil {
			iu.IDImage = []string{}
		}
		list = append(list, iu)
	}
	return list, rows.Err()
}
