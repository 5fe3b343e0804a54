package answers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

// ErrNotFound is returned when no answer matches the lookup.
var ErrNotFound = errors.New("user answer not found")

// Repository handles user answer persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an answers repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts one answer scoped to (user, question, event).
func (r *Repository) Create(ctx context.Context, userID, questionID, eventID int64, answer string) (*models.UserAnswer, error) {
	const q = `INSERT INTO user_answers (user_id, question_id, event_id, answer)
		VALUES ($1, $2, $3, $4) RETURNING id, user_id, question_id, event_id, answer, created_at`
	var a models.UserAnswer
	if err := r.pool.QueryRow(ctx, q, userID, questionID, eventID, answer).
		Scan(&a.ID, &a.UserID, &a.QuestionID, &a.EventID, &a.Answer, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateBatch inserts all answers in one transaction.
func (r *Repository) CreateBatch(ctx context.Context, userID, eventID int64, byQuestion map[int64]string) error {
	if len(byQuestion) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO user_answers (user_id, question_id, event_id, answer) VALUES ($1, $2, $3, $4)`
	for questionID, answer := range byQuestion {
		if _, err := tx.Exec(ctx, q, userID, questionID, eventID, answer); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListByUser returns a user's answers, optionally scoped to one event.
func (r *Repository) ListByUser(ctx context.Context, userID int64, eventID *int64) ([]models.UserAnswer, error) {
	q := `SELECT id, user_id, question_id, event_id, answer, created_at FROM user_answers WHERE user_id = $1`
	args := []interface{}{userID}
	if eventID != nil {
		q += ` AND event_id = $2`
		args = append(args, *eventID)
	}
	q += ` ORDER BY id`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.UserAnswer
	for rows.Next() {
		var a models.UserAnswer
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.EventID, &a.Answer, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByID returns an answer by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.UserAnswer, error) {
	const q = `SELECT id, user_id, question_id, event_id, answer, created_at FROM user_answers WHERE id = $1`
	var a models.UserAnswer
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.UserID, &a.QuestionID, &a.EventID, &a.Answer, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update changes the answer text.
func (r *Repository) Update(ctx context.Context, id int64, answer string) (*models.UserAnswer, error) {
	const q = `UPDATE user_answers SET answer = $2 WHERE id = $1
		RETURNING id, user_id, question_id, event_id, answer, created_at`
	var a models.UserAnswer
	err := r.pool.QueryRow(ctx, q, id, answer).Scan(&a.ID, &a.UserID, &a.QuestionID, &a.EventID, &a.Answer, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes an answer.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_answers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// HasAnswers reports whether the user already submitted answers for the
// event, guarding against duplicate answer sets on double accept.
func (r *Repository) HasAnswers(ctx context.Context, userID, eventID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_answers WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID).Scan(&exists)
	return exists, err
}

// MapByEvent returns every answer for an event keyed by user id then
// question id, for the CSV export.
func (r *Repository) MapByEvent(ctx context.Context, eventID int64) (map[int64]map[int64]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, question_id, answer FROM user_answers WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]map[int64]string)
	for rows.Next() {
		var userID, questionID int64
		var answer string
		if err := rows.Scan(&userID, &questionID, &answer); err != nil {
			return nil, err
		}
		if out[userID] == nil {
			out[userID] = make(map[int64]string)
		}
		out[userID][questionID] = answer
	}
	return out, rows.Err()
}
