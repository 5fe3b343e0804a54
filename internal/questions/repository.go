package questions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
)

// ErrNotFound is returned when no question matches the lookup.
var ErrNotFound = errors.New("question not found")

// Repository handles question persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Params holds fields for question create and update.
type Params struct {
	Question   string
	Answers    []string
	AnswerType models.AnswerType
}

// CreateBatch inserts all questions for an event in one transaction, so a
// partially valid batch never leaves stragglers behind.
func (r *Repository) CreateBatch(ctx context.Context, eventID int64, batch []Params) ([]models.Question, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO questions (event_id, question, answers, answer_type)
		VALUES ($1, $2, $3, $4) RETURNING id, event_id, question, answers, answer_type, created_at`
	created := make([]models.Question, 0, len(batch))
	for _, p := range batch {
		var m models.Question
		if err := tx.QueryRow(ctx, q, eventID, p.Question, p.Answers, p.AnswerType).
			Scan(&m.ID, &m.EventID, &m.Question, &m.Answers, &m.AnswerType, &m.CreatedAt); err != nil {
			return nil, err
		}
		created = append(created, m)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns a question by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	const q = `SELECT id, event_id, question, answers, answer_type, created_at FROM questions WHERE id = $1`
	var m models.Question
	err := r.pool.QueryRow(ctx, q, id).Scan(&m.ID, &m.EventID, &m.Question, &m.Answers, &m.AnswerType, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByEvent returns all questions for an event in creation order.
func (r *Repository) ListByEvent(ctx context.Context, eventID int64) ([]models.Question, error) {
	const q = `SELECT id, event_id, question, answers, answer_type, created_at
		FROM questions WHERE event_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Question
	for rows.Next() {
		var m models.Question
		if err := rows.Scan(&m.ID, &m.EventID, &m.Question, &m.Answers, &m.AnswerType, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update applies non-zero fields of p to the question.
func (r *Repository) Update(ctx context.Context, id int64, p Params) (*models.Question, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Question == "" {
		p.Question = existing.Question
	}
	if p.Answers == nil {
		p.Answers = existing.Answers
	}
	if p.AnswerType == "" {
		p.AnswerType = existing.AnswerType
	}
	const q = `UPDATE questions SET question = $2, answers = $3, answer_type = $4 WHERE id = $1
		RETURNING id, event_id, question, answers, answer_type, created_at`
	var m models.Question
	if err := r.pool.QueryRow(ctx, q, id, p.Question, p.Answers, p.AnswerType).
		Scan(&m.ID, &m.EventID, &m.Question, &m.Answers, &m.AnswerType, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a question; its answers cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EventsWithQuestions returns events that have at least one question,
// newest first.
func (r *Repository) EventsWithQuestions(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT DISTINCT e.id, e.event_name, COALESCE(e.event_page,''), COALESCE(e.event_banner_image,''), e.created_at
		FROM events e JOIN questions qn ON qn.event_id = e.id
		ORDER BY e.created_at DESC, e.id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.EventName, &e.EventPage, &e.EventBannerImage, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
