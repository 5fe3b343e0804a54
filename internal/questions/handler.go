package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// EventStore is the slice of the events repository the handler needs.
type EventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

// QuestionRequest is one question in a create batch.
type QuestionRequest struct {
	Question   string   `json:"question"`
	Answers    []string `json:"answers"`
	AnswerType string   `json:"answerType"`
}

func (q QuestionRequest) validate(i int) []string {
	var fields []string
	if q.Question == "" {
		fields = append(fields, fmt.Sprintf("questions[%d]: question is required", i))
	}
	if len(q.Answers) == 0 {
		fields = append(fields, fmt.Sprintf("questions[%d]: answers is required", i))
	}
	switch models.AnswerType(q.AnswerType) {
	case models.AnswerTypeDropdown, models.AnswerTypeSelect, models.AnswerTypeRadio:
	default:
		fields = append(fields, fmt.Sprintf("questions[%d]: answerType must be dropdown, select or radio", i))
	}
	return fields
}

// Handler handles question HTTP endpoints.
type Handler struct {
	repo      *Repository
	eventRepo EventStore
	logger    *zap.Logger
}

// NewHandler creates a questions handler.
func NewHandler(repo *Repository, eventRepo EventStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, logger: logger}
}

// Create handles POST /events/:id/questions. The body may be a single
// question object or an array of them.
func (h *Handler) Create(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}
	var batch []QuestionRequest
	if err := json.Unmarshal(body, &batch); err != nil {
		var single QuestionRequest
		if err := json.Unmarshal(body, &single); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
		batch = []QuestionRequest{single}
	}
	if len(batch) == 0 {
		response.BadRequest(c, "at least one question is required")
		return
	}

	var fields []string
	for i, q := range batch {
		fields = append(fields, q.validate(i)...)
	}
	if len(fields) > 0 {
		response.ValidationFailed(c, fields)
		return
	}

	if _, err := h.eventRepo.GetByID(c.Request.Context(), eventID); err != nil {
		response.NotFound(c, "event not found")
		return
	}

	params := make([]Params, len(batch))
	for i, q := range batch {
		params[i] = Params{Question: q.Question, Answers: q.Answers, AnswerType: models.AnswerType(q.AnswerType)}
	}
	created, err := h.repo.CreateBatch(c.Request.Context(), eventID, params)
	if err != nil {
		h.logger.Error("create questions failed", zap.Error(err), zap.Int64("event_id", eventID))
		response.Internal(c, "failed to create questions")
		return
	}
	response.Created(c, created)
}

// ListByEvent handles GET /events/:id/questions, returning the event
// summary alongside its questions.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	qs, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list questions")
		return
	}
	response.OK(c, gin.H{
		"event": gin.H{
			"id":               event.ID,
			"eventName":        event.EventName,
			"eventPage":        event.EventPage,
			"eventBannerImage": event.EventBannerImage,
		},
		"questions": qs,
	})
}

// GetByID handles GET /questions/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	q, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "question not found")
			return
		}
		response.Internal(c, "failed to load question")
		return
	}
	response.OK(c, q)
}

// Update handles PUT /questions/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.AnswerType != "" {
		switch models.AnswerType(req.AnswerType) {
		case models.AnswerTypeDropdown, models.AnswerTypeSelect, models.AnswerTypeRadio:
		default:
			response.BadRequest(c, "answerType must be dropdown, select or radio")
			return
		}
	}
	q, err := h.repo.Update(c.Request.Context(), id, Params{
		Question:   req.Question,
		Answers:    req.Answers,
		AnswerType: models.AnswerType(req.AnswerType),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "question not found")
			return
		}
		response.Internal(c, "failed to update question")
		return
	}
	response.OK(c, q)
}

// Delete handles DELETE /questions/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "question not found")
			return
		}
		response.Internal(c, "failed to delete question")
		return
	}
	response.NoContent(c)
}

// EventsWithQuestions handles GET /eventsWithQuestions.
func (h *Handler) EventsWithQuestions(c *gin.Context) {
	list, err := h.repo.EventsWithQuestions(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}
