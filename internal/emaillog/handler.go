package emaillog

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/pkg/queue"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// LogRepo is the slice of the repository the handler reads.
type LogRepo interface {
	GetByID(ctx context.Context, id int64) (*models.EmailLog, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.EmailLog, error)
}

// Enqueuer pushes email jobs onto the worker queue.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, jobType queue.JobType, payload queue.EmailPayload) error
}

// Handler exposes the per-event delivery log and the resend action.
type Handler struct {
	repo   LogRepo
	queue  Enqueuer
	logger *zap.Logger
}

func NewHandler(repo LogRepo, q Enqueuer, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, queue: q, logger: logger}
}

// ListByEvent returns the email delivery log for an event.
// GET /events/:id/emails
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	logs, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("list email logs", zap.Int64("event_id", eventID), zap.Error(err))
		response.Internal(c, "failed to list email logs")
		return
	}
	response.OK(c, logs)
}

// Resend enqueues a fresh delivery attempt for a logged email. The job
// type follows the logged email type, so a failed confirmation is resent
// as a confirmation rather than a new invitation.
// POST /events/:id/emails/:logId/resend
func (h *Handler) Resend(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	logID, err := strconv.ParseInt(c.Param("logId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid log id")
		return
	}

	log, err := h.repo.GetByID(c.Request.Context(), logID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "email log not found")
		return
	}
	if err != nil {
		h.logger.Error("get email log", zap.Int64("log_id", logID), zap.Error(err))
		response.Internal(c, "failed to load email log")
		return
	}
	if log.EventID == nil || *log.EventID != eventID || log.UserID == nil {
		response.NotFound(c, "email log not found")
		return
	}

	jobType := queue.JobTypeResend
	if log.EmailType == models.EmailTypeConfirmation {
		jobType = queue.JobTypeConfirmation
	}
	err = h.queue.EnqueueEmail(c.Request.Context(), jobType, queue.EmailPayload{
		UserID:  *log.UserID,
		EventID: eventID,
		LogID:   log.ID,
		To:      log.RecipientEmail,
	})
	if err != nil {
		h.logger.Error("enqueue resend", zap.Int64("log_id", logID), zap.Error(err))
		response.Internal(c, "failed to enqueue resend")
		return
	}
	response.OK(c, gin.H{"message": "resend queued", "logId": log.ID})
}
