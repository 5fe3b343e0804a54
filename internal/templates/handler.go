package templates

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/events"
	"github.com/youssifElhelaly12/rayaBackend/pkg/database"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// TemplateRequest is the body for template create and update.
type TemplateRequest struct {
	EventID      int64           `json:"eventId" binding:"required"`
	TemplateHTML string          `json:"templateHtml" binding:"required"`
	Design       json.RawMessage `json:"design"`
}

// Handler serves one kind of per-event template; it is mounted twice, at
// /eventEmailTemplates and /verifiedEmailTemplates.
type Handler struct {
	repo      *Repository
	eventRepo *events.Repository
	logger    *zap.Logger
}

// NewHandler creates a templates handler.
func NewHandler(repo *Repository, eventRepo *events.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, eventRepo: eventRepo, logger: logger}
}

// Create handles POST; 409 when the event already has one.
func (h *Handler) Create(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.eventRepo.GetByID(c.Request.Context(), req.EventID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	t, err := h.repo.Create(c.Request.Context(), req.EventID, req.TemplateHTML, req.Design)
	if err != nil {
		if database.IsUniqueViolation(err) {
			response.Conflict(c, "an email template already exists for this event")
			return
		}
		h.logger.Error("create template failed", zap.Error(err), zap.Int64("event_id", req.EventID))
		response.Internal(c, "failed to create template")
		return
	}
	response.Created(c, t)
}

// List handles GET.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list templates")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "email template not found")
			return
		}
		response.Internal(c, "failed to load template")
		return
	}
	response.OK(c, t)
}

// GetByEvent handles the per-event lookup, mounted under /events/:id.
func (h *Handler) GetByEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	t, err := h.repo.GetByEvent(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "email template not found")
			return
		}
		response.Internal(c, "failed to load template")
		return
	}
	response.OK(c, t)
}

// Update handles PUT /:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	var req struct {
		TemplateHTML string          `json:"templateHtml" binding:"required"`
		Design       json.RawMessage `json:"design"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t, err := h.repo.Update(c.Request.Context(), id, req.TemplateHTML, req.Design)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "email template not found")
			return
		}
		response.Internal(c, "failed to update template")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "email template not found")
			return
		}
		response.Internal(c, "failed to delete template")
		return
	}
	response.NoContent(c)
}
