package answers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// CreateRequest is the body for POST /user-answers.
type CreateRequest struct {
	UserID     int64  `json:"userId" binding:"required"`
	QuestionID int64  `json:"questionId" binding:"required"`
	EventID    int64  `json:"eventId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// UpdateRequest is the body for PUT /user-answers/:id.
type UpdateRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// Handler handles user answer HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an answers handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /user-answers.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, err := h.repo.Create(c.Request.Context(), req.UserID, req.QuestionID, req.EventID, req.Answer)
	if err != nil {
		h.logger.Error("create answer failed", zap.Error(err))
		response.Internal(c, "failed to create answer")
		return
	}
	response.Created(c, a)
}

// ListByUser handles GET /user-answers/user/:userId and
// GET /user-answers/user/:userId/:eventId.
func (h *Handler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var eventID *int64
	if v := c.Param("eventId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid event id")
			return
		}
		eventID = &id
	}
	list, err := h.repo.ListByUser(c.Request.Context(), userID, eventID)
	if err != nil {
		response.Internal(c, "failed to list answers")
		return
	}
	response.OK(c, list)
}

// Update handles PUT /user-answers/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid answer id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, err := h.repo.Update(c.Request.Context(), id, req.Answer)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user answer not found")
			return
		}
		response.Internal(c, "failed to update answer")
		return
	}
	response.OK(c, a)
}

// Delete handles DELETE /user-answers/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid answer id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user answer not found")
			return
		}
		response.Internal(c, "failed to delete answer")
		return
	}
	response.OK(c, gin.H{"id": id})
}
