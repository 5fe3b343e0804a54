package notifications

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// Handler exposes the invitation send endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// BulkRequest targets an event, optionally narrowing the audience to a tag.
type BulkRequest struct {
	EventID int64 `json:"eventId" binding:"required"`
	TagID   int64 `json:"tagId"`
}

// BulkUsersRequest targets an explicit list of users.
type BulkUsersRequest struct {
	EventID int64   `json:"eventId" binding:"required"`
	UserIDs []int64 `json:"userIds" binding:"required,min=1"`
}

// SingleRequest targets one user by path param, the event in the body.
type SingleRequest struct {
	EventID int64 `json:"eventId" binding:"required"`
}

// SendBulk sends invitations to all users, or to a tag's members.
// POST /email/bulk
func (h *Handler) SendBulk(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "eventId is required")
		return
	}
	report, err := h.service.SendBulk(c.Request.Context(), req.EventID, Audience{TagID: req.TagID})
	if err != nil {
		h.sendError(c, err)
		return
	}
	response.OK(c, report)
}

// SendBulkUsers sends invitations to an explicit user list.
// POST /email/bulk-users
func (h *Handler) SendBulkUsers(c *gin.Context) {
	var req BulkUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "eventId and a non-empty userIds list are required")
		return
	}
	report, err := h.service.SendBulk(c.Request.Context(), req.EventID, Audience{UserIDs: req.UserIDs})
	if err != nil {
		h.sendError(c, err)
		return
	}
	response.OK(c, report)
}

// SendSingle sends the invitation to one user.
// POST /email/single/:userId
func (h *Handler) SendSingle(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "eventId is required")
		return
	}
	result, err := h.service.SendSingle(c.Request.Context(), req.EventID, userID)
	if err != nil {
		h.sendError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		response.NotFound(c, "event not found")
	case errors.Is(err, ErrTemplateNotFound):
		response.NotFound(c, "no invitation template found for this event")
	case errors.Is(err, ErrTagNotFound):
		response.NotFound(c, "tag not found")
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(c, "user not found")
	default:
		h.logger.Error("send invitations", zap.Error(err))
		response.Internal(c, "failed to send invitations")
	}
}
