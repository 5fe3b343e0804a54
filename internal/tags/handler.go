package tags

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/pkg/database"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// TagRequest is the body for tag create and update.
type TagRequest struct {
	TagName string `json:"tagName" binding:"required"`
}

// MemberRequest is the body for attaching/detaching a user.
type MemberRequest struct {
	UserID int64 `json:"userId" binding:"required"`
}

// Handler handles tag HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a tags handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /tags.
func (h *Handler) Create(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tag, err := h.repo.Create(c.Request.Context(), req.TagName)
	if err != nil {
		if database.IsUniqueViolation(err) {
			response.Conflict(c, "tag name already exists")
			return
		}
		h.logger.Error("create tag failed", zap.Error(err))
		response.Internal(c, "failed to create tag")
		return
	}
	response.Created(c, tag)
}

// List handles GET /tags.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list tags")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /tags/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tag id")
		return
	}
	tag, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "tag not found")
			return
		}
		response.Internal(c, "failed to load tag")
		return
	}
	response.OK(c, tag)
}

// Update handles PUT /tags/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tag id")
		return
	}
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	tag, err := h.repo.Update(c.Request.Context(), id, req.TagName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "tag not found")
			return
		}
		if database.IsUniqueViolation(err) {
			response.Conflict(c, "tag name already exists")
			return
		}
		response.Internal(c, "failed to update tag")
		return
	}
	response.OK(c, tag)
}

// Delete handles DELETE /tags/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tag id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "tag not found")
			return
		}
		response.Internal(c, "failed to delete tag")
		return
	}
	response.OK(c, gin.H{"message": "tag deleted"})
}

// AddMember handles POST /tags/:id/users with the user id in the body.
func (h *Handler) AddMember(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tag id")
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "tag not found")
		return
	}
	if err := h.repo.AddUser(c.Request.Context(), id, req.UserID); err != nil {
		response.Internal(c, "failed to add user to tag")
		return
	}
	response.OK(c, gin.H{"message": "user added to tag"})
}

// RemoveMember handles DELETE /tags/:id/users/:userId.
func (h *Handler) RemoveMember(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid tag id")
		return
	}
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.RemoveUser(c.Request.Context(), id, userID); err != nil {
		response.Internal(c, "failed to remove user from tag")
		return
	}
	response.OK(c, gin.H{"message": "user removed from tag"})
}
