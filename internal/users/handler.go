package users

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/tags"
	"github.com/youssifElhelaly12/rayaBackend/pkg/database"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

var listSorts = map[string]string{
	"id":        "id",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"company":   "company",
	"createdAt": "created_at",
}

// CreateRequest is the body for POST /users.
type CreateRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Comment   string `json:"comment"`
	TagID     int64  `json:"tagId"`
}

// UpdateRequest is the body for PUT /users/:id. Empty fields are left
// unchanged.
type UpdateRequest struct {
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Comment   string `json:"comment"`
}

// Handler handles user HTTP endpoints.
type Handler struct {
	repo    *Repository
	tagRepo *tags.Repository
	logger  *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, tagRepo *tags.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, tagRepo: tagRepo, logger: logger}
}

// Create handles POST /users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if req.TagID != 0 {
		if _, err := h.tagRepo.GetByID(c.Request.Context(), req.TagID); err != nil {
			response.NotFound(c, "tag not found")
			return
		}
	}

	user, err := h.repo.Create(c.Request.Context(), CreateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Title:     req.Title,
		Company:   req.Company,
		Comment:   req.Comment,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			response.Conflict(c, "email already exists")
			return
		}
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	if req.TagID != 0 {
		if err := h.tagRepo.AddUser(c.Request.Context(), req.TagID, user.ID); err != nil {
			h.logger.Error("attach tag failed", zap.Error(err), zap.Int64("user_id", user.ID))
		}
	}
	response.Created(c, user)
}

// List handles GET /users with pagination, sorting and search.
func (h *Handler) List(c *gin.Context) {
	p := response.ParseListParams(c, "id", listSorts)
	list, total, err := h.repo.List(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	perPage := p.Limit
	if p.All {
		perPage = total
	}
	response.OK(c, response.NewPage(list, total, p.Page, perPage))
}

// GetByID handles GET /users/:id, including tag memberships.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to load user")
		return
	}
	if tags, err := h.repo.TagsFor(c.Request.Context(), id); err == nil {
		user.Tags = tags
	}
	response.OK(c, user)
}

// Update handles PUT /users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := h.repo.Update(c.Request.Context(), id, CreateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Title:     req.Title,
		Company:   req.Company,
		Comment:   req.Comment,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		if database.IsUniqueViolation(err) {
			response.Conflict(c, "email already exists")
			return
		}
		h.logger.Error("update user failed", zap.Error(err), zap.Int64("user_id", id))
		response.Internal(c, "failed to update user")
		return
	}
	response.OK(c, user)
}

// Delete handles DELETE /users/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to delete user")
		return
	}
	response.OK(c, gin.H{"message": "user deleted"})
}

// SearchByEmail handles GET /searchEmail?email=...
func (h *Handler) SearchByEmail(c *gin.Context) {
	fragment := c.Query("email")
	if fragment == "" {
		response.BadRequest(c, "email query parameter is required")
		return
	}
	list, err := h.repo.SearchByEmail(c.Request.Context(), fragment)
	if err != nil {
		response.Internal(c, "failed to search users")
		return
	}
	if len(list) == 0 {
		response.NotFound(c, "no users found with the provided email")
		return
	}
	response.OK(c, list)
}
