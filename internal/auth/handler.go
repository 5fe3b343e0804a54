package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
	"github.com/youssifElhelaly12/rayaBackend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResetRequest is the body for POST /auth/reset-password.
type ResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// TokenResponse is the auth response with a session JWT.
type TokenResponse struct {
	Token string        `json:"token"`
	Admin *models.Admin `json:"admin"`
}

// Handler handles admin auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	tokens *TokenService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, tokens *TokenService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, tokens: tokens, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	admin, err := h.repo.Create(c.Request.Context(), req.Email, hash)
	if err != nil {
		h.logger.Error("create admin failed", zap.Error(err))
		response.Internal(c, "failed to create admin")
		return
	}

	token, err := h.tokens.IssueSession(admin.ID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, TokenResponse{Token: token, Admin: admin})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	admin, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}
	if !utils.CheckPassword(req.Password, admin.PasswordHash) {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	token, err := h.tokens.IssueSession(admin.ID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, Admin: admin})
}

// Logout handles POST /auth/logout. Sessions are stateless; the client
// discards the token.
func (h *Handler) Logout(c *gin.Context) {
	response.OK(c, gin.H{"message": "logged out"})
}

// ForgotPassword handles POST /auth/forgot-password: issues a reset token
// with a one-hour expiry. The token is returned in the response body since
// this is an internal management tool.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	admin, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.NotFound(c, "admin not found")
		return
	}

	token, err := utils.RandomToken(32)
	if err != nil {
		response.Internal(c, "failed to generate reset token")
		return
	}
	if err := h.repo.SetResetToken(c.Request.Context(), admin.ID, token, time.Now().Add(time.Hour)); err != nil {
		h.logger.Error("set reset token failed", zap.Error(err))
		response.Internal(c, "failed to store reset token")
		return
	}
	response.OK(c, gin.H{"resetToken": token})
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.repo.ResetPassword(c.Request.Context(), req.Token, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.BadRequest(c, "invalid or expired reset token")
			return
		}
		response.Internal(c, "failed to reset password")
		return
	}
	response.OK(c, gin.H{"message": "password updated"})
}
