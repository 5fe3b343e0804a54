package invitations

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/auth"
	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/templates"
	"github.com/youssifElhelaly12/rayaBackend/internal/userevents"
	"github.com/youssifElhelaly12/rayaBackend/pkg/queue"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
	"github.com/youssifElhelaly12/rayaBackend/pkg/storage"
)

const maxIDImageSize = 10 << 20

// UserStore is the slice of the users repository the workflow touches.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ApplyProfilePatch(ctx context.Context, id int64, email, phone, title, company, comment string) error
}

// JoinStore tracks one user's invitation lifecycle row for one event.
type JoinStore interface {
	Get(ctx context.Context, userID, eventID int64) (*models.UserEvent, error)
	Accept(ctx context.Context, userID, eventID int64, idImages []string) (*models.UserEvent, error)
	MarkEntered(ctx context.Context, userID, eventID int64) (*models.UserEvent, error)
}

// EventStore loads the event an invitation belongs to.
type EventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

// AnswerStore persists the acceptance form's question answers.
type AnswerStore interface {
	HasAnswers(ctx context.Context, userID, eventID int64) (bool, error)
	CreateBatch(ctx context.Context, userID, eventID int64, byQuestion map[int64]string) error
}

// TemplateStore looks up the verification template gating confirmation.
type TemplateStore interface {
	GetByEvent(ctx context.Context, eventID int64) (*models.EmailTemplate, error)
}

// LogStore creates the pending log row the confirmation worker updates.
type LogStore interface {
	Create(ctx context.Context, eventID, userID int64, emailType, recipient, subject string) (*models.EmailLog, error)
}

// Enqueuer pushes confirmation jobs onto the worker queue.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, jobType queue.JobType, payload queue.EmailPayload) error
}

// Handler drives the invitee-facing acceptance workflow and the venue
// check-in endpoint.
type Handler struct {
	users    UserStore
	events   EventStore
	joins    JoinStore
	answers  AnswerStore
	verified TemplateStore
	logs     LogStore
	tokens   *auth.TokenService
	queue    Enqueuer
	uploads  storage.Store
	logger   *zap.Logger

	confirmationSubject string
}

func NewHandler(
	users UserStore,
	events EventStore,
	joins JoinStore,
	answers AnswerStore,
	verifiedTemplates TemplateStore,
	logs LogStore,
	tokens *auth.TokenService,
	q Enqueuer,
	uploads storage.Store,
	logger *zap.Logger,
	confirmationSubject string,
) *Handler {
	return &Handler{
		users: users, events: events, joins: joins, answers: answers,
		verified: verifiedTemplates, logs: logs, tokens: tokens, queue: q,
		uploads: uploads, logger: logger, confirmationSubject: confirmationSubject,
	}
}

// AcceptForm is the multipart payload submitted from the invitation page.
// Profile fields overwrite the invitee's record even when empty; only the
// email is kept when the form leaves it blank.
type AcceptForm struct {
	Token   string `form:"token" binding:"required"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Title   string `form:"title"`
	Company string `form:"company"`
	Comment string `form:"comment"`
	Answers string `form:"answers"` // JSON object: question id -> answer
}

// Accept finalizes an invitation: flips the acceptance flag, applies the
// submitted profile fields, stores identification images and answers, and
// queues the confirmation email. Acceptance is never rolled back once the
// flag is flipped; follow-up failures surface in logs and the email queue.
// POST /invitations/accept
func (h *Handler) Accept(c *gin.Context) {
	var form AcceptForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "token is required")
		return
	}

	claims, err := h.tokens.Decode(form.Token)
	if err != nil {
		response.Unauthorized(c, "invalid invitation token")
		return
	}
	userID, eventID := claims.Subject, claims.EventID

	join, err := h.joins.Get(c.Request.Context(), userID, eventID)
	if errors.Is(err, userevents.ErrNotFound) {
		response.NotFound(c, "invitation not found")
		return
	}
	if err != nil {
		h.logger.Error("load invitation", zap.Int64("user_id", userID), zap.Error(err))
		response.Internal(c, "failed to load invitation")
		return
	}

	// The stored token is the source of truth: a re-sent invitation
	// invalidates every earlier link, and expiry is checked against the
	// stored copy.
	if join.InvitationURL != form.Token {
		response.Unauthorized(c, "this invitation link is no longer valid")
		return
	}
	if _, err := h.tokens.Verify(join.InvitationURL); err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			response.Unauthorized(c, "invitation link has expired")
			return
		}
		response.Unauthorized(c, "invalid invitation token")
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}

	idImages, ok := h.collectIDImages(c, event)
	if !ok {
		return
	}

	if _, err := h.joins.Accept(c.Request.Context(), userID, eventID, idImages); err != nil {
		switch {
		case errors.Is(err, userevents.ErrAlreadyAccepted):
			response.Conflict(c, "invitation has already been accepted")
		case errors.Is(err, userevents.ErrNotFound):
			response.NotFound(c, "invitation not found")
		default:
			h.logger.Error("accept invitation", zap.Int64("user_id", userID), zap.Error(err))
			response.Internal(c, "failed to accept invitation")
		}
		return
	}

	if err := h.users.ApplyProfilePatch(c.Request.Context(), userID,
		form.Email, form.Phone, form.Title, form.Company, form.Comment); err != nil {
		h.logger.Error("apply profile patch", zap.Int64("user_id", userID), zap.Error(err))
	}

	h.storeAnswers(c, userID, eventID, form.Answers)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("reload user", zap.Int64("user_id", userID), zap.Error(err))
		response.Internal(c, "failed to load user")
		return
	}

	if _, err := h.verified.GetByEvent(c.Request.Context(), eventID); err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			response.NotFound(c, "no verification template found for this event")
			return
		}
		h.logger.Error("load verification template", zap.Int64("event_id", eventID), zap.Error(err))
		response.Internal(c, "failed to load verification template")
		return
	}

	h.queueConfirmation(c, event, user)

	response.OK(c, gin.H{
		"message": "invitation accepted",
		"user":    user,
	})
}

func (h *Handler) collectIDImages(c *gin.Context, event *models.Event) ([]string, bool) {
	if event.IDImageMode == models.IDImageDisabled {
		return nil, true
	}
	files := formFiles(c, "idImages", "idImage")
	if len(files) == 0 {
		if event.IDImageMode == models.IDImageRequired {
			response.ValidationFailed(c, []string{"idImages: identification image is required for this event"})
			return nil, false
		}
		return nil, true
	}

	var keys []string
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if !storage.ValidImageType(contentType, fh.Filename) {
			response.BadRequest(c, "identification images must be image files")
			return nil, false
		}
		if fh.Size > maxIDImageSize {
			response.BadRequest(c, "identification image exceeds the 10MB limit")
			return nil, false
		}
		f, err := fh.Open()
		if err != nil {
			response.Internal(c, "failed to read identification image")
			return nil, false
		}
		key, err := h.uploads.Save(c.Request.Context(), fh.Filename,
			storage.ContentTypeForFilename(fh.Filename), f, fh.Size)
		f.Close()
		if err != nil {
			h.logger.Error("store id image", zap.Error(err))
			response.Internal(c, "failed to store identification image")
			return nil, false
		}
		keys = append(keys, key)
	}
	return keys, true
}

func (h *Handler) storeAnswers(c *gin.Context, userID, eventID int64, raw string) {
	if raw == "" {
		return
	}
	var byQuestion map[string]string
	if err := json.Unmarshal([]byte(raw), &byQuestion); err != nil || len(byQuestion) == 0 {
		return
	}
	parsed := make(map[int64]string, len(byQuestion))
	for q, a := range byQuestion {
		id, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			continue
		}
		parsed[id] = a
	}
	if len(parsed) == 0 {
		return
	}

	// A repeated submit must not duplicate the first acceptance's answers.
	has, err := h.answers.HasAnswers(c.Request.Context(), userID, eventID)
	if err != nil || has {
		return
	}
	if err := h.answers.CreateBatch(c.Request.Context(), userID, eventID, parsed); err != nil {
		h.logger.Error("store answers", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (h *Handler) queueConfirmation(c *gin.Context, event *models.Event, user *models.User) {
	subject := event.VerificationSubject
	if subject == "" {
		subject = h.confirmationSubject
	}
	var logID int64
	if logRow, err := h.logs.Create(c.Request.Context(), event.ID, user.ID,
		models.EmailTypeConfirmation, user.Email, subject); err != nil {
		h.logger.Warn("create email log", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		logID = logRow.ID
	}
	err := h.queue.EnqueueEmail(c.Request.Context(), queue.JobTypeConfirmation, queue.EmailPayload{
		UserID:  user.ID,
		EventID: event.ID,
		LogID:   logID,
		To:      user.Email,
	})
	if err != nil {
		h.logger.Error("enqueue confirmation", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

// ValidateToken checks an invitation link and reports its state.
// GET /invitations/validate/:token
func (h *Handler) ValidateToken(c *gin.Context) {
	token := c.Param("token")

	claims, err := h.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			response.Unauthorized(c, "invitation link has expired")
			return
		}
		response.Unauthorized(c, "invalid invitation token")
		return
	}

	join, err := h.joins.Get(c.Request.Context(), claims.Subject, claims.EventID)
	if errors.Is(err, userevents.ErrNotFound) {
		response.NotFound(c, "invitation not found")
		return
	}
	if err != nil {
		h.logger.Error("load invitation", zap.Int64("user_id", claims.Subject), zap.Error(err))
		response.Internal(c, "failed to load invitation")
		return
	}
	if join.InvitationURL != token {
		response.Unauthorized(c, "this invitation link is no longer valid")
		return
	}

	response.OK(c, gin.H{
		"valid":    true,
		"userId":   claims.Subject,
		"eventId":  claims.EventID,
		"email":    claims.Email,
		"accepted": join.AcceptedInvitationStatus,
	})
}

// CheckIn marks an accepted invitee as entered at the venue. Scanning the
// same QR twice is a conflict.
// POST /events/:id/checkin/:userId
func (h *Handler) CheckIn(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	join, err := h.joins.MarkEntered(c.Request.Context(), userID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, userevents.ErrAlreadyEntered):
			response.Conflict(c, "user has already entered this event")
		case errors.Is(err, userevents.ErrNotFound):
			response.NotFound(c, "invitation not found")
		default:
			h.logger.Error("check in", zap.Int64("user_id", userID), zap.Error(err))
			response.Internal(c, "failed to check in")
		}
		return
	}
	response.OK(c, join)
}

func formFiles(c *gin.Context, names ...string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	for _, name := range names {
		if files := form.File[name]; len(files) > 0 {
			return files
		}
	}
	return nil
}
