package events

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
	"github.com/youssifElhelaly12/rayaBackend/pkg/storage"
)

var listSorts = map[string]string{
	"id":        "id",
	"eventName": "event_name",
	"createdAt": "created_at",
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo    *Repository
	store   storage.Store
	baseURL string
	logger  *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, store storage.Store, baseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, store: store, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (h *Handler) withImageURL(e *models.Event) *models.Event {
	if e.EventBannerImage != "" && !strings.HasPrefix(e.EventBannerImage, "http") {
		e.EventBannerImage = h.baseURL + "/" + strings.TrimPrefix(e.EventBannerImage, "/")
	}
	return e
}

// paramsFromForm reads event fields from a multipart or urlencoded form.
func paramsFromForm(c *gin.Context) (Params, []string) {
	p := Params{
		EventName:           c.PostForm("eventName"),
		EventPage:           c.PostForm("eventPage"),
		ApologizeContent:    c.PostForm("apologizeContent"),
		AcceptedContent:     c.PostForm("acceptedContent"),
		InvitationSubject:   c.PostForm("invitationSubject"),
		VerificationSubject: c.PostForm("verificationSubject"),
		IDImageMode:         models.IDImageMode(c.PostForm("idImageMode")),
	}
	var fields []string
	switch p.IDImageMode {
	case "", models.IDImageRequired, models.IDImageOptional, models.IDImageDisabled:
	default:
		fields = append(fields, "idImageMode must be required, optional or disabled")
	}
	return p, fields
}

// Create handles POST /events (multipart form; optional banner file).
func (h *Handler) Create(c *gin.Context) {
	p, fields := paramsFromForm(c)
	if p.EventName == "" {
		fields = append(fields, "eventName is required")
	}
	if len(fields) > 0 {
		response.ValidationFailed(c, fields)
		return
	}

	if file, err := c.FormFile("eventBannerImage"); err == nil {
		if !storage.ValidImageType(file.Header.Get("Content-Type"), file.Filename) {
			response.BadRequest(c, "banner must be an image")
			return
		}
		src, err := file.Open()
		if err != nil {
			response.Internal(c, "failed to read banner upload")
			return
		}
		defer src.Close()
		key, err := h.store.Save(c.Request.Context(), file.Filename, storage.ContentTypeForFilename(file.Filename), src, file.Size)
		if err != nil {
			h.logger.Error("store banner failed", zap.Error(err))
			response.Internal(c, "failed to store banner")
			return
		}
		p.EventBannerImage = key
	}

	event, err := h.repo.Create(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, h.withImageURL(event))
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	p := response.ParseListParams(c, "id", listSorts)
	list, total, err := h.repo.List(c.Request.Context(), p)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	for i := range list {
		h.withImageURL(&list[i])
	}
	perPage := p.Limit
	if p.All {
		perPage = total
	}
	response.OK(c, response.NewPage(list, total, p.Page, perPage))
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, h.withImageURL(event))
}

// Update handles PUT /events/:id (multipart form; optional new banner).
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	p, fields := paramsFromForm(c)
	if len(fields) > 0 {
		response.ValidationFailed(c, fields)
		return
	}

	if file, err := c.FormFile("eventBannerImage"); err == nil {
		if !storage.ValidImageType(file.Header.Get("Content-Type"), file.Filename) {
			response.BadRequest(c, "banner must be an image")
			return
		}
		src, err := file.Open()
		if err != nil {
			response.Internal(c, "failed to read banner upload")
			return
		}
		defer src.Close()
		key, err := h.store.Save(c.Request.Context(), file.Filename, storage.ContentTypeForFilename(file.Filename), src, file.Size)
		if err != nil {
			response.Internal(c, "failed to store banner")
			return
		}
		p.EventBannerImage = key
	}

	event, err := h.repo.Update(c.Request.Context(), id, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("update event failed", zap.Error(err), zap.Int64("event_id", id))
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, h.withImageURL(event))
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to delete event")
		return
	}
	response.OK(c, gin.H{"message": "event deleted"})
}
