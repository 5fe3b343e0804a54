package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/tags"
	"github.com/youssifElhelaly12/rayaBackend/internal/users"
	"github.com/youssifElhelaly12/rayaBackend/pkg/database"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// Summary is the import result returned to the client.
type Summary struct {
	TotalProcessed int        `json:"totalProcessed"`
	SuccessCount   int        `json:"successCount"`
	ErrorCount     int        `json:"errorCount"`
	Errors         []RowError `json:"errors"`
}

// UserStore is the slice of the users repository the importer writes to.
type UserStore interface {
	Create(ctx context.Context, p users.CreateParams) (*models.User, error)
}

// TagStore resolves and attaches the optional import tag.
type TagStore interface {
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	AddUser(ctx context.Context, tagID, userID int64) error
}

// Handler ingests invitee CSV files.
type Handler struct {
	users  UserStore
	tags   TagStore
	logger *zap.Logger
}

func NewHandler(userStore UserStore, tagStore TagStore, logger *zap.Logger) *Handler {
	return &Handler{users: userStore, tags: tagStore, logger: logger}
}

// Import reads a CSV upload and creates one user per valid row. Rows that
// fail validation or collide with an existing email are reported but do
// not stop the rest of the file. An optional tagId attaches every imported
// user to that tag; a tagId that resolves to no tag is reported against
// each created row rather than failing the request.
// POST /import
func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "a CSV file upload named 'file' is required")
		return
	}

	// The tag is resolved once up front; a missing tag still imports
	// every user and is reported against each created row instead.
	var (
		tagID      int64
		tagMissing bool
	)
	if raw := c.PostForm("tagId"); raw != "" {
		tagID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid tag id")
			return
		}
		if _, err := h.tags.GetByID(c.Request.Context(), tagID); err != nil {
			if !errors.Is(err, tags.ErrNotFound) {
				h.logger.Error("load tag", zap.Int64("tag_id", tagID), zap.Error(err))
				response.Internal(c, "failed to load tag")
				return
			}
			tagMissing = true
		}
	}

	f, err := fh.Open()
	if err != nil {
		response.Internal(c, "failed to read uploaded file")
		return
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		response.BadRequest(c, "file is not valid CSV")
		return
	}
	if len(records) < 2 {
		response.BadRequest(c, "file has no data rows")
		return
	}

	rows, rowErrs := Preflight(records)
	summary := Summary{
		TotalProcessed: len(records) - 1,
		ErrorCount:     len(rowErrs),
		Errors:         rowErrs,
	}

	for _, row := range rows {
		user, err := h.users.Create(c.Request.Context(), users.CreateParams{
			Email:     row.Email,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Phone:     row.Phone,
			Title:     row.Title,
			Company:   row.Company,
			Comment:   row.Comment,
		})
		if err != nil {
			msg := "failed to create user"
			if database.IsUniqueViolation(err) {
				msg = "email already exists"
			} else {
				h.logger.Error("import user", zap.String("email", row.Email), zap.Error(err))
			}
			summary.Errors = append(summary.Errors, RowError{Row: row.Line, Email: row.Email, Message: msg})
			summary.ErrorCount++
			continue
		}
		if tagMissing {
			summary.Errors = append(summary.Errors, RowError{
				Row: row.Line, Email: row.Email,
				Message: "tag with id " + strconv.FormatInt(tagID, 10) + " not found",
			})
			summary.ErrorCount++
			continue
		}
		if tagID != 0 {
			if err := h.tags.AddUser(c.Request.Context(), tagID, user.ID); err != nil {
				h.logger.Warn("attach imported user to tag",
					zap.Int64("user_id", user.ID), zap.Int64("tag_id", tagID), zap.Error(err))
			}
		}
		summary.SuccessCount++
	}

	if summary.Errors == nil {
		summary.Errors = []RowError{}
	}
	response.OK(c, summary)
}

// readRecords tolerates ragged rows; short rows simply leave trailing
// fields empty.
func readRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}
