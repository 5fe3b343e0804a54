package events

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/answers"
	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/questions"
	"github.com/youssifElhelaly12/rayaBackend/internal/userevents"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
)

// ExportHandler streams the invited-user table for an event as CSV.
type ExportHandler struct {
	events    *Repository
	userEvts  *userevents.Repository
	questions *questions.Repository
	answers   *answers.Repository
	logger    *zap.Logger
}

// NewExportHandler creates the CSV export handler.
func NewExportHandler(events *Repository, ue *userevents.Repository, q *questions.Repository, a *answers.Repository, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{events: events, userEvts: ue, questions: q, answers: a, logger: logger}
}

// Export handles GET /events/:id/export.
func (h *ExportHandler) Export(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	ctx := c.Request.Context()

	event, err := h.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to load event")
		return
	}
	invited, err := h.userEvts.ListByEvent(ctx, id)
	if err != nil {
		response.Internal(c, "failed to load invited users")
		return
	}
	qs, err := h.questions.ListByEvent(ctx, id)
	if err != nil {
		response.Internal(c, "failed to load questions")
		return
	}
	answerMap, err := h.answers.MapByEvent(ctx, id)
	if err != nil {
		response.Internal(c, "failed to load answers")
		return
	}

	records := BuildExport(event, invited, qs, answerMap)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", event.EventName+"-invitees.csv"))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			h.logger.Error("write export row failed", zap.Error(err))
			return
		}
	}
	w.Flush()
}

// BuildExport assembles the export table: event metadata rows, a blank
// separator row, a header row and one data row per invited user. Each data
// row has 7+len(qs) columns.
func BuildExport(event *models.Event, invited []userevents.InvitedUser, qs []models.Question, answerMap map[int64]map[int64]string) [][]string {
	records := [][]string{
		{"Event", event.EventName},
		{"Page", event.EventPage},
		{"Exported Invitees", strconv.Itoa(len(invited))},
		{},
	}

	header := []string{"User ID", "First Name", "Last Name", "Email", "Phone", "Invitation Status", "Accepted"}
	for _, q := range qs {
		header = append(header, q.Question)
	}
	records = append(records, header)

	for _, iu := range invited {
		row := []string{
			strconv.FormatInt(iu.User.ID, 10),
			iu.User.FirstName,
			iu.User.LastName,
			iu.User.Email,
			iu.User.Phone,
			strconv.FormatBool(iu.EmailStatus),
			strconv.FormatBool(iu.AcceptedInvitationStatus),
		}
		userAnswers := answerMap[iu.User.ID]
		for _, q := range qs {
			row = append(row, userAnswers[q.ID])
		}
		records = append(records, row)
	}
	return records
}
