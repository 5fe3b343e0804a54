package emaillog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/pkg/queue"
)

type fakeLogRepo struct {
	logs map[int64]*models.EmailLog
}

func (f *fakeLogRepo) GetByID(_ context.Context, id int64) (*models.EmailLog, error) {
	log, ok := f.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return log, nil
}

func (f *fakeLogRepo) ListByEvent(_ context.Context, eventID int64) ([]models.EmailLog, error) {
	var out []models.EmailLog
	for _, log := range f.logs {
		if log.EventID != nil && *log.EventID == eventID {
			out = append(out, *log)
		}
	}
	return out, nil
}

type fakeEnqueuer struct {
	jobs []queue.JobType
}

func (f *fakeEnqueuer) EnqueueEmail(_ context.Context, jobType queue.JobType, _ queue.EmailPayload) error {
	f.jobs = append(f.jobs, jobType)
	return nil
}

func resendContext(t *testing.T, eventID, logID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/events/"+eventID+"/emails/"+logID+"/resend", nil)
	c.Params = gin.Params{{Key: "id", Value: eventID}, {Key: "logId", Value: logID}}
	return c, rec
}

func TestResend(t *testing.T) {
	eventID, userID := int64(3), int64(11)
	repo := &fakeLogRepo{logs: map[int64]*models.EmailLog{
		1: {ID: 1, EventID: &eventID, UserID: &userID, EmailType: models.EmailTypeInvitation, RecipientEmail: "a@b.com"},
		2: {ID: 2, EventID: &eventID, UserID: &userID, EmailType: models.EmailTypeConfirmation, RecipientEmail: "a@b.com"},
	}}

	t.Run("invitation log enqueues a resend job", func(t *testing.T) {
		q := &fakeEnqueuer{}
		c, rec := resendContext(t, "3", "1")
		NewHandler(repo, q, zap.NewNop()).Resend(c)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, q.jobs, 1)
		assert.Equal(t, queue.JobTypeResend, q.jobs[0])
	})

	t.Run("confirmation log enqueues a confirmation job", func(t *testing.T) {
		q := &fakeEnqueuer{}
		c, rec := resendContext(t, "3", "2")
		NewHandler(repo, q, zap.NewNop()).Resend(c)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, q.jobs, 1)
		assert.Equal(t, queue.JobTypeConfirmation, q.jobs[0])
	})

	t.Run("unknown log is 404", func(t *testing.T) {
		q := &fakeEnqueuer{}
		c, rec := resendContext(t, "3", "99")
		NewHandler(repo, q, zap.NewNop()).Resend(c)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, q.jobs)
	})

	t.Run("log from another event is 404", func(t *testing.T) {
		q := &fakeEnqueuer{}
		c, rec := resendContext(t, "4", "1")
		NewHandler(repo, q, zap.NewNop()).Resend(c)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, q.jobs)
	})
}
