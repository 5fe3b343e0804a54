package invitations

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/auth"
	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/templates"
	"github.com/youssifElhelaly12/rayaBackend/internal/userevents"
	"github.com/youssifElhelaly12/rayaBackend/pkg/queue"
)

type fakeUserStore struct {
	user    *models.User
	patched int
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	return f.user, nil
}

func (f *fakeUserStore) ApplyProfilePatch(_ context.Context, _ int64, _, _, _, _, _ string) error {
	f.patched++
	return nil
}

type fakeEventStore struct {
	event *models.Event
}

func (f *fakeEventStore) GetByID(_ context.Context, _ int64) (*models.Event, error) {
	return f.event, nil
}

type fakeJoinStore struct {
	row      *models.UserEvent
	accepted bool
	entered  bool
}

func (f *fakeJoinStore) Get(_ context.Context, _, _ int64) (*models.UserEvent, error) {
	if f.row == nil {
		return nil, userevents.ErrNotFound
	}
	return f.row, nil
}

func (f *fakeJoinStore) Accept(_ context.Context, _, _ int64, _ []string) (*models.UserEvent, error) {
	if f.row == nil {
		return nil, userevents.ErrNotFound
	}
	if f.accepted {
		return nil, userevents.ErrAlreadyAccepted
	}
	f.accepted = true
	f.row.AcceptedInvitationStatus = true
	return f.row, nil
}

func (f *fakeJoinStore) MarkEntered(_ context.Context, _, _ int64) (*models.UserEvent, error) {
	if f.row == nil {
		return nil, userevents.ErrNotFound
	}
	if f.entered {
		return nil, userevents.ErrAlreadyEntered
	}
	f.entered = true
	f.row.IsEnter = true
	return f.row, nil
}

type fakeAnswerStore struct {
	batches int
}

func (f *fakeAnswerStore) HasAnswers(_ context.Context, _, _ int64) (bool, error) {
	return f.batches > 0, nil
}

func (f *fakeAnswerStore) CreateBatch(_ context.Context, _, _ int64, _ map[int64]string) error {
	f.batches++
	return nil
}

type fakeTemplateStore struct {
	tmpl *models.EmailTemplate
}

func (f *fakeTemplateStore) GetByEvent(_ context.Context, _ int64) (*models.EmailTemplate, error) {
	if f.tmpl == nil {
		return nil, templates.ErrNotFound
	}
	return f.tmpl, nil
}

type fakeLogStore struct {
	created int
}

func (f *fakeLogStore) Create(_ context.Context, _, _ int64, _, _, _ string) (*models.EmailLog, error) {
	f.created++
	return &models.EmailLog{ID: int64(f.created)}, nil
}

type fakeEnqueuer struct {
	jobs []queue.JobType
}

func (f *fakeEnqueuer) EnqueueEmail(_ context.Context, jobType queue.JobType, _ queue.EmailPayload) error {
	f.jobs = append(f.jobs, jobType)
	return nil
}

type fixture struct {
	handler *Handler
	tokens  *auth.TokenService
	users   *fakeUserStore
	joins   *fakeJoinStore
	answers *fakeAnswerStore
	queue   *fakeEnqueuer
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenService("test-secret", 24, 30)
	token, err := tokens.IssueInvitation(5, 9, "guest@example.com")
	require.NoError(t, err)

	f := &fixture{
		tokens:  tokens,
		users:   &fakeUserStore{user: &models.User{ID: 5, Email: "guest@example.com", FirstName: "G"}},
		joins:   &fakeJoinStore{row: &models.UserEvent{UserID: 5, EventID: 9, InvitationURL: token}},
		answers: &fakeAnswerStore{},
		queue:   &fakeEnqueuer{},
		token:   token,
	}
	f.handler = NewHandler(
		f.users,
		&fakeEventStore{event: &models.Event{ID: 9, EventName: "Summit", IDImageMode: models.IDImageDisabled}},
		f.joins,
		f.answers,
		&fakeTemplateStore{tmpl: &models.EmailTemplate{ID: 1, TemplateHTML: "<p>ok</p>"}},
		&fakeLogStore{},
		tokens,
		f.queue,
		nil,
		zap.NewNop(),
		"Registration confirmed",
	)
	return f
}

func (f *fixture) accept(t *testing.T, answers string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("token", f.token))
	if answers != "" {
		require.NoError(t, mw.WriteField("answers", answers))
	}
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/invitations/accept", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	f.handler.Accept(c)
	return rec
}

func (f *fixture) checkIn(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/events/9/checkin/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "9"}, {Key: "userId", Value: "5"}}
	f.handler.CheckIn(c)
	return rec
}

func TestAccept(t *testing.T) {
	t.Run("first accept succeeds and queues confirmation", func(t *testing.T) {
		f := newFixture(t)
		rec := f.accept(t, `{"1":"yes"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, f.joins.accepted)
		assert.Equal(t, 1, f.answers.batches)
		require.Len(t, f.queue.jobs, 1)
		assert.Equal(t, queue.JobTypeConfirmation, f.queue.jobs[0])
	})

	t.Run("second accept is a conflict and stores nothing", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, http.StatusOK, f.accept(t, `{"1":"yes"}`).Code)

		rec := f.accept(t, `{"1":"changed"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 1, f.answers.batches)
		assert.Equal(t, 1, f.users.patched)
		assert.Len(t, f.queue.jobs, 1)
	})

	t.Run("stale token is rejected", func(t *testing.T) {
		f := newFixture(t)
		fresh, err := f.tokens.IssueInvitation(5, 9, "guest@example.com")
		require.NoError(t, err)
		f.joins.row.InvitationURL = fresh + "x" // a later send replaced the link

		rec := f.accept(t, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, f.joins.accepted)
	})

	t.Run("unknown invitation is 404", func(t *testing.T) {
		f := newFixture(t)
		f.joins.row = nil
		assert.Equal(t, http.StatusNotFound, f.accept(t, "").Code)
	})
}

func TestCheckIn(t *testing.T) {
	t.Run("first scan marks entry", func(t *testing.T) {
		f := newFixture(t)
		rec := f.checkIn(t)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, f.joins.entered)
	})

	t.Run("second scan is a conflict", func(t *testing.T) {
		f := newFixture(t)
		assert.Equal(t, http.StatusOK, f.checkIn(t).Code)
		assert.Equal(t, http.StatusConflict, f.checkIn(t).Code)
	})

	t.Run("no join row is 404", func(t *testing.T) {
		f := newFixture(t)
		f.joins.row = nil
		assert.Equal(t, http.StatusNotFound, f.checkIn(t).Code)
	})
}
