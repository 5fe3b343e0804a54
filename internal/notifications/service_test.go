package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/mailer"
	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/tags"
	"github.com/youssifElhelaly12/rayaBackend/internal/templates"
	"github.com/youssifElhelaly12/rayaBackend/internal/users"
)

type fakeUsers struct {
	byID    map[int64]*models.User
	mu      sync.Mutex
	invited map[int64]string // user id -> token
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListAll(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) ListByIDs(_ context.Context, ids []int64) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) SetInvitationSent(_ context.Context, id int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invited == nil {
		f.invited = map[int64]string{}
	}
	f.invited[id] = token
	return nil
}

type fakeTags struct {
	members map[int64][]int64
}

func (f *fakeTags) GetByID(_ context.Context, id int64) (*models.Tag, error) {
	if _, ok := f.members[id]; !ok {
		return nil, tags.ErrNotFound
	}
	return &models.Tag{ID: id, TagName: "tag"}, nil
}

func (f *fakeTags) MemberIDs(_ context.Context, id int64) ([]int64, error) {
	return f.members[id], nil
}

type fakeEvents struct{ event *models.Event }

func (f *fakeEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	if f.event == nil || f.event.ID != id {
		return nil, errors.New("event not found")
	}
	return f.event, nil
}

type fakeTemplates struct{ tmpl *models.EmailTemplate }

func (f *fakeTemplates) GetByEvent(_ context.Context, eventID int64) (*models.EmailTemplate, error) {
	if f.tmpl == nil || f.tmpl.EventID != eventID {
		return nil, templates.ErrNotFound
	}
	return f.tmpl, nil
}

type fakeJoins struct {
	mu     sync.Mutex
	tokens map[int64]string // user id -> stored token
}

func (f *fakeJoins) UpsertInvitation(_ context.Context, userID, eventID int64, token string) (*models.UserEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokens == nil {
		f.tokens = map[int64]string{}
	}
	f.tokens[userID] = token
	return &models.UserEvent{UserID: userID, EventID: eventID, InvitationURL: token}, nil
}

type fakeLogs struct {
	mu     sync.Mutex
	nextID int64
	sent   []int64
	failed []int64
}

func (f *fakeLogs) Create(_ context.Context, eventID, userID int64, emailType, recipient, subject string) (*models.EmailLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return &models.EmailLog{ID: f.nextID, EmailType: emailType, RecipientEmail: recipient}, nil
}

func (f *fakeLogs) MarkSent(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeLogs) MarkFailed(_ context.Context, id int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, id)
	return nil
}

type staticTokens struct{}

func (staticTokens) IssueInvitation(userID, eventID int64, _ string) (string, error) {
	return fmt.Sprintf("tok-%d-%d", userID, eventID), nil
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []string // recipient emails
	failFor map[string]bool
}

func (f *fakeSender) Send(_ context.Context, msg *mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[msg.To] {
		return errors.New("smtp 550 mailbox unavailable")
	}
	f.sent = append(f.sent, msg.To)
	return nil
}

type fixture struct {
	users  *fakeUsers
	tags   *fakeTags
	joins  *fakeJoins
	logs   *fakeLogs
	sender *fakeSender
	svc    *Service
}

func newFixture(t *testing.T, userCount int, withTemplate bool) *fixture {
	t.Helper()
	f := &fixture{
		users:  &fakeUsers{byID: map[int64]*models.User{}},
		tags:   &fakeTags{members: map[int64][]int64{}},
		joins:  &fakeJoins{},
		logs:   &fakeLogs{},
		sender: &fakeSender{failFor: map[string]bool{}},
	}
	for i := 1; i <= userCount; i++ {
		id := int64(i)
		f.users.byID[id] = &models.User{
			ID:        id,
			Email:     fmt.Sprintf("user%d@example.com", i),
			FirstName: fmt.Sprintf("User%d", i),
			LastName:  "Test",
		}
	}
	event := &models.Event{ID: 5, EventName: "Summit", InvitationSubject: "Join us"}
	tmpls := &fakeTemplates{}
	if withTemplate {
		tmpls.tmpl = &models.EmailTemplate{EventID: 5, TemplateHTML: "Hi {{firstName}}, token={{token}}"}
	}
	f.svc = newService(f.users, f.tags, &fakeEvents{event: event}, tmpls,
		f.joins, f.logs, staticTokens{}, f.sender, zap.NewNop(), 4, "You are invited")
	return f
}

func TestSendBulk(t *testing.T) {
	t.Run("missing template aborts before any send", func(t *testing.T) {
		f := newFixture(t, 3, false)
		_, err := f.svc.SendBulk(context.Background(), 5, Audience{})
		assert.ErrorIs(t, err, ErrTemplateNotFound)
		assert.Empty(t, f.sender.sent)
		assert.Empty(t, f.users.invited)
	})

	t.Run("missing event", func(t *testing.T) {
		f := newFixture(t, 1, true)
		_, err := f.svc.SendBulk(context.Background(), 99, Audience{})
		assert.Error(t, err)
	})

	t.Run("sends to all users and records state", func(t *testing.T) {
		f := newFixture(t, 3, true)
		report, err := f.svc.SendBulk(context.Background(), 5, Audience{})
		require.NoError(t, err)

		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 3, report.Sent)
		assert.Equal(t, 0, report.Failed)
		assert.Len(t, f.sender.sent, 3)
		assert.Len(t, f.users.invited, 3)
		assert.Len(t, f.joins.tokens, 3)
		assert.Len(t, f.logs.sent, 3)
		assert.Equal(t, "tok-2-5", f.joins.tokens[2])
	})

	t.Run("one failure does not stop the batch", func(t *testing.T) {
		f := newFixture(t, 3, true)
		f.sender.failFor["user2@example.com"] = true

		report, err := f.svc.SendBulk(context.Background(), 5, Audience{})
		require.NoError(t, err)

		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Sent)
		assert.Equal(t, 1, report.Failed)
		assert.Len(t, f.logs.failed, 1)
		assert.NotContains(t, f.users.invited, int64(2))

		var failed *RecipientResult
		for i := range report.Results {
			if !report.Results[i].Sent {
				failed = &report.Results[i]
			}
		}
		require.NotNil(t, failed)
		assert.Equal(t, "user2@example.com", failed.Email)
		assert.NotEmpty(t, failed.Error)
	})

	t.Run("tag audience", func(t *testing.T) {
		f := newFixture(t, 3, true)
		f.tags.members[8] = []int64{1, 3}

		report, err := f.svc.SendBulk(context.Background(), 5, Audience{TagID: 8})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Total)
		assert.Equal(t, 2, report.Sent)
	})

	t.Run("unknown tag", func(t *testing.T) {
		f := newFixture(t, 3, true)
		_, err := f.svc.SendBulk(context.Background(), 5, Audience{TagID: 99})
		assert.ErrorIs(t, err, ErrTagNotFound)
		assert.Empty(t, f.sender.sent)
	})

	t.Run("explicit user list", func(t *testing.T) {
		f := newFixture(t, 3, true)
		report, err := f.svc.SendBulk(context.Background(), 5, Audience{UserIDs: []int64{2}})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Total)
		assert.Equal(t, []string{"user2@example.com"}, f.sender.sent)
	})

	t.Run("empty tag sends nothing", func(t *testing.T) {
		f := newFixture(t, 3, true)
		f.tags.members[8] = nil

		report, err := f.svc.SendBulk(context.Background(), 5, Audience{TagID: 8})
		require.NoError(t, err)
		assert.Zero(t, report.Total)
	})
}

func TestSendSingle(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t, 1, true)
		_, err := f.svc.SendSingle(context.Background(), 5, 99)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("sends and reports", func(t *testing.T) {
		f := newFixture(t, 1, true)
		res, err := f.svc.SendSingle(context.Background(), 5, 1)
		require.NoError(t, err)
		assert.True(t, res.Sent)
		assert.Equal(t, "user1@example.com", res.Email)
		assert.Equal(t, "tok-1-5", f.users.invited[1])
	})
}
