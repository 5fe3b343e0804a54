package notifications

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/events"
	"github.com/youssifElhelaly12/rayaBackend/internal/mailer"
	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/tags"
	"github.com/youssifElhelaly12/rayaBackend/internal/templates"
	"github.com/youssifElhelaly12/rayaBackend/internal/users"
)

var (
	// ErrEventNotFound means the target event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrTemplateNotFound means the event has no invitation template;
	// sends fail fast before contacting any recipient.
	ErrTemplateNotFound = errors.New("no invitation template for event")
	// ErrTagNotFound means the audience tag does not exist.
	ErrTagNotFound = errors.New("tag not found")
	// ErrUserNotFound means the single-send target does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// UserStore is the slice of the users repository the sender needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	SetInvitationSent(ctx context.Context, id int64, token string) error
}

// TagStore resolves tag audiences.
type TagStore interface {
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	MemberIDs(ctx context.Context, tagID int64) ([]int64, error)
}

// EventStore loads the target event.
type EventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

// TemplateStore loads the event's invitation template.
type TemplateStore interface {
	GetByEvent(ctx context.Context, eventID int64) (*models.EmailTemplate, error)
}

// JoinStore records per-recipient invitation state.
type JoinStore interface {
	UpsertInvitation(ctx context.Context, userID, eventID int64, token string) (*models.UserEvent, error)
}

// LogStore records delivery attempts.
type LogStore interface {
	Create(ctx context.Context, eventID, userID int64, emailType, recipient, subject string) (*models.EmailLog, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, msg string) error
}

// TokenIssuer mints invitation tokens.
type TokenIssuer interface {
	IssueInvitation(userID, eventID int64, email string) (string, error)
}

// Audience selects the recipients of a bulk send. Exactly one of the
// fields is used: UserIDs when non-empty, else TagID when non-zero,
// else every user.
type Audience struct {
	TagID   int64
	UserIDs []int64
}

// RecipientResult reports the outcome of one recipient's send.
type RecipientResult struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Sent   bool   `json:"sent"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates a bulk send.
type Report struct {
	EventID int64             `json:"eventId"`
	Total   int               `json:"total"`
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Results []RecipientResult `json:"results"`
}

// Service sends invitation emails through a bounded worker pool and keeps
// users, user_events and email_logs in step with each delivery.
type Service struct {
	users       UserStore
	tags        TagStore
	events      EventStore
	templates   TemplateStore
	joins       JoinStore
	logs        LogStore
	tokens      TokenIssuer
	sender      mailer.Sender
	logger      *zap.Logger
	concurrency int
	subject     string // fallback when the event carries no invitation subject
}

// NewService wires the sender against the concrete repositories.
func NewService(
	userRepo *users.Repository,
	tagRepo *tags.Repository,
	events EventStore,
	invitationTemplates *templates.Repository,
	joins JoinStore,
	logs LogStore,
	tokens TokenIssuer,
	sender mailer.Sender,
	logger *zap.Logger,
	concurrency int,
	defaultSubject string,
) *Service {
	return newService(userRepo, tagRepo, events, invitationTemplates, joins, logs,
		tokens, sender, logger, concurrency, defaultSubject)
}

func newService(
	users UserStore, tags TagStore, events EventStore, tmpls TemplateStore,
	joins JoinStore, logs LogStore, tokens TokenIssuer, sender mailer.Sender,
	logger *zap.Logger, concurrency int, defaultSubject string,
) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		users: users, tags: tags, events: events, templates: tmpls,
		joins: joins, logs: logs, tokens: tokens, sender: sender,
		logger: logger, concurrency: concurrency, subject: defaultSubject,
	}
}

// SendBulk sends the event's invitation template to every recipient in the
// audience. A missing event or template aborts before any send. Individual
// delivery failures do not stop the rest of the batch; the report carries
// a per-recipient outcome.
func (s *Service) SendBulk(ctx context.Context, eventID int64, audience Audience) (*Report, error) {
	event, tmpl, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	recipients, err := s.resolve(ctx, audience)
	if err != nil {
		return nil, err
	}

	report := &Report{EventID: eventID, Total: len(recipients), Results: make([]RecipientResult, len(recipients))}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Results[i] = s.sendOne(ctx, event, tmpl, &recipients[i])
			}
		}()
	}
	for i := range recipients {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, r := range report.Results {
		if r.Sent {
			report.Sent++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

// SendSingle sends the invitation to one user.
func (s *Service) SendSingle(ctx context.Context, eventID, userID int64) (*RecipientResult, error) {
	event, tmpl, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	res := s.sendOne(ctx, event, tmpl, user)
	return &res, nil
}

func (s *Service) loadEvent(ctx context.Context, eventID int64) (*models.Event, *models.EmailTemplate, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}
	tmpl, err := s.templates.GetByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return nil, nil, ErrTemplateNotFound
		}
		return nil, nil, err
	}
	return event, tmpl, nil
}

func (s *Service) resolve(ctx context.Context, audience Audience) ([]models.User, error) {
	switch {
	case len(audience.UserIDs) > 0:
		return s.users.ListByIDs(ctx, audience.UserIDs)
	case audience.TagID != 0:
		if _, err := s.tags.GetByID(ctx, audience.TagID); err != nil {
			if errors.Is(err, tags.ErrNotFound) {
				return nil, ErrTagNotFound
			}
			return nil, err
		}
		ids, err := s.tags.MemberIDs(ctx, audience.TagID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		return s.users.ListByIDs(ctx, ids)
	default:
		return s.users.ListAll(ctx)
	}
}

func (s *Service) sendOne(ctx context.Context, event *models.Event, tmpl *models.EmailTemplate, user *models.User) RecipientResult {
	result := RecipientResult{UserID: user.ID, Email: user.Email}

	token, err := s.tokens.IssueInvitation(user.ID, event.ID, user.Email)
	if err != nil {
		result.Error = "failed to issue invitation token"
		s.logger.Error("issue invitation token", zap.Int64("user_id", user.ID), zap.Error(err))
		return result
	}

	subject := event.InvitationSubject
	if subject == "" {
		subject = s.subject
	}

	var logID int64
	if logRow, err := s.logs.Create(ctx, event.ID, user.ID, models.EmailTypeInvitation, user.Email, subject); err != nil {
		s.logger.Warn("create email log", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		logID = logRow.ID
	}

	msg, err := BuildInvitation(event, tmpl, user, token, subject)
	if err != nil {
		result.Error = err.Error()
		s.fail(ctx, logID, err)
		return result
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		result.Error = err.Error()
		s.fail(ctx, logID, err)
		s.logger.Error("send invitation", zap.Int64("user_id", user.ID), zap.Error(err))
		return result
	}

	result.Sent = true
	if logID != 0 {
		if err := s.logs.MarkSent(ctx, logID); err != nil {
			s.logger.Warn("mark email log sent", zap.Int64("log_id", logID), zap.Error(err))
		}
	}
	if err := s.users.SetInvitationSent(ctx, user.ID, token); err != nil {
		s.logger.Warn("mark user invited", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if _, err := s.joins.UpsertInvitation(ctx, user.ID, event.ID, token); err != nil {
		s.logger.Warn("upsert invitation row", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return result
}

func (s *Service) fail(ctx context.Context, logID int64, cause error) {
	if logID == 0 {
		return
	}
	if err := s.logs.MarkFailed(ctx, logID, cause.Error()); err != nil {
		s.logger.Warn("mark email log failed", zap.Int64("log_id", logID), zap.Error(err))
	}
}

// BuildInvitation renders the invitation message for one recipient: the
// template HTML with placeholders substituted, plus the inline check-in QR
// code the {{qrCode}} placeholder references.
func BuildInvitation(event *models.Event, tmpl *models.EmailTemplate, user *models.User, token, subject string) (*mailer.Message, error) {
	qr, err := mailer.CheckinQR(user.ID, event.ID)
	if err != nil {
		return nil, errors.New("failed to generate check-in QR code")
	}
	return &mailer.Message{
		To:      user.Email,
		Subject: subject,
		HTML:    mailer.RenderTemplate(tmpl.TemplateHTML, user, token),
		Attachments: []mailer.Attachment{{
			Name:        mailer.QRAttachmentName,
			ContentType: "image/png",
			Content:     qr,
			CID:         mailer.QRAttachmentName,
		}},
	}, nil
}
