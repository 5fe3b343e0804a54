package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/auth"
	"github.com/youssifElhelaly12/rayaBackend/internal/emaillog"
	"github.com/youssifElhelaly12/rayaBackend/internal/events"
	"github.com/youssifElhelaly12/rayaBackend/internal/mailer"
	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/templates"
	"github.com/youssifElhelaly12/rayaBackend/internal/userevents"
	"github.com/youssifElhelaly12/rayaBackend/internal/users"
	"github.com/youssifElhelaly12/rayaBackend/pkg/queue"
)

// EmailProcessor drains the email queue: confirmation emails after an
// invitee accepts, and resends of previously logged invitations. Templates
// are re-rendered at processing time so profile edits between enqueue and
// send are picked up.
type EmailProcessor struct {
	users      *users.Repository
	events     *events.Repository
	joins      *userevents.Repository
	invitation *templates.Repository
	verified   *templates.Repository
	logs       *emaillog.Repository
	tokens     *auth.TokenService
	sender     mailer.Sender
	queue      *queue.Queue
	logger     *zap.Logger

	// subject fallbacks for events that set none, from EmailConfig
	invitationSubject   string
	confirmationSubject string
}

// NewEmailProcessor wires the processor against the repositories and the
// mail transport.
func NewEmailProcessor(
	userRepo *users.Repository,
	eventRepo *events.Repository,
	joinRepo *userevents.Repository,
	invitationTemplates, verifiedTemplates *templates.Repository,
	logs *emaillog.Repository,
	tokens *auth.TokenService,
	sender mailer.Sender,
	q *queue.Queue,
	logger *zap.Logger,
	invitationSubject, confirmationSubject string,
) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{
		users: userRepo, events: eventRepo, joins: joinRepo,
		invitation: invitationTemplates, verified: verifiedTemplates,
		logs: logs, tokens: tokens, sender: sender, queue: q, logger: logger,
		invitationSubject: invitationSubject, confirmationSubject: confirmationSubject,
	}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	user, err := p.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return p.fail(ctx, payload.LogID, fmt.Errorf("load user %d: %w", payload.UserID, err))
	}
	event, err := p.events.GetByID(ctx, payload.EventID)
	if err != nil {
		return p.fail(ctx, payload.LogID, fmt.Errorf("load event %d: %w", payload.EventID, err))
	}

	var msg *mailer.Message
	switch job.Type {
	case queue.JobTypeConfirmation:
		msg, err = p.buildConfirmation(ctx, event, user)
	case queue.JobTypeResend:
		msg, err = p.buildResend(ctx, event, user)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	if err != nil {
		return p.fail(ctx, payload.LogID, err)
	}

	if err := p.sender.Send(ctx, msg); err != nil {
		return p.fail(ctx, payload.LogID, err)
	}
	if payload.LogID != 0 {
		if err := p.logs.MarkSent(ctx, payload.LogID); err != nil {
			p.logger.Warn("mark email log sent", zap.Int64("log_id", payload.LogID), zap.Error(err))
		}
	}
	p.logger.Info("email sent",
		zap.String("type", string(job.Type)),
		zap.Int64("user_id", user.ID),
		zap.Int64("event_id", event.ID))
	return nil
}

func (p *EmailProcessor) buildConfirmation(ctx context.Context, event *models.Event, user *models.User) (*mailer.Message, error) {
	tmpl, err := p.verified.GetByEvent(ctx, event.ID)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return nil, fmt.Errorf("no verification template for event %d", event.ID)
		}
		return nil, err
	}
	// The confirmation carries the invitee's current invitation token so
	// {{token}} links in the template keep working.
	token := ""
	if join, err := p.joins.Get(ctx, user.ID, event.ID); err == nil {
		token = join.InvitationURL
	}
	subject := event.VerificationSubject
	if subject == "" {
		subject = p.confirmationSubject
	}
	return buildMessage(tmpl, event, user, token, subject)
}

func (p *EmailProcessor) buildResend(ctx context.Context, event *models.Event, user *models.User) (*mailer.Message, error) {
	tmpl, err := p.invitation.GetByEvent(ctx, event.ID)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return nil, fmt.Errorf("no invitation template for event %d", event.ID)
		}
		return nil, err
	}
	// A resend mints a fresh token, invalidating earlier links.
	token, err := p.tokens.IssueInvitation(user.ID, event.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue invitation token: %w", err)
	}
	if err := p.users.SetInvitationSent(ctx, user.ID, token); err != nil {
		p.logger.Warn("mark user invited", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if _, err := p.joins.UpsertInvitation(ctx, user.ID, event.ID, token); err != nil {
		p.logger.Warn("upsert invitation row", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	subject := event.InvitationSubject
	if subject == "" {
		subject = p.invitationSubject
	}
	return buildMessage(tmpl, event, user, token, subject)
}

func buildMessage(tmpl *models.EmailTemplate, event *models.Event, user *models.User, token, subject string) (*mailer.Message, error) {
	qr, err := mailer.CheckinQR(user.ID, event.ID)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
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

func (p *EmailProcessor) fail(ctx context.Context, logID int64, cause error) error {
	if logID != 0 {
		if err := p.logs.MarkFailed(ctx, logID, cause.Error()); err != nil {
			p.logger.Warn("mark email log failed", zap.Int64("log_id", logID), zap.Error(err))
		}
	}
	return cause
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
