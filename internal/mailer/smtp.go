package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/smtp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	gomail "gopkg.in/gomail.v2"

	"github.com/youssifElhelaly12/rayaBackend/config"
)

// SMTPSender delivers mail through an SMTP relay using gomail. Plain auth
// over STARTTLS by default; XOAUTH2 when OAuth2 client credentials are
// configured (Office 365 app-only flow).
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

// NewSMTPSender builds a sender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, errors.New("mailer: SMTP host is not configured")
	}
	d := &gomail.Dialer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
	}
	if cfg.OAuth2ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.OAuth2ClientID,
			ClientSecret: cfg.OAuth2ClientSecret,
			TokenURL:     cfg.OAuth2TokenURL,
			Scopes:       []string{cfg.OAuth2Scope},
		}
		d.Auth = &xoauth2Auth{
			user:   cfg.SMTPUser,
			tokens: cc.TokenSource(context.Background()),
		}
	}
	return &SMTPSender{dialer: d, from: cfg.FromAddress, name: cfg.FromName}, nil
}

// Send delivers a single message. gomail dials per call, which keeps the
// sender safe for concurrent use by the bulk worker pool.
func (s *SMTPSender) Send(_ context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.name)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	for _, att := range msg.Attachments {
		att := att
		copier := gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(att.Content)
			return err
		})
		header := gomail.SetHeader(map[string][]string{
			"Content-Type": {att.ContentType},
		})
		if att.CID != "" {
			m.Embed(att.Name, copier, header)
		} else {
			m.Attach(att.Name, copier, header)
		}
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

// xoauth2Auth implements the SASL XOAUTH2 mechanism over a refreshing
// token source, so long-running workers never send a stale token.
type xoauth2Auth struct {
	user   string
	tokens oauth2.TokenSource
}

func (a *xoauth2Auth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	tok, err := a.tokens.Token()
	if err != nil {
		return "", nil, fmt.Errorf("mailer: fetch oauth2 token: %w", err)
	}
	return "XOAUTH2", xoauth2InitialResponse(a.user, tok.AccessToken), nil
}

func (a *xoauth2Auth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		// The server is reporting an error payload; an empty response
		// prompts it to fail the exchange with a proper SMTP code.
		return []byte{}, nil
	}
	return nil, nil
}

func xoauth2InitialResponse(user, accessToken string) []byte {
	return []byte("user=" + user + "\x01auth=Bearer " + accessToken + "\x01\x01")
}
