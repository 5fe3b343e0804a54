package mailer

import "context"

// Attachment is a file carried by a message. When CID is non-empty the file
// is embedded inline and referenced from the HTML body as cid:<CID>,
// otherwise it is attached as a regular download.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
	CID         string
}

// Message is a single outbound email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages. Workflows depend on this interface so delivery
// can be faked in tests.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}
