package models

import (
	"encoding/json"
	"time"
)

// TemplateKind selects which of the two per-event templates a row is.
type TemplateKind string

const (
	// TemplateInvitation is the initial invitation email template.
	TemplateInvitation TemplateKind = "invitation"
	// TemplateVerified is the post-acceptance confirmation template.
	TemplateVerified TemplateKind = "verified"
)

// EmailTemplate is an HTML template with {{placeholder}} tokens, one per
// event per kind. Design optionally holds the structured editor
// representation the template was built from.
type EmailTemplate struct {
	ID           int64           `json:"id"`
	EventID      int64           `json:"eventId"`
	TemplateHTML string          `json:"templateHtml"`
	Design       json.RawMessage `json:"design,omitempty"`
	EventName    string          `json:"eventName,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
