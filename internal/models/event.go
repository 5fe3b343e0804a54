package models

import "time"

// IDImageMode controls whether identification image upload is part of the
// acceptance form for an event.
type IDImageMode string

const (
	IDImageRequired IDImageMode = "required"
	IDImageOptional IDImageMode = "optional"
	IDImageDisabled IDImageMode = "disabled"
)

// Event is the root entity: it owns its templates, questions and join rows.
type Event struct {
	ID                  int64       `json:"id"`
	EventName           string      `json:"eventName"`
	EventPage           string      `json:"eventPage,omitempty"`
	EventBannerImage    string      `json:"eventBannerImage,omitempty"`
	ApologizeContent    string      `json:"apologizeContent,omitempty"`
	AcceptedContent     string      `json:"acceptedContent,omitempty"`
	InvitationSubject   string      `json:"invitationSubject,omitempty"`
	VerificationSubject string      `json:"verificationSubject,omitempty"`
	IDImageMode         IDImageMode `json:"idImageMode"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// UserEvent is the join entity tracking one user's invitation, acceptance
// and check-in lifecycle for one event. At most one row per (user, event),
// enforced by a unique constraint.
type UserEvent struct {
	ID                       int64     `json:"id"`
	UserID                   int64     `json:"userId"`
	EventID                  int64     `json:"eventId"`
	InvitationURL            string    `json:"invitationUrl,omitempty"`
	EmailStatus              bool      `json:"emailStatus"`
	AcceptedInvitationStatus bool      `json:"acceptedInvitationStatus"`
	IsEnter                  bool      `json:"isEnter"`
	IDImage                  []string  `json:"idImage"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
}
