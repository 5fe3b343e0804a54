package models

import "time"

// Admin is a management UI credential.
type Admin struct {
	ID                  int64      `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	ResetToken          string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// EmailType values recorded in the delivery log.
const (
	EmailTypeInvitation   = "invitation"
	EmailTypeConfirmation = "confirmation"
	EmailTypeResend       = "resend"
)

// EmailLogStatus values.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records one outbound email attempt for an event.
type EmailLog struct {
	ID             int64      `json:"id"`
	EventID        *int64     `json:"eventId,omitempty"`
	UserID         *int64     `json:"userId,omitempty"`
	EmailType      string     `json:"emailType"`
	RecipientEmail string     `json:"recipientEmail"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
