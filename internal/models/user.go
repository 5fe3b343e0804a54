package models

import "time"

// User is an invitee record. Created via CSV import or manual creation;
// profile fields are overwritten by the form data submitted at acceptance.
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Phone            string    `json:"phone,omitempty"`
	Title            string    `json:"title,omitempty"`
	Company          string    `json:"company,omitempty"`
	Comment          string    `json:"comment,omitempty"`
	EmailStatus      bool      `json:"emailStatus"`
	InvitationLink   string    `json:"invitationLink,omitempty"`
	TokenInvalidated bool      `json:"tokenInvalidated"`
	Tags             []Tag     `json:"tags,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Tag is a named audience segment for bulk sends.
type Tag struct {
	ID        int64     `json:"id"`
	TagName   string    `json:"tagName"`
	CreatedAt time.Time `json:"createdAt"`
}
