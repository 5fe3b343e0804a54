package models

import "time"

// AnswerType is how candidate answers render on the acceptance form.
type AnswerType string

const (
	AnswerTypeDropdown AnswerType = "dropdown"
	AnswerTypeSelect   AnswerType = "select"
	AnswerTypeRadio    AnswerType = "radio"
)

// Question belongs to an event; Answers holds the candidate answers.
type Question struct {
	ID         int64      `json:"id"`
	EventID    int64      `json:"eventId"`
	Question   string     `json:"question"`
	Answers    []string   `json:"answers"`
	AnswerType AnswerType `json:"answerType"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// UserAnswer is one answer submitted at acceptance time, scoped to
// (user, question, event).
type UserAnswer struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	QuestionID int64     `json:"questionId"`
	EventID    int64     `json:"eventId"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"createdAt"`
}
