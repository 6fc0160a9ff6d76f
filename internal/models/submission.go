// internal/models/submission.go
package models

import (
	"time"

	"nexoprec/internal/form"
)

// Submission represents a single registration form submission
type Submission struct {
	ID        string         `json:"id" db:"id"`
	EventID   string         `json:"eventId" db:"event_id"`
	Answers   form.AnswerSet `json:"answers" db:"answers"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

// SubmissionPage is a paginated slice of submissions
type SubmissionPage struct {
	Submissions []Submission `json:"submissions"`
	Total       int          `json:"total"`
	Offset      int          `json:"offset"`
	Limit       int          `json:"limit"`
}
