// internal/models/event.go
package models

import (
	"encoding/json"
	"time"

	"nexoprec/internal/form"
)

// EventStatus represents the lifecycle state of a recruitment event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusClosed    EventStatus = "closed"
)

// Event represents a recruitment event with its registration form
type Event struct {
	ID              string      `json:"id" db:"id"`
	OwnerID         string      `json:"ownerId" db:"owner_id"`
	Title           string      `json:"title" db:"title"`
	Description     string      `json:"description,omitempty" db:"description"`
	FormSchema      form.Schema `json:"formSchema" db:"form_schema"`
	AIKnowledge     string      `json:"aiKnowledge,omitempty" db:"ai_knowledge"`
	TermsConditions string      `json:"termsConditions,omitempty" db:"terms_conditions"`
	Status          EventStatus `json:"status" db:"status"`
	StartDate       *time.Time  `json:"startDate,omitempty" db:"start_date"`
	EndDate         *time.Time  `json:"endDate,omitempty" db:"end_date"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// RegistrationOpen reports whether the event accepts submissions at the
// given instant. Events without an end date stay open while published.
func (e *Event) RegistrationOpen(now time.Time) bool {
	if e.Status != EventStatusPublished {
		return false
	}
	if e.StartDate != nil && now.Before(*e.StartDate) {
		return false
	}
	if e.EndDate != nil && now.After(*e.EndDate) {
		return false
	}
	return true
}

// SchemaJSON returns the form schema serialized for storage.
func (e *Event) SchemaJSON() ([]byte, error) {
	return json.Marshal(e.FormSchema)
}

// EventUpdate carries the mutable event fields for partial updates
type EventUpdate struct {
	Title           *string      `json:"title,omitempty"`
	Description     *string      `json:"description,omitempty"`
	FormSchema      *form.Schema `json:"formSchema,omitempty"`
	AIKnowledge     *string      `json:"aiKnowledge,omitempty"`
	TermsConditions *string      `json:"termsConditions,omitempty"`
	Status          *EventStatus `json:"status,omitempty"`
	StartDate       *time.Time   `json:"startDate,omitempty"`
	EndDate         *time.Time   `json:"endDate,omitempty"`
}
