// internal/store/events.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nexoprec/internal/common/logger"
	"nexoprec/internal/form"
	"nexoprec/internal/models"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound     = errors.New("EVENT_NOT_FOUND")
	ErrEventAccessDenied = errors.New("EVENT_ACCESS_DENIED")
	ErrQueryFailed       = errors.New("DATABASE_QUERY_FAILED")
	ErrInsertFailed      = errors.New("DATABASE_INSERT_FAILED")
)

// EventStore persists events and their form schemas in PostgreSQL.
type EventStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewEventStore(db *sql.DB, log logger.Logger) *EventStore {
	return &EventStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "event-store"}),
	}
}

// Create inserts a new draft event. The form schema is sanitized before
// being written so stored schemas are always well-formed.
func (s *EventStore) Create(ctx context.Context, ownerID, title, description string, schema form.Schema) (*models.Event, error) {
	event := &models.Event{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		FormSchema:  form.Sanitize(schema),
		Status:      models.EventStatusDraft,
		CreatedAt:   time.Now().UTC(),
	}
	event.UpdatedAt = event.CreatedAt

	schemaJSON, err := event.SchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: marshal form schema: %v", ErrInsertFailed, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (
			id, owner_id, title, description, form_schema,
			ai_knowledge, terms_conditions, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		event.ID,
		event.OwnerID,
		event.Title,
		event.Description,
		schemaJSON,
		event.AIKnowledge,
		event.TermsConditions,
		string(event.Status),
		event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert event: %v", ErrInsertFailed, err)
	}

	s.logger.Info("event created", map[string]interface{}{
		"eventId": event.ID,
		"ownerId": ownerID,
	})
	return event, nil
}

// Get loads a single event by id.
func (s *EventStore) Get(ctx context.Context, eventID string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, form_schema,
		       ai_knowledge, terms_conditions, status,
		       start_date, end_date, created_at, updated_at
		FROM events
		WHERE id = $1`, eventID)
	return scanEvent(row)
}

// GetOwned loads an event and verifies it belongs to ownerID.
func (s *EventStore) GetOwned(ctx context.Context, eventID, ownerID string) (*models.Event, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: event %s does not belong to user %s", ErrEventAccessDenied, eventID, ownerID)
	}
	return event, nil
}

// ListByOwner returns all events owned by a user, newest first.
func (s *EventStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, form_schema,
		       ai_knowledge, terms_conditions, status,
		       start_date, end_date, created_at, updated_at
		FROM events
		WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrQueryFailed, err)
	}
	return events, nil
}

// Update applies a partial update to an owned event. The form schema, if
// present, is sanitized before being written.
func (s *EventStore) Update(ctx context.Context, eventID, ownerID string, update models.EventUpdate) (*models.Event, error) {
	event, err := s.GetOwned(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		event.Title = *update.Title
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.FormSchema != nil {
		event.FormSchema = form.Sanitize(*update.FormSchema)
	}
	if update.AIKnowledge != nil {
		event.AIKnowledge = *update.AIKnowledge
	}
	if update.TermsConditions != nil {
		event.TermsConditions = *update.TermsConditions
	}
	if update.Status != nil {
		event.Status = *update.Status
	}
	if update.StartDate != nil {
		event.StartDate = update.StartDate
	}
	if update.EndDate != nil {
		event.EndDate = update.EndDate
	}
	event.UpdatedAt = time.Now().UTC()

	schemaJSON, err := event.SchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: marshal form schema: %v", ErrInsertFailed, err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE events
		SET title = $1, description = $2, form_schema = $3,
		    ai_knowledge = $4, terms_conditions = $5, status = $6,
		    start_date = $7, end_date = $8, updated_at = $9
		WHERE id = $10`,
		event.Title,
		event.Description,
		schemaJSON,
		event.AIKnowledge,
		event.TermsConditions,
		string(event.Status),
		event.StartDate,
		event.EndDate,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: update event: %v", ErrInsertFailed, err)
	}
	return event, nil
}

// Delete removes an owned event and its submissions and chat sessions in
// one transaction.
func (s *EventStore) Delete(ctx context.Context, eventID, ownerID string) error {
	if _, err := s.GetOwned(ctx, eventID, ownerID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin delete: %v", ErrQueryFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_sessions WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("%w: delete chat sessions: %v", ErrQueryFailed, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("%w: delete submissions: %v", ErrQueryFailed, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, eventID); err != nil {
		return fmt.Errorf("%w: delete event: %v", ErrQueryFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit delete: %v", ErrQueryFailed, err)
	}

	s.logger.Info("event deleted", map[string]interface{}{"eventId": eventID})
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	var schemaJSON []byte
	var status string
	var startDate, endDate sql.NullTime

	err := row.Scan(
		&event.ID, &event.OwnerID, &event.Title, &event.Description,
		&schemaJSON, &event.AIKnowledge, &event.TermsConditions, &status,
		&startDate, &endDate, &event.CreatedAt, &event.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: event not found", ErrEventNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan event: %v", ErrQueryFailed, err)
	}

	if err := json.Unmarshal(schemaJSON, &event.FormSchema); err != nil {
		return nil, fmt.Errorf("%w: unmarshal form schema: %v", ErrQueryFailed, err)
	}
	event.Status = models.EventStatus(status)
	if startDate.Valid {
		event.StartDate = &startDate.Time
	}
	if endDate.Valid {
		event.EndDate = &endDate.Time
	}
	return &event, nil
}
