// internal/store/chats.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nexoprec/internal/common/logger"
	"nexoprec/internal/models"

	"github.com/google/uuid"
)

// ChatStore persists assistant conversations. Sessions are upserted on
// the (event_id, session_id) pair so a visitor's history accumulates in
// a single row.
type ChatStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewChatStore(db *sql.DB, log logger.Logger) *ChatStore {
	return &ChatStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "chat-store"}),
	}
}

// Get loads the session for a visitor, or returns an empty session when
// none exists yet.
func (s *ChatStore) Get(ctx context.Context, eventID, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	var messagesJSON []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT id, event_id, session_id, messages, created_at, updated_at
		FROM chat_sessions
		WHERE event_id = $1 AND session_id = $2`,
		eventID, sessionID).Scan(
		&session.ID, &session.EventID, &session.SessionID,
		&messagesJSON, &session.CreatedAt, &session.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		now := time.Now().UTC()
		return &models.ChatSession{
			ID:        uuid.New().String(),
			EventID:   eventID,
			SessionID: sessionID,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load chat session: %v", ErrQueryFailed, err)
	}

	if err := json.Unmarshal(messagesJSON, &session.Messages); err != nil {
		return nil, fmt.Errorf("%w: unmarshal chat messages: %v", ErrQueryFailed, err)
	}
	return &session, nil
}

// Save upserts the session, replacing its message history.
func (s *ChatStore) Save(ctx context.Context, session *models.ChatSession) error {
	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("%w: marshal chat messages: %v", ErrInsertFailed, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, event_id, session_id, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, session_id)
		DO UPDATE SET messages = $4, updated_at = $6`,
		session.ID, session.EventID, session.SessionID,
		messagesJSON, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: save chat session: %v", ErrInsertFailed, err)
	}
	return nil
}

// ListByEvent returns all of an event's chat sessions, most recently
// active first. Organizers read this as a review feed.
func (s *ChatStore) ListByEvent(ctx context.Context, eventID string) ([]models.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, session_id, messages, created_at, updated_at
		FROM chat_sessions
		WHERE event_id = $1
		ORDER BY updated_at DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: list chat sessions: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var sessions []models.ChatSession
	for rows.Next() {
		var session models.ChatSession
		var messagesJSON []byte
		if err := rows.Scan(
			&session.ID, &session.EventID, &session.SessionID,
			&messagesJSON, &session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan chat session: %v", ErrQueryFailed, err)
		}
		if err := json.Unmarshal(messagesJSON, &session.Messages); err != nil {
			return nil, fmt.Errorf("%w: unmarshal chat messages: %v", ErrQueryFailed, err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list chat sessions: %v", ErrQueryFailed, err)
	}
	return sessions, nil
}
