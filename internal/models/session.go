// internal/models/session.go
package models

import "time"

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single turn in an assistant conversation
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession holds the message history of one visitor conversation
// for an event. Sessions are keyed by (event_id, session_id).
type ChatSession struct {
	ID        string        `json:"id" db:"id"`
	EventID   string        `json:"eventId" db:"event_id"`
	SessionID string        `json:"sessionId" db:"session_id"`
	Messages  []ChatMessage `json:"messages" db:"messages"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// Append adds a message to the session history
func (s *ChatSession) Append(role ChatRole, content string, at time.Time) {
	s.Messages = append(s.Messages, ChatMessage{Role: role, Content: content, Timestamp: at})
	s.UpdatedAt = at
}
