// internal/store/chats_test.go
package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexoprec/internal/models"
)

func TestChatStore_Get_ReturnsEmptySessionWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM chat_sessions`).
		WithArgs("event-1", "visitor-abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "session_id", "messages", "created_at", "updated_at"}))

	store := NewChatStore(db, createTestLogger(t))
	session, err := store.Get(context.Background(), "event-1", "visitor-abc")

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "event-1", session.EventID)
	assert.Equal(t, "visitor-abc", session.SessionID)
	assert.Empty(t, session.Messages)
}

func TestChatStore_Get_LoadsHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	messagesJSON, _ := json.Marshal([]models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "When is the deadline?", Timestamp: now},
		{Role: models.ChatRoleAssistant, Content: "March 31.", Timestamp: now},
	})

	mock.ExpectQuery(`SELECT .+ FROM chat_sessions`).
		WithArgs("event-1", "visitor-abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "session_id", "messages", "created_at", "updated_at"}).
			AddRow("chat-1", "event-1", "visitor-abc", messagesJSON, now, now))

	store := NewChatStore(db, createTestLogger(t))
	session, err := store.Get(context.Background(), "event-1", "visitor-abc")

	require.NoError(t, err)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, models.ChatRoleUser, session.Messages[0].Role)
	assert.Equal(t, "March 31.", session.Messages[1].Content)
}

func TestChatStore_Save_Upserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO chat_sessions .+ ON CONFLICT`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	session := &models.ChatSession{
		ID:        "chat-1",
		EventID:   "event-1",
		SessionID: "visitor-abc",
		CreatedAt: now,
		UpdatedAt: now,
	}
	session.Append(models.ChatRoleUser, "Hello", now)

	store := NewChatStore(db, createTestLogger(t))
	err = store.Save(context.Background(), session)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
