// internal/store/submissions.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nexoprec/internal/common/logger"
	"nexoprec/internal/form"
	"nexoprec/internal/models"

	"github.com/google/uuid"
)

// SubmissionStore persists submitted form answers in PostgreSQL.
type SubmissionStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSubmissionStore(db *sql.DB, log logger.Logger) *SubmissionStore {
	return &SubmissionStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "submission-store"}),
	}
}

// Create inserts one submission for an event.
func (s *SubmissionStore) Create(ctx context.Context, eventID string, answers form.AnswerSet) (*models.Submission, error) {
	sub := &models.Submission{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Answers:   answers,
		CreatedAt: time.Now().UTC(),
	}

	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal answers: %v", ErrInsertFailed, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, event_id, answers, created_at)
		VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.EventID, answersJSON, sub.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert submission: %v", ErrInsertFailed, err)
	}

	s.logger.Info("submission recorded", map[string]interface{}{
		"eventId":      eventID,
		"submissionId": sub.ID,
	})
	return sub, nil
}

// ListByEvent returns a page of an event's submissions, newest first.
// A limit of zero means no limit.
func (s *SubmissionStore) ListByEvent(ctx context.Context, eventID string, offset, limit int) (*models.SubmissionPage, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE event_id = $1`, eventID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("%w: count submissions: %v", ErrQueryFailed, err)
	}

	query := `
		SELECT id, event_id, answers, created_at
		FROM submissions
		WHERE event_id = $1
		ORDER BY created_at DESC
		OFFSET $2`
	args := []interface{}{eventID, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list submissions: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	page := &models.SubmissionPage{Total: total, Offset: offset, Limit: limit}
	for rows.Next() {
		var sub models.Submission
		var answersJSON []byte
		if err := rows.Scan(&sub.ID, &sub.EventID, &answersJSON, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan submission: %v", ErrQueryFailed, err)
		}
		if err := json.Unmarshal(answersJSON, &sub.Answers); err != nil {
			return nil, fmt.Errorf("%w: unmarshal answers: %v", ErrQueryFailed, err)
		}
		page.Submissions = append(page.Submissions, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list submissions: %v", ErrQueryFailed, err)
	}
	return page, nil
}

// AllByEvent returns every submission of an event in chronological order,
// the shape the CSV exporter wants.
func (s *SubmissionStore) AllByEvent(ctx context.Context, eventID string) ([]form.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT answers, created_at
		FROM submissions
		WHERE event_id = $1
		ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: export submissions: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var subs []form.Submission
	for rows.Next() {
		var answersJSON []byte
		var createdAt time.Time
		if err := rows.Scan(&answersJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan submission: %v", ErrQueryFailed, err)
		}
		var answers form.AnswerSet
		if err := json.Unmarshal(answersJSON, &answers); err != nil {
			return nil, fmt.Errorf("%w: unmarshal answers: %v", ErrQueryFailed, err)
		}
		subs = append(subs, form.Submission{Answers: answers, CreatedAt: createdAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: export submissions: %v", ErrQueryFailed, err)
	}
	return subs, nil
}
