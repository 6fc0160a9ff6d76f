// internal/form/collector.go
package form

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrValidation signals a required visible field was missing or empty at
	// submit time. Submission is blocked; nothing is written.
	ErrValidation = errors.New("VALIDATION_FAILED")
	// ErrPendingUpload signals submit was attempted while a file upload for a
	// visible field was still in flight.
	ErrPendingUpload = errors.New("PENDING_UPLOAD")
)

// Collector holds the in-progress answer state for a single fill session.
// Uploads are tracked per field id so multiple concurrent per-field uploads
// stay independent. A Collector belongs to one session; the lock only guards
// the answer map against the upload callbacks racing answer writes.
type Collector struct {
	mu      sync.Mutex
	answers AnswerSet
	pending map[string]bool
}

func NewCollector() *Collector {
	return &Collector{
		answers: make(AnswerSet),
		pending: make(map[string]bool),
	}
}

// SetAnswer upserts the answer for a field. Last write wins per id.
func (c *Collector) SetAnswer(id, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[id] = value
}

// Answer returns the recorded answer for a field, if any.
func (c *Collector) Answer(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.answers[id]
	return v, ok
}

// Answers returns a snapshot copy of the collected answers.
func (c *Collector) Answers() AnswerSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers.clone()
}

// BeginUpload marks a file upload in flight for the field. Submission is
// rejected while any visible field has a pending upload.
func (c *Collector) BeginUpload(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[id] = true
}

// EndUpload clears the pending mark for the field. An abandoned upload that
// never resolves simply keeps its mark; its result is discarded with the
// session.
func (c *Collector) EndUpload(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// UploadPending reports whether an upload is in flight for the field.
func (c *Collector) UploadPending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[id]
}

// BuildSubmission produces the submittable payload for the schema. It walks
// the schema in order and copies the answer (or empty string) for every
// currently visible field. Hidden fields are excluded entirely, even when a
// stale answer for them exists: an answer hidden by a later change must never
// be submitted.
//
// It fails with ErrPendingUpload if an upload for a visible field is still in
// flight, and with ErrValidation if a visible required field has no answer.
func (c *Collector) BuildSubmission(s Schema) (AnswerSet, error) {
	c.mu.Lock()
	answers := c.answers.clone()
	pending := make([]string, 0)
	for id, inFlight := range c.pending {
		if inFlight {
			pending = append(pending, id)
		}
	}
	c.mu.Unlock()

	for i, f := range s {
		if !s.FieldVisible(i, answers) {
			continue
		}
		for _, id := range pending {
			if id == f.ID {
				return nil, fmt.Errorf("%w: upload still in progress for %q", ErrPendingUpload, f.Label)
			}
		}
	}

	var missing []string
	result := make(AnswerSet)
	for i, f := range s {
		if !s.FieldVisible(i, answers) {
			continue
		}
		value := answers[f.ID]
		if f.Required && value == "" {
			missing = append(missing, f.Label)
			continue
		}
		result[f.ID] = value
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: required fields empty: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return result, nil
}
