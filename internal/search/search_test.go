// internal/search/search_test.go
package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexoprec/internal/form"
	"nexoprec/internal/models"
)

func testEvent() *models.Event {
	return &models.Event{
		ID:    "event-1",
		Title: "Open Recruitment 2026",
		FormSchema: form.Schema{
			{ID: "field_division", Type: form.FieldSelect, Label: "Division", Options: []string{"Engineering", "Design"}},
			{ID: "field_reason", Type: form.FieldText, Label: "Reason"},
		},
	}
}

func TestBuildDocument_FlattensByLabel(t *testing.T) {
	sub := &models.Submission{
		ID:      "sub-1",
		EventID: "event-1",
		Answers: form.AnswerSet{
			"field_division": "Engineering",
			"field_reason":   "I like building things",
		},
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	doc := BuildDocument(testEvent(), sub)

	assert.Equal(t, "sub-1", doc.SubmissionID)
	assert.Equal(t, "Engineering", doc.Answers["Division"])
	assert.Equal(t, "I like building things", doc.Answers["Reason"])
	assert.Equal(t, "Engineering I like building things", doc.FullText)
}

func TestBuildDocument_DropsOrphanedAnswers(t *testing.T) {
	sub := &models.Submission{
		ID:      "sub-1",
		EventID: "event-1",
		Answers: form.AnswerSet{
			"field_division": "Design",
			"field_removed":  "stale value",
		},
	}

	doc := BuildDocument(testEvent(), sub)

	assert.Len(t, doc.Answers, 1)
	assert.NotContains(t, doc.FullText, "stale value")
}

func TestBuildDocument_SkipsEmptyValuesInFullText(t *testing.T) {
	sub := &models.Submission{
		ID:      "sub-1",
		EventID: "event-1",
		Answers: form.AnswerSet{
			"field_division": "Engineering",
			"field_reason":   "",
		},
	}

	doc := BuildDocument(testEvent(), sub)

	assert.Equal(t, "Engineering", doc.FullText)
	assert.Equal(t, "", doc.Answers["Reason"])
}

func TestBuildSearchQuery_ScopesToEvent(t *testing.T) {
	query, err := BuildSearchQuery("event-1", "engineering")
	require.NoError(t, err)

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	term := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "event-1", term["eventId"])

	must := boolQuery["must"].([]interface{})
	match := must[0].(map[string]interface{})["match"].(map[string]interface{})
	fullText := match["fullText"].(map[string]interface{})
	assert.Equal(t, "engineering", fullText["query"])
}

func TestBuildSearchQuery_EmptyQueryListsAll(t *testing.T) {
	query, err := BuildSearchQuery("event-1", "")
	require.NoError(t, err)

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	_, hasMust := boolQuery["must"]
	assert.False(t, hasMust)
}

func TestBuildSearchQuery_RequiresEvent(t *testing.T) {
	_, err := BuildSearchQuery("", "anything")
	assert.ErrorIs(t, err, ErrMissingIndex)
}
