// internal/form/collector_test.go
package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_SetAnswerLastWriteWins(t *testing.T) {
	c := NewCollector()

	c.SetAnswer("q1", "first")
	c.SetAnswer("q1", "second")

	v, ok := c.Answer("q1")
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestBuildSubmission_HiddenFieldExcluded(t *testing.T) {
	// Scenario: q2 only shows when q1 = Yes.
	s := sampleSchema()
	c := NewCollector()
	c.SetAnswer("q1", "No")

	got, err := c.BuildSubmission(s)
	require.NoError(t, err)

	assert.Equal(t, AnswerSet{"q1": "No"}, got)
	_, present := got["q2"]
	assert.False(t, present, "hidden field must not appear at all")
}

func TestBuildSubmission_VisibleFieldsIncluded(t *testing.T) {
	s := sampleSchema()
	c := NewCollector()
	c.SetAnswer("q1", "Yes")
	c.SetAnswer("q2", "hello")

	got, err := c.BuildSubmission(s)
	require.NoError(t, err)

	assert.Equal(t, AnswerSet{"q1": "Yes", "q2": "hello"}, got)
}

func TestBuildSubmission_StaleHiddenAnswerNeverLeaks(t *testing.T) {
	s := sampleSchema()
	c := NewCollector()
	c.SetAnswer("q1", "Yes")
	c.SetAnswer("q2", "typed before q1 changed")
	c.SetAnswer("q1", "No")

	got, err := c.BuildSubmission(s)
	require.NoError(t, err)

	assert.Equal(t, AnswerSet{"q1": "No"}, got)
}

func TestBuildSubmission_RequiredVisibleEmptyFails(t *testing.T) {
	s := sampleSchema()
	c := NewCollector()
	c.SetAnswer("q1", "Yes") // makes required q2 visible, but empty

	_, err := c.BuildSubmission(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Reason")
}

func TestBuildSubmission_RequiredHiddenEmptyPasses(t *testing.T) {
	s := sampleSchema()
	c := NewCollector()
	c.SetAnswer("q1", "No") // q2 hidden, so its emptiness is irrelevant

	_, err := c.BuildSubmission(s)
	assert.NoError(t, err)
}

func TestBuildSubmission_OptionalVisibleEmptyCopiedAsEmptyString(t *testing.T) {
	s := Schema{
		{ID: "q1", Type: FieldText, Label: "Nickname", Required: false},
	}
	c := NewCollector()

	got, err := c.BuildSubmission(s)
	require.NoError(t, err)
	assert.Equal(t, AnswerSet{"q1": ""}, got)
}

func TestBuildSubmission_PendingUploadBlocksSubmit(t *testing.T) {
	s := Schema{
		{ID: "cv", Type: FieldFile, Label: "CV", Required: true},
	}
	c := NewCollector()
	c.BeginUpload("cv")

	_, err := c.BuildSubmission(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPendingUpload)

	c.EndUpload("cv")
	c.SetAnswer("cv", "https://files.example.com/ev1/abc.pdf")

	got, err := c.BuildSubmission(s)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/ev1/abc.pdf", got["cv"])
}

func TestBuildSubmission_PendingUploadOnHiddenFieldIgnored(t *testing.T) {
	s := Schema{
		{ID: "q1", Type: FieldSelect, Label: "Has CV?", Options: []string{"Yes", "No"}},
		{ID: "cv", Type: FieldFile, Label: "CV", Condition: &Condition{Field: "q1", Value: "Yes"}},
	}
	c := NewCollector()
	c.SetAnswer("q1", "No")
	c.BeginUpload("cv")

	_, err := c.BuildSubmission(s)
	assert.NoError(t, err, "uploads for hidden fields must not block submit")
}

func TestBuildSubmission_PerFieldUploadsIndependent(t *testing.T) {
	s := Schema{
		{ID: "cv", Type: FieldFile, Label: "CV"},
		{ID: "portfolio", Type: FieldFile, Label: "Portfolio"},
	}
	c := NewCollector()
	c.BeginUpload("cv")
	c.BeginUpload("portfolio")
	c.EndUpload("cv")

	assert.False(t, c.UploadPending("cv"))
	assert.True(t, c.UploadPending("portfolio"))

	_, err := c.BuildSubmission(s)
	assert.ErrorIs(t, err, ErrPendingUpload)
}
