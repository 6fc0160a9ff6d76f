// internal/form/export_test.go
package form

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_SchemaDriven(t *testing.T) {
	s := Schema{
		{ID: "name", Type: FieldText, Label: "Name"},
		{ID: "new", Type: FieldText, Label: "Added Later"},
	}
	subs := []Submission{
		{
			Answers:   AnswerSet{"name": "Alice", "removed": "stale value"},
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	rows := Reconcile(s, subs)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Alice", ""}, rows[0].Values,
		"fields added after submission render blank; removed fields are dropped")
}

func TestWriteCSV_QuoteEscaping(t *testing.T) {
	// Scenario D: an answer containing quotes.
	s := Schema{{ID: "q1", Type: FieldText, Label: "Answer"}}
	subs := []Submission{
		{Answers: AnswerSet{"q1": `Said "yes"`}, CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	}

	var b strings.Builder
	require.NoError(t, WriteCSV(&b, s, subs))
	out := b.String()

	assert.True(t, strings.HasPrefix(out, "\uFEFF"), "BOM prefix for spreadsheet encoding detection")
	assert.Contains(t, out, `"Said ""yes"""`)
}

func TestWriteCSV_HeaderAndRows(t *testing.T) {
	s := Schema{
		{ID: "name", Type: FieldText, Label: "Name"},
		{ID: "div", Type: FieldSelect, Label: "Division", Options: []string{"Tech"}},
	}
	subs := []Submission{
		{Answers: AnswerSet{"name": "Bob", "div": "Tech"}, CreatedAt: time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)},
		{Answers: AnswerSet{"name": "Cara"}, CreatedAt: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)},
	}

	var b strings.Builder
	require.NoError(t, WriteCSV(&b, s, subs))

	lines := strings.Split(strings.TrimPrefix(b.String(), "\uFEFF"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Submission Date","Name","Division"`, lines[0])
	assert.Equal(t, `"2026-03-02 08:30:00","Bob","Tech"`, lines[1])
	assert.Equal(t, `"2026-03-03 09:00:00","Cara",""`, lines[2])
}

func TestWriteCSV_EmptySchema(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteCSV(&b, Schema{}, nil))
	assert.Equal(t, "\uFEFF"+`"Submission Date"`, b.String())
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "submissions_Open_Recruitment_2026.csv", ExportFilename("Open Recruitment 2026"))
	assert.Equal(t, "submissions_tabs_and_spaces.csv", ExportFilename("tabs \t and\nspaces"))
}
