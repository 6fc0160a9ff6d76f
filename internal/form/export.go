// internal/form/export.go
package form

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Submission is the boundary shape the reconciler consumes: an immutable
// answer set plus the creation timestamp assigned at submit time.
type Submission struct {
	Answers   AnswerSet `json:"answers"`
	CreatedAt time.Time `json:"created_at"`
}

// Row is one reconciled submission aligned to the current schema.
type Row struct {
	SubmittedAt time.Time
	// Values holds one entry per schema field, in schema order. Fields the
	// record never answered render as empty strings.
	Values []string
}

// Reconcile joins stored submission records against the current schema.
// Iteration is schema-driven: fields added after a submission show blank for
// it, and answers for fields since removed from the schema are dropped from
// the view even though the records still carry them.
func Reconcile(s Schema, subs []Submission) []Row {
	rows := make([]Row, len(subs))
	for i, sub := range subs {
		values := make([]string, len(s))
		for j, f := range s {
			values[j] = sub.Answers[f.ID]
		}
		rows[i] = Row{SubmittedAt: sub.CreatedAt, Values: values}
	}
	return rows
}

const (
	csvBOM        = "\uFEFF"
	csvDateHeader = "Submission Date"
	csvTimeLayout = "2006-01-02 15:04:05"
)

// WriteCSV writes the reconciled table as UTF-8 CSV with a byte-order marker
// so spreadsheet tools detect the encoding. Every cell is quoted with
// internal quotes doubled. Columns are the submission date followed by the
// schema labels in order.
func WriteCSV(w io.Writer, s Schema, subs []Submission) error {
	var b strings.Builder
	b.WriteString(csvBOM)

	header := append([]string{csvDateHeader}, s.Labels()...)
	b.WriteString(joinCSVRow(header))

	for _, row := range Reconcile(s, subs) {
		cells := append([]string{row.SubmittedAt.UTC().Format(csvTimeLayout)}, row.Values...)
		b.WriteString("\n")
		b.WriteString(joinCSVRow(cells))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func joinCSVRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = escapeCSV(c)
	}
	return strings.Join(escaped, ",")
}

func escapeCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFilename derives the CSV download name from the event title, with
// whitespace runs replaced by underscores.
func ExportFilename(title string) string {
	return fmt.Sprintf("submissions_%s.csv", whitespaceRun.ReplaceAllString(title, "_"))
}
