// internal/form/field.go

// Package form implements the dynamic form schema engine: field definitions
// with single-level display conditions, builder mutations, pre-persistence
// sanitation, fill-time answer collection, and the submission-to-table
// reconciliation used for review and CSV export.
package form

import "strings"

// FieldType identifies the kind of answer a field collects.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldEmail  FieldType = "email"
	FieldSelect FieldType = "select"
	FieldFile   FieldType = "file"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldSelect, FieldFile:
		return true
	}
	return false
}

// Condition makes a field visible only while the referenced trigger field's
// answer equals Value exactly. The trigger must be a select field positioned
// earlier in the schema; anything else is resolved fail-open at evaluation
// time rather than rejected here.
type Condition struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FieldDefinition is the schema unit. Options is populated for select fields
// only; Condition is nil for always-visible fields.
type FieldDefinition struct {
	ID        string     `json:"id"`
	Type      FieldType  `json:"type"`
	Label     string     `json:"label"`
	Required  bool       `json:"required"`
	Options   []string   `json:"options,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
}

func (f FieldDefinition) clone() FieldDefinition {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.Condition != nil {
		c := *f.Condition
		out.Condition = &c
	}
	return out
}

// Schema is the ordered sequence of field definitions. Order is significant:
// it is both the display order and the set of fields a later condition may
// reference.
type Schema []FieldDefinition

// Clone returns a deep copy so mutations never leak into a caller's schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for i, f := range s {
		out[i] = f.clone()
	}
	return out
}

// IndexOf returns the position of the field with the given id, or -1.
func (s Schema) IndexOf(id string) int {
	for i, f := range s {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// Labels returns the display labels in schema order.
func (s Schema) Labels() []string {
	labels := make([]string, len(s))
	for i, f := range s {
		labels[i] = f.Label
	}
	return labels
}

// AnswerSet maps field id to the collected value. File answers hold the
// storage URL returned by the upload service; the engine treats it as an
// opaque string. An AnswerSet is not guaranteed to cover every schema field.
type AnswerSet map[string]string

func (a AnswerSet) clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ParseOptions splits a comma-separated option list the way the builder UI
// enters it: only leading whitespace is trimmed from each piece. Fully empty
// pieces are kept here; Sanitize drops them before persistence.
func ParseOptions(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimLeft(p, " \t")
	}
	return out
}
