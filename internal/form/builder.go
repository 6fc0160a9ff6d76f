// internal/form/builder.go
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrOutOfRange signals a mutation addressed a non-existent field index.
	// This is a programming-contract violation in the builder UI, not a
	// user-facing condition.
	ErrOutOfRange = errors.New("INDEX_OUT_OF_RANGE")
	// ErrInvalidFieldType signals an unsupported field type.
	ErrInvalidFieldType = errors.New("INVALID_FIELD_TYPE")
)

const (
	defaultLabel        = "New Question"
	defaultSelectOption = "Option 1"
)

// FieldPatch carries the single attribute an updateField call replaces.
// Exactly one pointer should be set; nil pointers leave the attribute alone.
type FieldPatch struct {
	Label    *string
	Type     *FieldType
	Required *bool
	Options  []string
}

// ConditionPart addresses one half of a display condition.
type ConditionPart string

const (
	ConditionField ConditionPart = "field"
	ConditionValue ConditionPart = "value"
)

// AddField appends a new field of the given type with a freshly generated id
// that cannot collide with any existing id in the schema. Select fields start
// with a single placeholder option.
func AddField(s Schema, t FieldType) (Schema, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldType, t)
	}
	out := s.Clone()
	field := FieldDefinition{
		ID:       newFieldID(out),
		Type:     t,
		Label:    defaultLabel,
		Required: true,
	}
	if t == FieldSelect {
		field.Options = []string{defaultSelectOption}
	}
	return append(out, field), nil
}

// UpdateField replaces exactly one attribute of the field at index. The
// relative order of all fields is preserved.
func UpdateField(s Schema, index int, patch FieldPatch) (Schema, error) {
	if index < 0 || index >= len(s) {
		return nil, fmt.Errorf("%w: index %d, schema length %d", ErrOutOfRange, index, len(s))
	}
	out := s.Clone()
	f := &out[index]
	switch {
	case patch.Label != nil:
		f.Label = *patch.Label
	case patch.Type != nil:
		if !patch.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFieldType, *patch.Type)
		}
		f.Type = *patch.Type
	case patch.Required != nil:
		f.Required = *patch.Required
	case patch.Options != nil:
		f.Options = append([]string(nil), patch.Options...)
	}
	return out, nil
}

// UpdateCondition sets one half of the display condition on the field at
// index. Clearing the trigger field clears the whole condition rather than
// leaving an orphaned expected value behind.
func UpdateCondition(s Schema, index int, part ConditionPart, value string) (Schema, error) {
	if index < 0 || index >= len(s) {
		return nil, fmt.Errorf("%w: index %d, schema length %d", ErrOutOfRange, index, len(s))
	}
	out := s.Clone()
	f := &out[index]

	if part == ConditionField && value == "" {
		f.Condition = nil
		return out, nil
	}

	cond := Condition{}
	if f.Condition != nil {
		cond = *f.Condition
	}
	switch part {
	case ConditionField:
		cond.Field = value
	case ConditionValue:
		cond.Value = value
	default:
		return nil, fmt.Errorf("unknown condition part %q", part)
	}
	f.Condition = &cond
	return out, nil
}

// RemoveField deletes the field at index. Conditions on later fields that
// referenced the removed field are left in place; the evaluator's fail-open
// handling of dangling references keeps those fields visible.
func RemoveField(s Schema, index int) (Schema, error) {
	if index < 0 || index >= len(s) {
		return nil, fmt.Errorf("%w: index %d, schema length %d", ErrOutOfRange, index, len(s))
	}
	out := s.Clone()
	return append(out[:index], out[index+1:]...), nil
}

// MoveField relocates the field at from to position to, preserving the
// relative order of every other field.
func MoveField(s Schema, from, to int) (Schema, error) {
	if from < 0 || from >= len(s) {
		return nil, fmt.Errorf("%w: from index %d, schema length %d", ErrOutOfRange, from, len(s))
	}
	if to < 0 || to >= len(s) {
		return nil, fmt.Errorf("%w: to index %d, schema length %d", ErrOutOfRange, to, len(s))
	}
	out := s.Clone()
	field := out[from]
	out = append(out[:from], out[from+1:]...)
	rest := append(Schema{}, out[to:]...)
	out = append(append(out[:to], field), rest...)
	return out, nil
}

// newFieldID generates a schema-unique field id. Collisions with existing ids
// are retried; ids are never reused after deletion because they are random.
func newFieldID(s Schema) string {
	for {
		id := "field_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
		if s.IndexOf(id) < 0 {
			return id
		}
	}
}
