// internal/form/condition.go
package form

// IsVisible reports whether the field is currently shown given the answers
// collected so far. A nil condition means always visible. Otherwise the
// trigger field's recorded answer must equal the expected value exactly; a
// missing answer never matches. Pure and O(1), safe to call on every
// keystroke.
func IsVisible(field FieldDefinition, answers AnswerSet) bool {
	if field.Condition == nil {
		return true
	}
	got, ok := answers[field.Condition.Field]
	return ok && got == field.Condition.Value
}

// FieldVisible resolves visibility for the field at index against the whole
// schema. Conditions whose trigger id no longer exists, references the field
// itself or a later field, or points at a non-select field are treated as
// always visible. Hiding a field over a broken reference would silently block
// form completion, so broken conditions fail open.
func (s Schema) FieldVisible(index int, answers AnswerSet) bool {
	if index < 0 || index >= len(s) {
		return false
	}
	f := s[index]
	if f.Condition == nil {
		return true
	}
	trigger := s.IndexOf(f.Condition.Field)
	if trigger < 0 || trigger >= index || s[trigger].Type != FieldSelect {
		return true
	}
	return IsVisible(f, answers)
}
