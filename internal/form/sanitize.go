// internal/form/sanitize.go
package form

import "strings"

// Sanitize normalizes a schema before persistence:
//
//   - fields with a missing id get a fresh unique one, and duplicate ids are
//     reassigned so every id is unique afterwards;
//   - select options that are empty or whitespace-only are dropped (kept
//     option values are stored as entered — option entry trims only leading
//     whitespace, see ParseOptions);
//   - conditions with an empty trigger id are dropped.
//
// Field order, ids already present, and non-select fields are never altered.
// Sanitize is idempotent.
func Sanitize(s Schema) Schema {
	out := s.Clone()
	seen := make(map[string]bool, len(out))
	for i := range out {
		f := &out[i]

		if strings.TrimSpace(f.ID) == "" || seen[f.ID] {
			f.ID = newFieldID(out)
		}
		seen[f.ID] = true

		if f.Type == FieldSelect && f.Options != nil {
			kept := f.Options[:0]
			for _, opt := range f.Options {
				if strings.TrimSpace(opt) != "" {
					kept = append(kept, opt)
				}
			}
			f.Options = kept
		}

		if f.Condition != nil && strings.TrimSpace(f.Condition.Field) == "" {
			f.Condition = nil
		}
	}
	return out
}
