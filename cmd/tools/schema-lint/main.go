// cmd/tools/schema-lint/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"nexoprec/internal/form"
)

// schema-lint checks form schema documents the way the service would:
// JSON Schema validation first, then a sanitizer dry-run that reports
// what persistence would silently fix.
func main() {
	fix := flag.Bool("fix", false, "rewrite the file with the sanitized schema")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: schema-lint [-fix] <schema.json> [...]")
		os.Exit(1)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := lint(path, *fix); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func lint(path string, fix bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	schema, err := form.ParseDocument(raw)
	if err != nil {
		return err
	}

	warnings := inspect(schema)
	for _, w := range warnings {
		fmt.Printf("%s: %s\n", path, w)
	}

	sanitized := form.Sanitize(schema)
	if fix {
		out, err := json.MarshalIndent(sanitized, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(out, '\n'), 0o644)
	}

	if len(warnings) == 0 {
		fmt.Printf("%s: ok (%d fields)\n", path, len(schema))
	}
	return nil
}

// inspect reports what Sanitize would change plus condition references
// the evaluator treats as always-visible.
func inspect(s form.Schema) []string {
	var warnings []string

	seen := make(map[string]bool)
	for i, field := range s {
		if field.ID == "" {
			warnings = append(warnings, fmt.Sprintf("field %d (%q): missing id, sanitizer will assign one", i, field.Label))
		} else if seen[field.ID] {
			warnings = append(warnings, fmt.Sprintf("field %d (%q): duplicate id %s, sanitizer will reassign", i, field.Label, field.ID))
		}
		seen[field.ID] = true

		if field.Type == form.FieldSelect {
			for _, opt := range field.Options {
				if strings.TrimSpace(opt) == "" {
					warnings = append(warnings, fmt.Sprintf("field %d (%q): whitespace-only option will be dropped", i, field.Label))
					break
				}
			}
		}

		cond := field.Condition
		if cond == nil {
			continue
		}
		if cond.Field == "" {
			warnings = append(warnings, fmt.Sprintf("field %d (%q): condition without trigger will be dropped", i, field.Label))
			continue
		}

		trigger := s.IndexOf(cond.Field)
		switch {
		case trigger < 0:
			warnings = append(warnings, fmt.Sprintf("field %d (%q): condition references missing field %s, field is always visible", i, field.Label, cond.Field))
		case trigger >= i:
			warnings = append(warnings, fmt.Sprintf("field %d (%q): condition references %s at or after itself, field is always visible", i, field.Label, cond.Field))
		case s[trigger].Type != form.FieldSelect:
			warnings = append(warnings, fmt.Sprintf("field %d (%q): condition trigger %s is not a select field, field is always visible", i, field.Label, cond.Field))
		}
	}

	return warnings
}
