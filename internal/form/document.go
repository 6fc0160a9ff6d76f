// internal/form/document.go
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaInvalid signals a raw schema document failed shape validation.
var ErrSchemaInvalid = errors.New("SCHEMA_INVALID")

// schemaDocument is the JSON Schema a persisted form schema must satisfy.
// Labels may be empty and ids missing during editing; Sanitize fills ids in
// before the document is stored.
const schemaDocument = `{
	"type": "array",
	"items": {
		"type": "object",
		"additionalProperties": false,
		"required": ["type"],
		"properties": {
			"id": {"type": "string"},
			"type": {"type": "string", "enum": ["text", "email", "select", "file"]},
			"label": {"type": "string"},
			"required": {"type": "boolean"},
			"options": {"type": "array", "items": {"type": "string"}},
			"condition": {
				"oneOf": [
					{"type": "null"},
					{
						"type": "object",
						"additionalProperties": false,
						"required": ["field", "value"],
						"properties": {
							"field": {"type": "string"},
							"value": {"type": "string"}
						}
					}
				]
			}
		}
	}
}`

var documentLoader = gojsonschema.NewStringLoader(schemaDocument)

// ValidateDocument checks a raw schema JSON document against the field shape
// contract before it is accepted for persistence.
func ValidateDocument(raw []byte) error {
	result, err := gojsonschema.Validate(documentLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaInvalid, strings.Join(details, "; "))
}

// ParseDocument validates and unmarshals a raw schema document.
func ParseDocument(raw []byte) (Schema, error) {
	if err := ValidateDocument(raw); err != nil {
		return nil, err
	}
	var s Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return s, nil
}
