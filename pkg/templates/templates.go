// pkg/templates/templates.go
package templates

import (
	"encoding/json"
	"fmt"
	"os"

	"nexoprec/internal/form"
)

// Catalog is a file-backed set of starter form templates organizers can
// clone instead of building a schema from scratch.
type Catalog struct {
	Version   string     `json:"version"`
	Templates []Template `json:"templates"`
}

type Template struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Schema      form.Schema `json:"schema"`
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Find returns the template with the given id, or nil.
func (c *Catalog) Find(id string) *Template {
	if c == nil {
		return nil
	}
	for i := range c.Templates {
		if c.Templates[i].ID == id {
			return &c.Templates[i]
		}
	}
	return nil
}

// Validate checks catalog integrity: unique template ids, non-empty
// display names, and schemas that survive sanitization unchanged.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	for _, tpl := range c.Templates {
		if tpl.ID == "" {
			return fmt.Errorf("template with empty id")
		}
		if seen[tpl.ID] {
			return fmt.Errorf("duplicate template id: %s", tpl.ID)
		}
		seen[tpl.ID] = true

		if tpl.DisplayName == "" {
			return fmt.Errorf("template %s: displayName is required", tpl.ID)
		}

		raw, err := json.Marshal(tpl.Schema)
		if err != nil {
			return fmt.Errorf("template %s: %w", tpl.ID, err)
		}
		if err := form.ValidateDocument(raw); err != nil {
			return fmt.Errorf("template %s: %w", tpl.ID, err)
		}
	}
	return nil
}
