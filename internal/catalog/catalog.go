// Package catalog defines the closed vocabulary of inventory operations
// the assistant can execute. Specs are immutable after construction;
// unknown names are rejected at this boundary.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// FieldType is the wire type of a tool argument.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
)

// Field describes one argument of a tool. Field order is the
// declaration order and is preserved everywhere it surfaces (prompts,
// missing-field lists).
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string
}

// ToolSpec is one named, schema-defined inventory operation.
type ToolSpec struct {
	Name        string
	Description string
	Fields      []Field
}

// RequiredFields returns the names of required arguments in declaration
// order.
func (s ToolSpec) RequiredFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field looks up an argument by name.
func (s ToolSpec) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SchemaJSON renders the argument schema as a JSON Schema document. It
// is embedded in extraction prompts and compiled at catalog
// construction to reject malformed specs at startup.
func (s ToolSpec) SchemaJSON() (string, error) {
	props := map[string]any{}
	for _, f := range s.Fields {
		prop := map[string]any{
			"type":        string(f.Type),
			"description": f.Description,
		}
		if f.Type == TypeArray {
			prop["items"] = map[string]any{"type": "object"}
		}
		props[f.Name] = prop
	}
	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
		"required":   s.RequiredFields(),
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema for %s: %w", s.Name, err)
	}
	return string(raw), nil
}

// Catalog is the closed set of tool specs, looked up by name.
type Catalog struct {
	order []string
	specs map[string]ToolSpec
}

// New builds a catalog from specs, compiling each argument schema.
func New(specs []ToolSpec) (*Catalog, error) {
	c := &Catalog{specs: make(map[string]ToolSpec, len(specs))}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("tool spec with empty name")
		}
		if _, dup := c.specs[s.Name]; dup {
			return nil, fmt.Errorf("duplicate tool spec %q", s.Name)
		}
		raw, err := s.SchemaJSON()
		if err != nil {
			return nil, err
		}
		if _, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw)); err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", s.Name, err)
		}
		c.specs[s.Name] = s
		c.order = append(c.order, s.Name)
	}
	return c, nil
}

// Lookup returns the spec for name.
func (c *Catalog) Lookup(name string) (ToolSpec, bool) {
	s, ok := c.specs[name]
	return s, ok
}

// Names returns tool names in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Specs returns all specs in declaration order.
func (c *Catalog) Specs() []ToolSpec {
	out := make([]ToolSpec, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.specs[name])
	}
	return out
}
