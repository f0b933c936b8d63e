// Package schema builds and validates the JSON Schema documents that describe tool arguments.
//
// # Quick Start
//
//	params := schema.Object(map[string]*schema.Property{
//	    "dish_name": schema.String("Le nom du plat pour lequel obtenir la recette"),
//	}, "dish_name") // "dish_name" is required
//
//	s := schema.MustCompile(params)
//	err := s.Validate(map[string]any{"dish_name": "omelette"})
//
// Object schemas are closed: keys not listed as properties fail validation. The raw map is what
// the Chat Completion Service receives as the tool's parameter schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema pairs a raw JSON Schema map (sent to the model) with its compiled validator.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate validates decoded JSON arguments against the schema.
// A nil schema accepts everything.
func (s *Schema) Validate(data map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(toJSONValue(data)); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Schema.
// A nil map compiles to a nil Schema, which accepts everything.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at registry construction.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// toJSONValue round-trips v through JSON so nested values carry the types the validator expects.
func toJSONValue(v map[string]any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	out, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return v
	}
	return out
}

// -----------------------------------------------------------------------------
// Schema Builders
// -----------------------------------------------------------------------------

// Object creates a closed object schema with the given properties.
// Pass property names as variadic arguments to mark them as required.
//
// Example:
//
//	// No arguments at all (check_fridge)
//	schema.Object(nil)
//
//	// All properties optional (menu_db)
//	schema.Object(map[string]*schema.Property{
//	    "category":  schema.String("Catégorie du plat"),
//	    "max_price": schema.Number("Prix maximum"),
//	})
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// Property represents a property in an object schema.
type Property struct {
	typ         string
	nullable    bool
	description string
	minimum     *float64
}

func (p *Property) build() map[string]any {
	m := map[string]any{}

	if p.typ != "" {
		if p.nullable {
			m["type"] = []any{p.typ, "null"}
		} else {
			m["type"] = p.typ
		}
	}
	if p.description != "" {
		m["description"] = p.description
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}

	return m
}

// String creates a string property.
//
// Example:
//
//	schema.String("Le nom de l'ingrédient à analyser")
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Number creates a number property (floating point).
//
// Example:
//
//	schema.Number("Prix maximum en euros").Min(0)
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Nullable also accepts JSON null, for optional arguments the model may send explicitly empty.
//
// Example:
//
//	schema.String("Restriction alimentaire").Nullable()
func (p *Property) Nullable() *Property {
	p.nullable = true
	return p
}

// Min sets the minimum value for number properties.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}
