package schema

import (
	"encoding/json"
	"fmt"

	invopop "github.com/invopop/jsonschema"
)

// Reflect derives a closed object schema from the exported fields of struct T, named by their
// json tags. Fields without omitempty are required. Descriptions come from
// jsonschema_description tags. It panics when T cannot be reflected, like MustCompile.
//
// Example:
//
//	type input struct {
//	    Task string `json:"task" jsonschema_description:"La tâche à confier"`
//	}
//	params := schema.Reflect[input]()
func Reflect[T any]() map[string]any {
	r := &invopop.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	var zero T
	data, err := json.Marshal(r.Reflect(zero))
	if err != nil {
		panic(fmt.Errorf("schema: reflect %T: %w", zero, err))
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		panic(fmt.Errorf("schema: reflect %T: %w", zero, err))
	}
	delete(raw, "$schema")
	delete(raw, "$id")
	return raw
}
