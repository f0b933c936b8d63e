package toolchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rickchristie/chefbot/schema"
)

// Tool is a registered tool: descriptor plus a type-erased invoker.
// Build one with [NewTool].
type Tool struct {
	id          ID
	description string
	params      *schema.Schema
	invoke      func(ctx context.Context, args []byte) (any, error)
}

// NewTool creates a tool with typed input I and output O.
//
// params is the JSON Schema of the arguments object (see schema.Object); it is compiled once
// here and panics when invalid, since tools are declared at startup. Arguments are decoded into
// I with unknown fields rejected. Output formatting is done by the Registry.
func NewTool[I, O any](
	id ID,
	description string,
	params map[string]any,
	fn func(ctx context.Context, input I) (O, error),
) *Tool {
	if params == nil {
		params = schema.Object(nil)
	}
	return &Tool{
		id:          id,
		description: description,
		params:      schema.MustCompile(params),
		invoke: func(ctx context.Context, args []byte) (any, error) {
			var input I
			dec := json.NewDecoder(bytes.NewReader(args))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&input); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			return fn(ctx, input)
		},
	}
}

// ID returns the tool's identifier.
func (t *Tool) ID() ID { return t.id }

// Name returns the tool's wire name.
func (t *Tool) Name() string { return string(t.id) }

// Description returns the human-readable description sent to the model.
func (t *Tool) Description() string { return t.description }

// ParameterSchema returns the raw JSON Schema of the tool's arguments.
func (t *Tool) ParameterSchema() map[string]any { return t.params.Raw() }
