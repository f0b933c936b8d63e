package toolchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickchristie/chefbot"
	"github.com/tmc/langchaingo/llms"
)

// Call is one tool-call request from the model.
type Call struct {
	// ID is the call identifier the result must be correlated with.
	ID string

	// Name is the requested tool name. It may name no registered tool.
	Name string

	// Arguments is the raw JSON argument string. Empty means no arguments.
	Arguments string
}

// CallFromLLM converts a langchaingo tool call.
func CallFromLLM(tc llms.ToolCall) Call {
	call := Call{ID: tc.ID}
	if tc.FunctionCall != nil {
		call.Name = tc.FunctionCall.Name
		call.Arguments = tc.FunctionCall.Arguments
	}
	return call
}

// ToolResult is the outcome of one dispatch.
type ToolResult struct {
	// CallID echoes Call.ID.
	CallID string

	// Name echoes Call.Name.
	Name string

	// Arguments are the decoded arguments, nil when they could not be decoded.
	Arguments map[string]any

	// Content is the text sent back to the model. It is always set.
	Content string

	// Output is the raw tool output, nil on failure.
	Output any

	// Err is nil on success, otherwise wraps chefbot.ErrUnknownTool or chefbot.ErrToolExecution.
	Err error

	// Duration is how long the tool body ran.
	Duration time.Duration
}

// Registry is an immutable set of tools keyed by name. It is safe for concurrent use.
type Registry struct {
	tools []*Tool
	byID  map[ID]*Tool
}

// NewRegistry builds a registry from tools, keeping their order for LLMTools.
// Returns an error on duplicate IDs.
func NewRegistry(tools ...*Tool) (*Registry, error) {
	r := &Registry{
		tools: make([]*Tool, 0, len(tools)),
		byID:  make(map[ID]*Tool, len(tools)),
	}
	for _, t := range tools {
		if t == nil {
			return nil, errors.New("toolchain: nil tool")
		}
		if _, dup := r.byID[t.id]; dup {
			return nil, fmt.Errorf("toolchain: duplicate tool %q", t.id)
		}
		r.tools = append(r.tools, t)
		r.byID[t.id] = t
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(tools ...*Tool) *Registry {
	r, err := NewRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

// Subset returns a registry restricted to ids, in the order given.
// Returns an error wrapping chefbot.ErrUnknownTool when an id is not registered.
func (r *Registry) Subset(ids ...ID) (*Registry, error) {
	tools := make([]*Tool, 0, len(ids))
	for _, id := range ids {
		t, ok := r.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", chefbot.ErrUnknownTool, id)
		}
		tools = append(tools, t)
	}
	return NewRegistry(tools...)
}

// Merge returns a registry with the tools of r followed by those of other.
func (r *Registry) Merge(other *Registry) (*Registry, error) {
	tools := append(append([]*Tool{}, r.tools...), other.tools...)
	return NewRegistry(tools...)
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.byID[ID(name)]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	return append([]*Tool{}, r.tools...)
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name()
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// LLMTools returns the tool descriptors in the shape langchaingo sends to the model.
func (r *Registry) LLMTools() []llms.Tool {
	out := make([]llms.Tool, len(r.tools))
	for i, t := range r.tools {
		out[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.description,
				Parameters:  t.ParameterSchema(),
			},
		}
	}
	return out
}

// Dispatch runs one tool call. It never fails: see the package documentation for how errors
// are rendered into ToolResult.Content.
func (r *Registry) Dispatch(ctx context.Context, call Call) (res ToolResult) {
	res = ToolResult{CallID: call.ID, Name: call.Name}

	tool, ok := r.Lookup(call.Name)
	if !ok {
		res.Err = fmt.Errorf("%w: %s", chefbot.ErrUnknownTool, call.Name)
		res.Content = fmt.Sprintf("Erreur: outil '%s' inconnu", call.Name)
		return res
	}

	fail := func(err error) ToolResult {
		res.Output = nil
		res.Err = fmt.Errorf("%w: %s: %w", chefbot.ErrToolExecution, call.Name, err)
		res.Content = fmt.Sprintf("Erreur lors de l'exécution de %s: %s", call.Name, err)
		return res
	}

	raw := strings.TrimSpace(call.Arguments)
	if raw == "" || raw == "null" {
		raw = "{}"
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return fail(fmt.Errorf("invalid arguments: %w", err))
	}
	if args == nil {
		args = map[string]any{}
	}
	res.Arguments = args

	if err := tool.params.Validate(args); err != nil {
		return fail(err)
	}

	start := time.Now()
	out, err := invokeRecover(ctx, tool, []byte(raw))
	res.Duration = time.Since(start)
	if err != nil {
		return fail(err)
	}

	content, err := formatOutput(out)
	if err != nil {
		return fail(err)
	}
	res.Output = out
	res.Content = content
	return res
}

func invokeRecover(ctx context.Context, tool *Tool, args []byte) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return tool.invoke(ctx, args)
}

func formatOutput(out any) (string, error) {
	switch v := out.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return "", fmt.Errorf("failed to encode output: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
