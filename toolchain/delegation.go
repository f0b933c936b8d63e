package toolchain

import (
	"context"
	"errors"
	"strings"

	"github.com/rickchristie/chefbot/schema"
)

// Delegate answers a natural-language task, typically by running another agent.
type Delegate func(ctx context.Context, task string) (string, error)

type delegationInput struct {
	Task string `json:"task" jsonschema_description:"La tâche à confier, formulée en langage naturel avec toutes les contraintes utiles"`
}

var errEmptyTask = errors.New("task is empty")

// DelegationTool exposes fn as a tool taking {"task": string}. An error from fn degrades to
// the registry's textual error result like any other tool failure.
func DelegationTool(id ID, description string, fn Delegate) *Tool {
	return NewTool(
		id,
		description,
		schema.Reflect[delegationInput](),
		func(ctx context.Context, in delegationInput) (string, error) {
			task := strings.TrimSpace(in.Task)
			if task == "" {
				return "", errEmptyTask
			}
			return fn(ctx, task)
		},
	)
}
