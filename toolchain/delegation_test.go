package toolchain

import (
	"context"
	"errors"
	"testing"

	"github.com/rickchristie/chefbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelegationTool(t *testing.T) {
	var got []string
	tool := DelegationTool(AskChef, "Chef cuisinier", func(_ context.Context, task string) (string, error) {
		got = append(got, task)
		if task == "panne" {
			return "", errors.New("specialist unavailable")
		}
		return "Une ratatouille.", nil
	})
	reg := MustRegistry(tool)
	ctx := context.Background()

	res := reg.Dispatch(ctx, Call{ID: "1", Name: "ask_chef", Arguments: `{"task": "  un plat d'été "}`})
	require.NoError(t, res.Err)
	assert.Equal(t, "Une ratatouille.", res.Content)

	res = reg.Dispatch(ctx, Call{ID: "2", Name: "ask_chef", Arguments: `{"task": "panne"}`})
	assert.ErrorIs(t, res.Err, chefbot.ErrToolExecution)
	assert.Equal(t, "Erreur lors de l'exécution de ask_chef: specialist unavailable", res.Content)

	res = reg.Dispatch(ctx, Call{ID: "3", Name: "ask_chef", Arguments: `{"task": " "}`})
	assert.ErrorIs(t, res.Err, chefbot.ErrToolExecution)
	assert.Contains(t, res.Content, "task is empty")

	res = reg.Dispatch(ctx, Call{ID: "4", Name: "ask_chef", Arguments: `{}`})
	assert.ErrorIs(t, res.Err, chefbot.ErrToolExecution)

	assert.Equal(t, []string{"un plat d'été", "panne"}, got)

	params := tool.ParameterSchema()
	assert.Equal(t, []any{"task"}, params["required"])
	assert.Equal(t, false, params["additionalProperties"])
}
