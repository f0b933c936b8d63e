package crew

import (
	"context"
	"errors"
	"testing"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func toolNames(tools []llms.Tool) []string {
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Function.Name
	}
	return names
}

func TestNew_Registries(t *testing.T) {
	c, err := New(tt.NewMockModel())
	require.NoError(t, err)

	assert.Equal(t, []string{"ask_nutritionist", "ask_chef", "ask_budget"}, c.Manager().Registry().Names())

	want := map[string][]string{
		"nutritionist": {"check_dietary_info"},
		"chef_agent":   {"check_fridge", "get_recipe"},
		"budget_agent": {"calculate", "menu_db"},
	}
	require.Len(t, c.Specialists(), 3)
	for _, s := range c.Specialists() {
		assert.ElementsMatch(t, want[s.Name], s.Agent.Registry().Names(), s.Name)
	}
}

func TestCrew_DelegatesToSpecialist(t *testing.T) {
	sink := tt.NewRecordingSink()
	model := tt.NewMockModel().
		AddToolCalls("", tt.ToolCall("m1", "ask_chef", `{"task": "Propose un plat avec le frigo"}`)).
		AddToolCalls("", tt.ToolCall("c1", "check_fridge", `{}`)).
		AddResponse("Une omelette aux champignons.").
		AddResponse("Menu final : omelette aux champignons.")

	c, err := New(model)
	require.NoError(t, err)
	c.WithSink(sink)

	res, err := c.RunDetailed(context.Background(), ComplexQuery)
	require.NoError(t, err)

	assert.Equal(t, "Menu final : omelette aux champignons.", res.Answer)
	assert.Equal(t, manual.StateDone, res.State)
	assert.Equal(t, 4, model.CallCount())

	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, "ask_chef", res.ToolCalls[0].Name)
	assert.Equal(t, "Une omelette aux champignons.", res.ToolCalls[0].Content)
	tt.AssertToolCorrelation(t, res.Messages)

	assert.ElementsMatch(t, []string{"ask_nutritionist", "ask_chef", "ask_budget"},
		toolNames(model.CapturedOptions[0].Tools))
	assert.ElementsMatch(t, []string{"check_fridge", "get_recipe"}, toolNames(model.CapturedOptions[1].Tools))

	specialistTask := model.CapturedMessages[1]
	assert.Equal(t, "Propose un plat avec le frigo", tt.MessageText(specialistTask[len(specialistTask)-1]))

	assert.Equal(t, 1, sink.CountEventTypes()["trace_start"])
	assert.Len(t, sink.TraceIDs(), 1)
	assert.Contains(t, sink.Stages(), "chefbot_manager")
	assert.Contains(t, sink.Stages(), "chef_agent")
}

func TestCrew_SpecialistFailureBecomesToolResult(t *testing.T) {
	model := tt.NewMockModel().
		AddToolCalls("", tt.ToolCall("m1", "ask_budget", `{"task": "Calcule le prix"}`)).
		AddError(errors.New("rate limited")).
		AddResponse("Je n'ai pas pu vérifier le budget.")

	c, err := New(model)
	require.NoError(t, err)

	res, err := c.RunDetailed(context.Background(), "Budget 120 euros")
	require.NoError(t, err)

	require.Len(t, res.ToolCalls, 1)
	assert.ErrorIs(t, res.ToolCalls[0].Err, chefbot.ErrToolExecution)
	assert.Contains(t, res.ToolCalls[0].Content, "Erreur lors de l'exécution de ask_budget")
	assert.Contains(t, res.ToolCalls[0].Content, "rate limited")
	assert.Equal(t, "Je n'ai pas pu vérifier le budget.", res.Answer)
}

func TestCrew_SpecialistBudget(t *testing.T) {
	model := tt.NewMockModel().
		AddToolCalls("", tt.ToolCall("m1", "ask_nutritionist", `{"task": "Analyse les noix"}`))
	for i := 0; i < SpecialistMaxIterations; i++ {
		model.AddToolCalls("", tt.ToolCall("", "check_dietary_info", `{"ingredient": "noix"}`))
	}
	model.AddResponse("Attention aux noix.")

	c, err := New(model)
	require.NoError(t, err)

	res, err := c.RunDetailed(context.Background(), "Un invité est allergique aux noix")
	require.NoError(t, err)

	assert.Equal(t, SpecialistMaxIterations+2, model.CallCount())
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, manual.FallbackAnswer, res.ToolCalls[0].Content)
	assert.Equal(t, "Attention aux noix.", res.Answer)
}

func TestCrew_ManagerBudget(t *testing.T) {
	model := tt.NewMockModel()
	for i := 0; i < ManagerMaxIterations; i++ {
		model.AddToolCalls("", tt.ToolCall("", "teleport_food", `{}`))
	}

	c, err := New(model)
	require.NoError(t, err)

	res, err := c.RunDetailed(context.Background(), ComplexQuery)
	require.NoError(t, err)
	assert.Equal(t, manual.StateExhausted, res.State)
	assert.Equal(t, ManagerMaxIterations, model.CallCount())
}

func TestCrew_ModelError(t *testing.T) {
	boom := errors.New("connection refused")
	model := tt.NewMockModel().AddError(boom)

	c, err := New(model)
	require.NoError(t, err)

	_, err = c.Run(context.Background(), ComplexQuery)
	assert.ErrorIs(t, err, boom)
}
