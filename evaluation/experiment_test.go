package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/agents/staged"
	"github.com/rickchristie/chefbot/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = chefbot.NewFixedTimeProvider(time.Date(2025, time.April, 2, 10, 30, 0, 0, time.UTC))

type failingEvaluator struct{}

func (failingEvaluator) Name() string { return "broken" }

func (failingEvaluator) Evaluate(context.Context, Item, string) ([]Evaluation, error) {
	return nil, errors.New("evaluator down")
}

func testDataset() *Dataset {
	return &Dataset{
		Name: "test-ds",
		Tags: []string{"ChefBot", "Partie 3"},
		Items: []Item{
			{ID: "a", Input: Input{Constraints: "végétarien"}, ExpectedOutput: map[string]any{
				"must_avoid": []any{"viande"}, "must_include": []any{"tofu"},
			}},
			{ID: "b", Input: Input{Constraints: "panne"}},
			{ID: "c", Input: Input{Constraints: "sans noix"}, ExpectedOutput: map[string]any{
				"must_avoid": []any{"noix"},
			}},
		},
	}
}

func TestExperiment_Run(t *testing.T) {
	sink := tt.NewRecordingSink()
	task := func(_ context.Context, item Item) (string, error) {
		switch item.ID {
		case "a":
			return "tofu grillé", nil
		case "b":
			return "", errors.New("model unreachable")
		default:
			return "salade aux noix", nil
		}
	}

	exp := NewExperiment("chefbot-menu-eval", task, RuleEvaluator{}, failingEvaluator{}).
		WithDescription("Evaluation of ChefBot weekly menu planner").
		WithMetadata(map[string]any{"model": "test-model"}).
		WithTimeProvider(fixedClock).
		WithSink(sink)

	res, err := exp.Run(context.Background(), testDataset())
	require.NoError(t, err)

	assert.Equal(t, "chefbot-menu-eval-20250402-103000", res.Name)
	assert.Equal(t, "test-ds", res.Dataset)
	assert.Equal(t, "test-model", res.Metadata["model"])
	require.Len(t, res.Items, 3)

	a := res.Items[0]
	assert.Equal(t, "tofu grillé", a.Output)
	assert.Empty(t, a.Error)
	v, ok := a.Value("overall_rule")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, map[string]string{"broken": "evaluator down"}, a.EvaluatorErrors)

	b := res.Items[1]
	assert.Equal(t, "model unreachable", b.Error)
	assert.Empty(t, b.Evaluations)

	c := res.Items[2]
	v, ok = c.Value("avoid_score")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	counts := sink.CountEventTypes()
	assert.Equal(t, 3, counts["trace_start"])
	assert.Equal(t, 6, counts["score"])
	assert.Len(t, sink.TraceIDs(), 3)
}

func TestExperiment_ItemsAreSeparateTraces(t *testing.T) {
	sink := tt.NewRecordingSink()
	task := func(context.Context, Item) (string, error) { return "ok", nil }

	ctx, _ := chefbot.WithTrace(context.Background(), "outer")
	_, err := NewExperiment("x", task).WithSink(sink).Run(ctx, testDataset())
	require.NoError(t, err)
	assert.Len(t, sink.TraceIDs(), 3)
}

func TestExperiment_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	task := func(context.Context, Item) (string, error) {
		calls++
		cancel()
		return "ok", nil
	}

	res, err := NewExperiment("x", task).Run(ctx, testDataset())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, calls)
}

func TestExperimentName(t *testing.T) {
	assert.Equal(t, "chefbot-multiagent-eval-llama-4-scout-20251231-235959",
		ExperimentName("chefbot-multiagent-eval-llama-4-scout", time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestPipelineTask(t *testing.T) {
	item := Item{Input: Input{Constraints: "sans gluten"}}

	t.Run("menu as json", func(t *testing.T) {
		model := tt.NewMockModel().
			AddResponse(`[{"step": 1, "title": "A", "instruction": "a"}]`).
			AddResponse("étape faite").
			AddResponse(`{"week_menu": {"lundi": {"diner": "riz & légumes"}}}`)

		out, err := PipelineTask(staged.NewPipeline(model))(context.Background(), item)
		require.NoError(t, err)
		assert.Equal(t, `{"week_menu":{"lundi":{"diner":"riz & légumes"}}}`, out)
		assert.Contains(t, tt.MessageText(model.CapturedMessages[0][1]), "sans gluten")
	})

	t.Run("synthesis fallback", func(t *testing.T) {
		model := tt.NewMockModel().
			AddResponse(`[{"step": 1, "title": "A", "instruction": "a"}]`).
			AddResponse("étape faite").
			AddResponse("lundi: soupe").
			AddResponse("lundi: soupe")

		out, err := PipelineTask(staged.NewPipeline(model))(context.Background(), item)
		require.NoError(t, err)
		assert.Equal(t, `{"menu_text":"lundi: soupe"}`, out)
	})

	t.Run("plan failure", func(t *testing.T) {
		model := tt.NewMockModel().AddResponse("non").AddResponse("non")

		_, err := PipelineTask(staged.NewPipeline(model))(context.Background(), item)
		assert.ErrorIs(t, err, chefbot.ErrStructuredParse)
	})
}
