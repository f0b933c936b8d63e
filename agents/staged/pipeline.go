package staged

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/extract"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
)

const (
	// DefaultAttempts is the number of model calls the plan and synthesis stages may issue.
	DefaultAttempts = 2

	PlanTemperature      = 0.2
	StepTemperature      = 0.5
	SynthesisTemperature = 0.3
)

// errEmptyPlan marks a plan that parsed to an empty array.
var errEmptyPlan = fmt.Errorf("%w: plan has no steps", chefbot.ErrStructuredParse)

// Pipeline plans, executes and synthesizes a menu in three sequential stages.
// A Pipeline is immutable once configured and safe for concurrent Generate calls.
type Pipeline struct {
	model     chefbot.Model
	format    MenuFormat
	attempts  int
	traceName string
	tags      []string
	sink      chefbot.Sink
	logger    zerolog.Logger
}

// NewPipeline creates a Pipeline producing WeeklyMenu with DefaultAttempts per stage.
func NewPipeline(model chefbot.Model) *Pipeline {
	return &Pipeline{
		model:     model,
		format:    WeeklyMenu,
		attempts:  DefaultAttempts,
		traceName: "staged_menu_generation",
		logger:    zerolog.Nop(),
	}
}

// WithMenuFormat selects the synthesis shape.
func (p *Pipeline) WithMenuFormat(f MenuFormat) *Pipeline {
	p.format = f
	return p
}

// WithAttempts sets the attempts of the plan and synthesis stages. Values < 1 are ignored.
func (p *Pipeline) WithAttempts(n int) *Pipeline {
	if n >= 1 {
		p.attempts = n
	}
	return p
}

// WithTrace sets the name and tags of the trace opened by a top-level Generate.
// Without tags, the trace is tagged with chefbot.TagChefBot and the format's part.
func (p *Pipeline) WithTrace(name string, tags ...string) *Pipeline {
	p.traceName = name
	p.tags = tags
	return p
}

// WithSink sets the observability sink.
func (p *Pipeline) WithSink(sink chefbot.Sink) *Pipeline {
	p.sink = sink
	return p
}

// WithLogger sets the logger.
func (p *Pipeline) WithLogger(logger zerolog.Logger) *Pipeline {
	p.logger = logger
	return p
}

// Format returns the synthesis format.
func (p *Pipeline) Format() MenuFormat {
	return p.format
}

// Generate runs the three stages for constraints and returns the synthesized menu.
//
// Plan and synthesis failures are returned as *StageError after every attempt failed; a
// failed step is recorded as "Error: <message>" and execution continues.
func (p *Pipeline) Generate(ctx context.Context, constraints string) (Menu, error) {
	run, err := p.GenerateDetailed(ctx, constraints)
	if err != nil {
		return nil, err
	}
	return run.Menu, nil
}

// GenerateDetailed is Generate returning every intermediate product. On error the partial
// Run is still returned.
func (p *Pipeline) GenerateDetailed(ctx context.Context, constraints string) (*Run, error) {
	ctx = p.startTrace(ctx, constraints)
	run := &Run{Constraints: constraints}

	plan, err := p.Plan(ctx, constraints)
	if err != nil {
		return run, err
	}
	run.Plan = plan

	run.Results, run.Context, err = p.ExecuteSteps(ctx, constraints, plan)
	if err != nil {
		return run, err
	}

	run.Menu, err = p.Synthesize(ctx, run.Results)
	if err != nil {
		return run, err
	}

	titles := make([]string, len(plan))
	for i, s := range plan {
		titles[i] = s.Title
	}
	chefbot.Emit(ctx, p.sink, chefbot.StageTrace{
		Stage: "completed",
		Metadata: map[string]any{
			"num_steps_planned":  len(plan),
			"plan_steps":         titles,
			"num_steps_executed": len(run.Results),
			"status":             "completed",
			"has_menu":           run.Menu != nil,
		},
	})
	return run, nil
}

func (p *Pipeline) startTrace(ctx context.Context, constraints string) context.Context {
	tags := p.tags
	if len(tags) == 0 {
		tags = []string{chefbot.TagChefBot, p.format.Part}
	}
	metadata := map[string]any{
		"type":        p.format.Kind,
		"partie":      p.format.Part,
		"constraints": constraints,
	}

	_, nested := chefbot.TraceFrom(ctx)
	ctx, info := chefbot.WithTrace(ctx, p.traceName, tags...)
	if nested {
		chefbot.Emit(ctx, p.sink, chefbot.StageTrace{Stage: p.traceName, Metadata: metadata})
	} else {
		chefbot.Emit(ctx, p.sink, chefbot.TraceStart{Name: info.Name, Tags: info.Tags, Metadata: metadata})
	}
	return ctx
}

// -----------------------------------------------------------------------------
// Stages
// -----------------------------------------------------------------------------

// Plan asks the model to decompose the task into steps. The reply must be a non-empty JSON
// array of step objects, possibly surrounded by prose.
func (p *Pipeline) Plan(ctx context.Context, constraints string) ([]PlanStep, error) {
	data := planData{Task: p.format.task, TaskOf: p.format.taskOf, Constraints: constraints}
	system, err := executeTemplate("plan_system", data)
	if err != nil {
		return nil, err
	}
	user, err := executeTemplate("plan_user", data)
	if err != nil {
		return nil, err
	}

	chefbot.Emit(ctx, p.sink, chefbot.StageTrace{
		Stage:    StagePlanning,
		Metadata: map[string]any{"constraints": constraints},
	})

	var plan []PlanStep
	err = p.retry(ctx, StagePlanning, system, user, PlanTemperature, func(reply string) error {
		var steps []PlanStep
		if err := extract.Decode(reply, extract.Brackets, &steps); err != nil {
			return err
		}
		if len(steps) == 0 {
			return errEmptyPlan
		}
		plan = steps
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ExecuteSteps runs each step in order. Each step sees the Context accumulated so far, and its
// output is added under one new key. A failing model call becomes the step output
// "Error: <message>". The returned error is non-nil only when ctx is done.
func (p *Pipeline) ExecuteSteps(
	ctx context.Context,
	constraints string,
	plan []PlanStep,
) ([]ExecutionResult, StepContext, error) {
	system, err := executeTemplate("step_system", nil)
	if err != nil {
		return nil, nil, err
	}

	stepCtx := StepContext{"constraints": constraints}
	results := make([]ExecutionResult, 0, len(plan))

	for i, step := range plan {
		if err := ctx.Err(); err != nil {
			return results, stepCtx, err
		}
		title := step.Title
		if title == "" {
			title = DefaultStepTitle
		}
		chefbot.Emit(ctx, p.sink, chefbot.StageTrace{
			Stage:    StageExecution,
			Metadata: map[string]any{"step_number": i + 1, "step_title": title},
		})

		out, err := p.executeStep(ctx, system, title, step.Instruction, stepCtx)
		if err != nil {
			p.logger.Warn().Err(err).Int("step", i+1).Msg("step execution failed")
			chefbot.Logf(ctx, p.sink, chefbot.LogLevelError, "Step execution error (step %d): %v", i+1, err)
			out = "Error: " + err.Error()
		}

		results = append(results, ExecutionResult{Step: step, Output: out})
		stepCtx[stepCtx.keyFor(step, i)] = out
	}
	return results, stepCtx, nil
}

func (p *Pipeline) executeStep(
	ctx context.Context,
	system, title, instruction string,
	stepCtx StepContext,
) (string, error) {
	serialized, err := marshalPrompt(stepCtx)
	if err != nil {
		return "", err
	}
	user, err := executeTemplate("step_user", stepData{
		Title:       title,
		Instruction: instruction,
		Context:     serialized,
	})
	if err != nil {
		return "", err
	}
	return chefbot.GenerateText(ctx, p.model, system, user, llms.WithTemperature(StepTemperature))
}

// Synthesize asks the model for the final menu in the configured format. Any JSON value is
// accepted; prose around a JSON object is stripped.
func (p *Pipeline) Synthesize(ctx context.Context, results []ExecutionResult) (Menu, error) {
	serialized, err := marshalPrompt(results)
	if err != nil {
		return nil, err
	}
	system, err := executeTemplate(p.format.systemTemplate(), nil)
	if err != nil {
		return nil, err
	}
	user, err := executeTemplate(p.format.userTemplate(), synthesisData{Results: serialized})
	if err != nil {
		return nil, err
	}

	chefbot.Emit(ctx, p.sink, chefbot.StageTrace{
		Stage:    StageSynthesis,
		Metadata: map[string]any{"num_results": len(results), "format": p.format.Name},
	})

	var menu Menu
	err = p.retry(ctx, StageSynthesis, system, user, SynthesisTemperature, func(reply string) error {
		v, err := extract.Value(reply, extract.Braces)
		if err != nil {
			return err
		}
		menu = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return menu, nil
}

// retry calls the model up to p.attempts times until accept succeeds on the reply.
// Both model failures and rejected replies consume an attempt.
func (p *Pipeline) retry(
	ctx context.Context,
	stage, system, user string,
	temperature float64,
	accept func(reply string) error,
) error {
	var (
		lastErr error
		lastRaw string
	)
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		reply, err := chefbot.GenerateText(ctx, p.model, system, user, llms.WithTemperature(temperature))
		if err == nil {
			lastRaw = reply
			if err = accept(reply); err == nil {
				return nil
			}
		} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		lastErr = err
		p.logger.Warn().Err(err).Str("stage", stage).Int("attempt", attempt).Msg("stage attempt failed")
		chefbot.Logf(ctx, p.sink, chefbot.LogLevelError, "%s error (attempt %d): %v", stage, attempt, err)
	}
	return &StageError{Stage: stage, Attempts: p.attempts, Raw: lastRaw, Err: lastErr}
}
