package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/agents/staged"
	"github.com/rs/zerolog"
)

// Evaluation is one named score of one output.
type Evaluation struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}

// Evaluator scores the output produced for an item.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, item Item, output string) ([]Evaluation, error)
}

// Task produces the output of the system under test for an item.
type Task func(ctx context.Context, item Item) (string, error)

// PipelineTask runs p on the item constraints and returns the menu as JSON. A synthesis
// failure that still produced text is scored as {"menu_text": <text>}.
func PipelineTask(p *staged.Pipeline) Task {
	return func(ctx context.Context, item Item) (string, error) {
		menu, err := p.Generate(ctx, item.Input.Constraints)
		if err != nil {
			fallback, ok := staged.FallbackMenu(err)
			if !ok {
				return "", err
			}
			menu = fallback
		}
		return marshalCompact(menu)
	}
}

// ItemResult is the outcome of one item.
type ItemResult struct {
	Item        Item          `json:"item"`
	Output      string        `json:"output"`
	Error       string        `json:"error,omitempty"`
	Evaluations []Evaluation  `json:"evaluations"`
	Duration    time.Duration `json:"duration"`

	// EvaluatorErrors maps evaluator names to their failure.
	EvaluatorErrors map[string]string `json:"evaluator_errors,omitempty"`
}

// Value returns the value of the evaluation called name.
func (r ItemResult) Value(name string) (float64, bool) {
	for _, e := range r.Evaluations {
		if e.Name == name {
			return e.Value, true
		}
	}
	return 0, false
}

// ExperimentResult is the outcome of running an Experiment over a dataset.
type ExperimentResult struct {
	Name        string         `json:"name"`
	Dataset     string         `json:"dataset"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Items       []ItemResult   `json:"items"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// Experiment runs a Task over every item of a dataset and scores each output.
type Experiment struct {
	prefix       string
	description  string
	metadata     map[string]any
	task         Task
	evaluators   []Evaluator
	timeProvider chefbot.TimeProvider
	sink         chefbot.Sink
	logger       zerolog.Logger
}

// NewExperiment creates an Experiment named "<prefix>-<YYYYMMDD-HHMMSS>" at run time.
func NewExperiment(prefix string, task Task, evaluators ...Evaluator) *Experiment {
	return &Experiment{
		prefix:       prefix,
		task:         task,
		evaluators:   evaluators,
		timeProvider: chefbot.NewDefaultTimeProvider(),
		logger:       zerolog.Nop(),
	}
}

// WithDescription sets the experiment description.
func (e *Experiment) WithDescription(description string) *Experiment {
	e.description = description
	return e
}

// WithMetadata sets metadata recorded with the experiment and each item trace.
func (e *Experiment) WithMetadata(metadata map[string]any) *Experiment {
	e.metadata = metadata
	return e
}

// WithTimeProvider sets the clock used for the experiment name and timestamps.
func (e *Experiment) WithTimeProvider(tp chefbot.TimeProvider) *Experiment {
	e.timeProvider = tp
	return e
}

// WithSink sets the observability sink.
func (e *Experiment) WithSink(sink chefbot.Sink) *Experiment {
	e.sink = sink
	return e
}

// WithLogger sets the logger.
func (e *Experiment) WithLogger(logger zerolog.Logger) *Experiment {
	e.logger = logger
	return e
}

// ExperimentName formats "<prefix>-<YYYYMMDD-HHMMSS>".
func ExperimentName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, t.Format("20060102-150405"))
}

// Run processes the items sequentially. Each item gets its own trace. A task failure is
// recorded on the item and its evaluators are skipped; an evaluator failure is recorded and
// the other evaluators still run. The error is non-nil only when ctx is done.
func (e *Experiment) Run(ctx context.Context, ds *Dataset) (*ExperimentResult, error) {
	started := e.timeProvider.Now()
	res := &ExperimentResult{
		Name:        ExperimentName(e.prefix, started),
		Dataset:     ds.Name,
		Description: e.description,
		Metadata:    e.metadata,
		StartedAt:   started,
		Items:       make([]ItemResult, 0, len(ds.Items)),
	}
	e.logger.Info().Str("experiment", res.Name).Int("items", len(ds.Items)).Msg("experiment started")

	for _, item := range ds.Items {
		if err := ctx.Err(); err != nil {
			res.FinishedAt = e.timeProvider.Now()
			return res, err
		}
		res.Items = append(res.Items, e.runItem(ctx, res.Name, ds, item))
	}

	res.FinishedAt = e.timeProvider.Now()
	e.logger.Info().Str("experiment", res.Name).Msg("experiment finished")
	return res, nil
}

func (e *Experiment) runItem(ctx context.Context, name string, ds *Dataset, item Item) ItemResult {
	metadata := map[string]any{
		"experiment": name,
		"dataset":    ds.Name,
		"item_id":    item.ID,
		"input":      item.Input.Constraints,
	}
	for k, v := range e.metadata {
		metadata[k] = v
	}
	ctx, info := chefbot.WithNewTrace(ctx, name, ds.Tags...)
	chefbot.Emit(ctx, e.sink, chefbot.TraceStart{Name: info.Name, Tags: info.Tags, Metadata: metadata})

	out := ItemResult{Item: item}
	start := time.Now()
	output, err := e.task(ctx, item)
	out.Duration = time.Since(start)
	if err != nil {
		out.Error = err.Error()
		e.logger.Warn().Err(err).Str("item", item.ID).Msg("task failed")
		chefbot.Logf(ctx, e.sink, chefbot.LogLevelError, "task failed for item %s: %v", item.ID, err)
		return out
	}
	out.Output = output

	for _, ev := range e.evaluators {
		evals, err := ev.Evaluate(ctx, item, output)
		if err != nil {
			if out.EvaluatorErrors == nil {
				out.EvaluatorErrors = make(map[string]string)
			}
			out.EvaluatorErrors[ev.Name()] = err.Error()
			e.logger.Warn().Err(err).Str("item", item.ID).Str("evaluator", ev.Name()).Msg("evaluator failed")
			continue
		}
		for _, s := range evals {
			chefbot.Emit(ctx, e.sink, chefbot.ScoreTrace{Name: s.Name, Value: s.Value, Comment: s.Comment})
		}
		out.Evaluations = append(out.Evaluations, evals...)
	}
	return out
}
