package manual

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/toolchain"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
)

const (
	// DefaultMaxIterations bounds the number of model calls of one run.
	DefaultMaxIterations = 5

	// DefaultTemperature is the sampling temperature of every loop call.
	DefaultTemperature = 0.3
)

// State is the loop state.
type State string

const (
	StateAwaitingModel    State = "AWAITING_MODEL"
	StateDispatchingTools State = "DISPATCHING_TOOLS"
	StateDone             State = "DONE"
	StateExhausted        State = "EXHAUSTED"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateExhausted
}

// Result describes a finished run.
type Result struct {
	// Answer is the final text: the model's answer on DONE, FallbackAnswer on EXHAUSTED.
	Answer string

	// State is StateDone or StateExhausted for a run that returned without error.
	State State

	// Iterations is the number of model calls issued.
	Iterations int

	// ToolCalls lists every dispatched call in order.
	ToolCalls []toolchain.ToolResult

	// Messages is the full message sequence at return.
	Messages []llms.MessageContent
}

// Agent runs the manual tool-calling loop. An Agent is immutable once configured and safe for
// concurrent Run calls; each run owns its message sequence.
type Agent struct {
	model         chefbot.Model
	registry      *toolchain.Registry
	systemPrompt  string
	maxIterations int
	temperature   float64
	traceName     string
	tags          []string
	sink          chefbot.Sink
	logger        zerolog.Logger
}

// NewAgent creates an Agent over registry. A nil registry means toolchain.Fridge().
// Defaults:
//   - SystemPrompt: DefaultSystemPrompt
//   - MaxIterations: DefaultMaxIterations
//   - Temperature: DefaultTemperature
func NewAgent(model chefbot.Model, registry *toolchain.Registry) *Agent {
	if registry == nil {
		registry = toolchain.Fridge()
	}
	return &Agent{
		model:         model,
		registry:      registry,
		systemPrompt:  DefaultSystemPrompt,
		maxIterations: DefaultMaxIterations,
		temperature:   DefaultTemperature,
		traceName:     "manual_tool_calling",
		tags:          []string{chefbot.TagChefBot, "Partie 4"},
		logger:        zerolog.Nop(),
	}
}

// WithSystemPrompt replaces the system persona.
func (a *Agent) WithSystemPrompt(prompt string) *Agent {
	a.systemPrompt = prompt
	return a
}

// WithMaxIterations sets the default iteration budget. Values <= 0 restore DefaultMaxIterations.
func (a *Agent) WithMaxIterations(n int) *Agent {
	if n <= 0 {
		n = DefaultMaxIterations
	}
	a.maxIterations = n
	return a
}

// WithTemperature sets the sampling temperature.
func (a *Agent) WithTemperature(t float64) *Agent {
	a.temperature = t
	return a
}

// WithTrace sets the name and tags of the trace opened by a top-level run.
func (a *Agent) WithTrace(name string, tags ...string) *Agent {
	a.traceName = name
	a.tags = tags
	return a
}

// WithSink sets the observability sink.
func (a *Agent) WithSink(sink chefbot.Sink) *Agent {
	a.sink = sink
	return a
}

// WithLogger sets the logger.
func (a *Agent) WithLogger(logger zerolog.Logger) *Agent {
	a.logger = logger
	return a
}

// Registry returns the registry the agent dispatches to.
func (a *Agent) Registry() *toolchain.Registry {
	return a.registry
}

// RunOption adjusts a single run.
type RunOption func(*runConfig)

type runConfig struct {
	maxIterations int
}

// MaxIterations overrides the iteration budget of one run. Values <= 0 keep the agent default.
func MaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// Run answers question and returns the final text.
// The error is non-nil only when a model call fails or ctx is done.
func (a *Agent) Run(ctx context.Context, question string, opts ...RunOption) (string, error) {
	res, err := a.RunDetailed(ctx, question, opts...)
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

// RunDetailed is Run returning the full Result. On error the partial Result is still returned.
func (a *Agent) RunDetailed(
	ctx context.Context,
	question string,
	opts ...RunOption,
) (*Result, error) {
	cfg := runConfig{maxIterations: a.maxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx = a.startTrace(ctx, map[string]any{
		"question":       question,
		"max_iterations": cfg.maxIterations,
		"tools":          a.registry.Names(),
	})

	messages := []llms.MessageContent{
		chefbot.TextMessage(llms.ChatMessageTypeSystem, a.systemPrompt),
		chefbot.TextMessage(llms.ChatMessageTypeHuman, question),
	}
	return a.loop(ctx, messages, cfg.maxIterations)
}

func (a *Agent) startTrace(ctx context.Context, metadata map[string]any) context.Context {
	_, nested := chefbot.TraceFrom(ctx)
	ctx, info := chefbot.WithTrace(ctx, a.traceName, a.tags...)
	if nested {
		chefbot.Emit(ctx, a.sink, chefbot.StageTrace{Stage: a.traceName, Metadata: metadata})
	} else {
		chefbot.Emit(ctx, a.sink, chefbot.TraceStart{Name: info.Name, Tags: info.Tags, Metadata: metadata})
	}
	return ctx
}

// loop drives the state machine over messages, which it owns from here on.
func (a *Agent) loop(
	ctx context.Context,
	messages []llms.MessageContent,
	maxIterations int,
) (*Result, error) {
	res := &Result{State: StateAwaitingModel}
	callOpts := []llms.CallOption{
		llms.WithTools(a.registry.LLMTools()),
		llms.WithToolChoice("auto"),
		llms.WithTemperature(a.temperature),
	}

	for res.Iterations < maxIterations {
		if err := ctx.Err(); err != nil {
			res.Messages = messages
			return res, err
		}
		res.Iterations++
		iteration := res.Iterations

		a.logger.Debug().Int("iteration", iteration).Int("messages", len(messages)).Msg("awaiting model")
		chefbot.Emit(ctx, a.sink, chefbot.StageTrace{
			Stage:    "iteration",
			Metadata: map[string]any{"iteration": iteration, "max_iterations": maxIterations},
		})

		resp, err := a.model.GenerateContent(ctx, messages, callOpts...)
		if err == nil {
			var choice *chefbot.ContentChoice
			choice, err = resp.First()
			if err == nil {
				if len(choice.ToolCalls) == 0 {
					messages = append(messages, chefbot.TextMessage(llms.ChatMessageTypeAI, choice.Content))
					res.Answer = choice.Content
					res.State = StateDone
					res.Messages = messages
					return res, nil
				}
				res.State = StateDispatchingTools
				messages = a.dispatch(ctx, messages, choice, res)
				res.State = StateAwaitingModel
				continue
			}
		}

		chefbot.Logf(ctx, a.sink, chefbot.LogLevelError, "model call %d failed: %v", iteration, err)
		res.Messages = messages
		return res, fmt.Errorf("manual: model call %d: %w", iteration, err)
	}

	a.logger.Warn().Int("max_iterations", maxIterations).Msg("iteration budget exhausted")
	chefbot.Logf(ctx, a.sink, chefbot.LogLevelWarning, "%v after %d iterations",
		chefbot.ErrIterationBudgetExhausted, maxIterations)

	messages = append(messages, chefbot.TextMessage(llms.ChatMessageTypeAI, FallbackAnswer))
	res.Answer = FallbackAnswer
	res.State = StateExhausted
	res.Messages = messages
	return res, nil
}

// dispatch echoes the tool calls and appends one tool message per call.
func (a *Agent) dispatch(
	ctx context.Context,
	messages []llms.MessageContent,
	choice *chefbot.ContentChoice,
	res *Result,
) []llms.MessageContent {
	calls := normalizeCalls(choice.ToolCalls)
	messages = append(messages, assistantToolCalls(choice.Content, calls))

	for _, tc := range calls {
		call := toolchain.CallFromLLM(tc)
		out := a.registry.Dispatch(ctx, call)
		res.ToolCalls = append(res.ToolCalls, out)

		event := a.logger.Debug()
		if out.Err != nil {
			event = a.logger.Warn().Err(out.Err)
		}
		event.Str("tool", call.Name).Str("call_id", call.ID).Dur("duration", out.Duration).Msg("tool call")

		chefbot.Emit(ctx, a.sink, chefbot.ToolCallTrace{
			ToolName:  call.Name,
			CallID:    call.ID,
			Arguments: out.Arguments,
			Result:    out.Content,
			Duration:  out.Duration,
			Error:     out.Err,
		})
		if errors.Is(out.Err, chefbot.ErrUnknownTool) {
			chefbot.Logf(ctx, a.sink, chefbot.LogLevelWarning, "unknown tool requested: %s", call.Name)
		}

		messages = append(messages, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    out.Content,
			}},
		})
	}
	return messages
}

// normalizeCalls returns a copy of calls where every call has a function type and a unique
// non-empty identifier, so each tool message can be correlated.
func normalizeCalls(calls []llms.ToolCall) []llms.ToolCall {
	out := make([]llms.ToolCall, len(calls))
	seen := make(map[string]bool, len(calls))
	for i, tc := range calls {
		if tc.Type == "" {
			tc.Type = "function"
		}
		if tc.FunctionCall == nil {
			tc.FunctionCall = &llms.FunctionCall{}
		}
		if tc.ID == "" || seen[tc.ID] {
			tc.ID = "call_" + chefbot.NewTraceID()
		}
		seen[tc.ID] = true
		out[i] = tc
	}
	return out
}

func assistantToolCalls(content string, calls []llms.ToolCall) llms.MessageContent {
	parts := make([]llms.ContentPart, 0, len(calls)+1)
	if content != "" {
		parts = append(parts, llms.TextContent{Text: content})
	}
	for _, tc := range calls {
		parts = append(parts, tc)
	}
	return llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts}
}
