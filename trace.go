package chefbot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Trace Events
// -----------------------------------------------------------------------------

// TraceEvent is an observation emitted by chefbot components to a [Sink].
// Concrete types are [TraceStart], [ModelCallTrace], [ToolCallTrace], [StageTrace],
// [LogTrace] and [ScoreTrace].
type TraceEvent interface {
	// EventName is a short identifier, e.g. "model_call" or "tool_call".
	EventName() string
}

// TraceStart opens a trace. Components emit it once per top-level operation with the
// metadata the operation was started with.
type TraceStart struct {
	Name     string
	Tags     []string
	Metadata map[string]any
	Time     time.Time
}

// ModelCallTrace records one call to the Chat Completion Service.
type ModelCallTrace struct {
	Model        string
	MessageCount int
	Output       string
	ToolCalls    int
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	Error        error
	Time         time.Time
}

// ToolCallTrace records one tool dispatch.
type ToolCallTrace struct {
	ToolName  string
	CallID    string
	Arguments map[string]any
	Result    string
	Duration  time.Duration
	Error     error
	Time      time.Time
}

// StageTrace records progress of a multi-stage operation (planning, execution, synthesis,
// iteration boundaries, ...). Metadata is free-form.
type StageTrace struct {
	Stage    string
	Metadata map[string]any
	Time     time.Time
}

// LogLevel is the severity of a [LogTrace].
type LogLevel string

const (
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelDefault LogLevel = "DEFAULT"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

// LogTrace is a free-text message attached to the current trace.
type LogTrace struct {
	Level   LogLevel
	Message string
	Time    time.Time
}

// ScoreTrace attaches an evaluation score to the current trace.
type ScoreTrace struct {
	Name    string
	Value   float64
	Comment string
	Time    time.Time
}

func (TraceStart) EventName() string     { return "trace_start" }
func (ModelCallTrace) EventName() string { return "model_call" }
func (ToolCallTrace) EventName() string  { return "tool_call" }
func (StageTrace) EventName() string     { return "stage" }
func (LogTrace) EventName() string       { return "log" }
func (ScoreTrace) EventName() string     { return "score" }

// -----------------------------------------------------------------------------
// Sink
// -----------------------------------------------------------------------------

// Sink is a fire-and-forget observability side channel.
//
// Implementations must not block for long and must not report failures to the caller:
// a sink that cannot deliver an event logs the problem locally (if at all) and drops it.
// The main path never observes a sink failure.
type Sink interface {
	Emit(ctx context.Context, event TraceEvent)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(ctx context.Context, event TraceEvent)

// Emit calls f(ctx, event).
func (f SinkFunc) Emit(ctx context.Context, event TraceEvent) {
	f(ctx, event)
}

// NopSink discards every event.
type NopSink struct{}

// Emit implements Sink.
func (NopSink) Emit(context.Context, TraceEvent) {}

// Emit delivers event to sink, stamping a zero Time with time.Now.
// A nil sink is a no-op and a panicking sink is recovered; the caller never sees either.
func Emit(ctx context.Context, sink Sink, event TraceEvent) {
	if sink == nil || event == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	sink.Emit(ctx, stampTime(event))
}

// Logf emits a [LogTrace] with a formatted message.
func Logf(ctx context.Context, sink Sink, level LogLevel, format string, args ...any) {
	Emit(ctx, sink, LogTrace{Level: level, Message: fmt.Sprintf(format, args...)})
}

func stampTime(event TraceEvent) TraceEvent {
	now := time.Now()
	switch e := event.(type) {
	case TraceStart:
		if e.Time.IsZero() {
			e.Time = now
		}
		return e
	case ModelCallTrace:
		if e.Time.IsZero() {
			e.Time = now
		}
		return e
	case ToolCallTrace:
		if e.Time.IsZero() {
			e.Time = now
		}
		return e
	case StageTrace:
		if e.Time.IsZero() {
			e.Time = now
		}
		return e
	case LogTrace:
		if e.Time.IsZero() {
			e.Time = now
		}
		return e
	case ScoreTrace:
		if e.Time.IsZero() {
			e.Time = now
		}
		return e
	}
	return event
}

// -----------------------------------------------------------------------------
// Trace identity
// -----------------------------------------------------------------------------

// TraceInfo identifies the trace an event belongs to. It travels in context.Context so
// nested components (a specialist agent inside a crew, a pipeline inside an experiment)
// report into the same trace.
type TraceInfo struct {
	ID   string
	Name string
	Tags []string
}

type traceKey struct{}

// WithTrace returns a context carrying a trace. When ctx already carries one, that trace is
// kept and name/tags are ignored, so only the outermost operation names the trace.
func WithTrace(ctx context.Context, name string, tags ...string) (context.Context, TraceInfo) {
	if info, ok := TraceFrom(ctx); ok {
		return ctx, info
	}
	info := TraceInfo{ID: NewTraceID(), Name: name, Tags: tags}
	return context.WithValue(ctx, traceKey{}, info), info
}

// WithNewTrace is WithTrace that always starts a new trace, even inside another one.
func WithNewTrace(ctx context.Context, name string, tags ...string) (context.Context, TraceInfo) {
	info := TraceInfo{ID: NewTraceID(), Name: name, Tags: tags}
	return context.WithValue(ctx, traceKey{}, info), info
}

// TraceFrom returns the trace carried by ctx, if any.
func TraceFrom(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	info, ok := ctx.Value(traceKey{}).(TraceInfo)
	return info, ok
}

// NewTraceID returns a random identifier for traces and observations.
func NewTraceID() string {
	return uuid.NewString()
}
