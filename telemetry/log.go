package telemetry

import (
	"context"

	"github.com/rickchristie/chefbot"
	"github.com/rs/zerolog"
)

// LogSink writes events to a zerolog.Logger. Model, tool and stage events are logged at debug
// level (warn when they carry an error), trace starts and scores at info, and log events at
// their own level.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit implements chefbot.Sink.
func (s *LogSink) Emit(ctx context.Context, event chefbot.TraceEvent) {
	l := s.logger
	if info, ok := chefbot.TraceFrom(ctx); ok {
		l = l.With().Str("trace_id", info.ID).Str("trace", info.Name).Logger()
	}

	switch e := event.(type) {
	case chefbot.TraceStart:
		l.Info().Str("name", e.Name).Strs("tags", e.Tags).Interface("metadata", e.Metadata).Msg("trace started")

	case chefbot.ModelCallTrace:
		ev := l.Debug()
		if e.Error != nil {
			ev = l.Warn().Err(e.Error)
		}
		ev.Str("model", e.Model).
			Int("messages", e.MessageCount).
			Int("tool_calls", e.ToolCalls).
			Int("input_tokens", e.InputTokens).
			Int("output_tokens", e.OutputTokens).
			Dur("duration", e.Duration).
			Msg("model call")

	case chefbot.ToolCallTrace:
		ev := l.Debug()
		if e.Error != nil {
			ev = l.Warn().Err(e.Error)
		}
		ev.Str("tool", e.ToolName).Str("call_id", e.CallID).Dur("duration", e.Duration).Msg("tool call")

	case chefbot.StageTrace:
		l.Debug().Str("stage", e.Stage).Interface("metadata", e.Metadata).Msg("stage")

	case chefbot.LogTrace:
		l.WithLevel(zerologLevel(e.Level)).Msg(e.Message)

	case chefbot.ScoreTrace:
		l.Info().Str("score", e.Name).Float64("value", e.Value).Str("comment", e.Comment).Msg("score")
	}
}

func zerologLevel(level chefbot.LogLevel) zerolog.Level {
	switch level {
	case chefbot.LogLevelDebug:
		return zerolog.DebugLevel
	case chefbot.LogLevelWarning:
		return zerolog.WarnLevel
	case chefbot.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

var _ chefbot.Sink = (*LogSink)(nil)
