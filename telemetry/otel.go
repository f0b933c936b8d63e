package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rickchristie/chefbot"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of spans created by [OTelSink].
const TracerName = "github.com/rickchristie/chefbot"

// OTelSink records every event as an OpenTelemetry span.
//
// When ctx carries an active span, event spans are its children. Otherwise the chefbot trace
// ID becomes the OpenTelemetry trace ID, so all events of one chefbot trace share a trace.
type OTelSink struct {
	tracer trace.Tracer
}

// NewOTelSink creates a sink backed by tp.
func NewOTelSink(tp trace.TracerProvider) *OTelSink {
	return &OTelSink{tracer: tp.Tracer(TracerName)}
}

// Emit implements chefbot.Sink.
func (s *OTelSink) Emit(ctx context.Context, event chefbot.TraceEvent) {
	ctx = parentContext(ctx)

	switch e := event.(type) {
	case chefbot.TraceStart:
		attrs := []attribute.KeyValue{attribute.StringSlice("chefbot.tags", e.Tags)}
		attrs = append(attrs, metadataAttributes(e.Metadata)...)
		s.record(ctx, e.Name, e.Time, e.Time, nil, attrs...)

	case chefbot.ModelCallTrace:
		s.record(ctx, "model_call", e.Time.Add(-e.Duration), e.Time, e.Error,
			attribute.String("gen_ai.request.model", e.Model),
			attribute.Int("gen_ai.usage.input_tokens", e.InputTokens),
			attribute.Int("gen_ai.usage.output_tokens", e.OutputTokens),
			attribute.Int("chefbot.message_count", e.MessageCount),
			attribute.Int("chefbot.tool_calls", e.ToolCalls),
		)

	case chefbot.ToolCallTrace:
		s.record(ctx, "execute_tool "+e.ToolName, e.Time.Add(-e.Duration), e.Time, e.Error,
			attribute.String("gen_ai.tool.name", e.ToolName),
			attribute.String("gen_ai.tool.call.id", e.CallID),
		)

	case chefbot.StageTrace:
		attrs := []attribute.KeyValue{attribute.String("chefbot.stage", e.Stage)}
		attrs = append(attrs, metadataAttributes(e.Metadata)...)
		s.record(ctx, "stage "+e.Stage, e.Time, e.Time, nil, attrs...)

	case chefbot.LogTrace:
		s.record(ctx, "log", e.Time, e.Time, nil,
			attribute.String("chefbot.log.level", string(e.Level)),
			attribute.String("chefbot.log.message", e.Message),
		)

	case chefbot.ScoreTrace:
		s.record(ctx, "score "+e.Name, e.Time, e.Time, nil,
			attribute.String("chefbot.score.name", e.Name),
			attribute.Float64("chefbot.score.value", e.Value),
			attribute.String("chefbot.score.comment", e.Comment),
		)
	}
}

func (s *OTelSink) record(ctx context.Context, name string, start, end time.Time, err error, attrs ...attribute.KeyValue) {
	_, span := s.tracer.Start(ctx, name,
		trace.WithTimestamp(start),
		trace.WithAttributes(attrs...),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(end))
}

// parentContext keeps an active span as parent, else derives a remote parent from the
// chefbot trace ID.
func parentContext(ctx context.Context) context.Context {
	if trace.SpanContextFromContext(ctx).IsValid() {
		return ctx
	}
	info, ok := chefbot.TraceFrom(ctx)
	if !ok {
		return ctx
	}
	sc, ok := remoteSpanContext(info.ID)
	if !ok {
		return ctx
	}
	return trace.ContextWithRemoteSpanContext(ctx, sc)
}

// remoteSpanContext maps a UUID trace ID onto an OpenTelemetry span context. The trace ID is
// the UUID bytes and the parent span ID is its low half.
func remoteSpanContext(traceID string) (trace.SpanContext, bool) {
	u, err := uuid.Parse(traceID)
	if err != nil {
		return trace.SpanContext{}, false
	}
	var spanID trace.SpanID
	copy(spanID[:], u[8:])

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID(u),
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return sc, sc.IsValid()
}

func metadataAttributes(metadata map[string]any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(metadata))
	for k, v := range metadata {
		key := "chefbot.meta." + k
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(key, val))
		case bool:
			attrs = append(attrs, attribute.Bool(key, val))
		case int:
			attrs = append(attrs, attribute.Int(key, val))
		case int64:
			attrs = append(attrs, attribute.Int64(key, val))
		case float64:
			attrs = append(attrs, attribute.Float64(key, val))
		case []string:
			attrs = append(attrs, attribute.StringSlice(key, val))
		default:
			attrs = append(attrs, attribute.String(key, fmt.Sprint(val)))
		}
	}
	return attrs
}

var _ chefbot.Sink = (*OTelSink)(nil)
