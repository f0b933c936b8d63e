package telemetry

import (
	"context"

	"github.com/rickchristie/chefbot"
)

// MultiSink delivers each event to every sink in order. A panicking sink does not prevent
// delivery to the others.
type MultiSink []chefbot.Sink

// Multi combines sinks, skipping nil ones.
func Multi(sinks ...chefbot.Sink) MultiSink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Emit implements chefbot.Sink.
func (m MultiSink) Emit(ctx context.Context, event chefbot.TraceEvent) {
	for _, s := range m {
		chefbot.Emit(ctx, s, event)
	}
}

var _ chefbot.Sink = MultiSink(nil)
