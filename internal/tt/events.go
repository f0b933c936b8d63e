package tt

import (
	"context"
	"sync"

	"github.com/rickchristie/chefbot"
)

// -----------------------------------------------------------------------------
// RecordingSink - implements chefbot.Sink and keeps every event
// -----------------------------------------------------------------------------

// RecordingSink records emitted events. It is safe for concurrent use.
type RecordingSink struct {
	mu     sync.Mutex
	events []chefbot.TraceEvent
	traces []chefbot.TraceInfo
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Emit implements chefbot.Sink.
func (s *RecordingSink) Emit(ctx context.Context, event chefbot.TraceEvent) {
	info, _ := chefbot.TraceFrom(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.traces = append(s.traces, info)
}

// Events returns a snapshot of all recorded events.
func (s *RecordingSink) Events() []chefbot.TraceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chefbot.TraceEvent, len(s.events))
	copy(out, s.events)
	return out
}

// TraceIDs returns the distinct trace IDs seen, in first-seen order. Events emitted outside
// a trace are ignored.
func (s *RecordingSink) TraceIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, info := range s.traces {
		if info.ID == "" || seen[info.ID] {
			continue
		}
		seen[info.ID] = true
		ids = append(ids, info.ID)
	}
	return ids
}

// ToolCalls returns the recorded tool call traces in emission order.
func (s *RecordingSink) ToolCalls() []chefbot.ToolCallTrace {
	var out []chefbot.ToolCallTrace
	for _, e := range s.Events() {
		if tc, ok := e.(chefbot.ToolCallTrace); ok {
			out = append(out, tc)
		}
	}
	return out
}

// Stages returns the recorded stage names in emission order.
func (s *RecordingSink) Stages() []string {
	var out []string
	for _, e := range s.Events() {
		if st, ok := e.(chefbot.StageTrace); ok {
			out = append(out, st.Stage)
		}
	}
	return out
}

// Logs returns the recorded log traces with the given level.
func (s *RecordingSink) Logs(level chefbot.LogLevel) []chefbot.LogTrace {
	var out []chefbot.LogTrace
	for _, e := range s.Events() {
		if lt, ok := e.(chefbot.LogTrace); ok && lt.Level == level {
			out = append(out, lt)
		}
	}
	return out
}

// CountEventTypes counts events by EventName.
func (s *RecordingSink) CountEventTypes() map[string]int {
	counts := make(map[string]int)
	for _, e := range s.Events() {
		counts[e.EventName()]++
	}
	return counts
}

// PanickingSink panics on every Emit.
type PanickingSink struct{}

// Emit implements chefbot.Sink.
func (PanickingSink) Emit(context.Context, chefbot.TraceEvent) {
	panic("tt: sink failure")
}

// Compile-time checks.
var (
	_ chefbot.Sink = (*RecordingSink)(nil)
	_ chefbot.Sink = PanickingSink{}
)
