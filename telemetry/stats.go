package telemetry

import (
	"context"
	"sync"

	"github.com/rickchristie/chefbot"
)

// Standard counter keys. Keys ending in ":" take a model, tool or stage name suffix.
const (
	KeyTraces          = "chefbot:traces"
	KeyModelCalls      = "chefbot:model_calls"
	KeyModelErrors     = "chefbot:model_errors"
	KeyInputTokens     = "chefbot:input_tokens"
	KeyInputTokensFor  = "chefbot:input_tokens:"  // + model name
	KeyOutputTokens    = "chefbot:output_tokens"
	KeyOutputTokensFor = "chefbot:output_tokens:" // + model name
	KeyToolCalls       = "chefbot:tool_calls"
	KeyToolCallsFor    = "chefbot:tool_calls:" // + tool name
	KeyToolErrors      = "chefbot:tool_errors"
	KeyStagesFor       = "chefbot:stages:" // + stage name
	KeyErrorLogs       = "chefbot:error_logs"
	KeyScores          = "chefbot:scores"
)

// Stats is a [chefbot.Sink] that counts events: model calls and tokens per model, tool calls per
// tool, stage progress and failures. Counters only go up. It is safe for concurrent use.
type Stats struct {
	mu       sync.RWMutex
	counters map[string]int64
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{counters: make(map[string]int64)}
}

// Emit implements chefbot.Sink.
func (s *Stats) Emit(_ context.Context, event chefbot.TraceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := event.(type) {
	case chefbot.TraceStart:
		s.counters[KeyTraces]++

	case chefbot.ModelCallTrace:
		s.counters[KeyModelCalls]++
		if e.Error != nil {
			s.counters[KeyModelErrors]++
		}
		s.counters[KeyInputTokens] += int64(e.InputTokens)
		s.counters[KeyOutputTokens] += int64(e.OutputTokens)
		if e.Model != "" {
			s.counters[KeyInputTokensFor+e.Model] += int64(e.InputTokens)
			s.counters[KeyOutputTokensFor+e.Model] += int64(e.OutputTokens)
		}

	case chefbot.ToolCallTrace:
		s.counters[KeyToolCalls]++
		s.counters[KeyToolCallsFor+e.ToolName]++
		if e.Error != nil {
			s.counters[KeyToolErrors]++
		}

	case chefbot.StageTrace:
		s.counters[KeyStagesFor+e.Stage]++

	case chefbot.LogTrace:
		if e.Level == chefbot.LogLevelError {
			s.counters[KeyErrorLogs]++
		}

	case chefbot.ScoreTrace:
		s.counters[KeyScores]++
	}
}

// Counter returns the value of key, 0 when never incremented.
func (s *Stats) Counter(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[key]
}

// Counters returns a snapshot of every counter.
func (s *Stats) Counters() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

// TotalTokens returns input plus output tokens over every model.
func (s *Stats) TotalTokens() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[KeyInputTokens] + s.counters[KeyOutputTokens]
}

var _ chefbot.Sink = (*Stats)(nil)
