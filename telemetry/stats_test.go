package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rickchristie/chefbot"
	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	s := NewStats()
	ctx := context.Background()

	s.Emit(ctx, chefbot.TraceStart{Name: "t"})
	s.Emit(ctx, chefbot.ModelCallTrace{Model: "m1", InputTokens: 10, OutputTokens: 5})
	s.Emit(ctx, chefbot.ModelCallTrace{Model: "m2", InputTokens: 3, OutputTokens: 1, Error: errors.New("x")})
	s.Emit(ctx, chefbot.ToolCallTrace{ToolName: "check_fridge"})
	s.Emit(ctx, chefbot.ToolCallTrace{ToolName: "check_fridge", Error: errors.New("boom")})
	s.Emit(ctx, chefbot.StageTrace{Stage: "planning"})
	s.Emit(ctx, chefbot.LogTrace{Level: chefbot.LogLevelError, Message: "e"})
	s.Emit(ctx, chefbot.LogTrace{Level: chefbot.LogLevelWarning, Message: "w"})
	s.Emit(ctx, chefbot.ScoreTrace{Name: "avoid_score"})

	tests := []struct {
		key  string
		want int64
	}{
		{KeyTraces, 1},
		{KeyModelCalls, 2},
		{KeyModelErrors, 1},
		{KeyInputTokens, 13},
		{KeyInputTokensFor + "m1", 10},
		{KeyOutputTokensFor + "m2", 1},
		{KeyToolCalls, 2},
		{KeyToolCallsFor + "check_fridge", 2},
		{KeyToolErrors, 1},
		{KeyStagesFor + "planning", 1},
		{KeyErrorLogs, 1},
		{KeyScores, 1},
		{"chefbot:unknown", 0},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Counter(tc.key))
		})
	}
	assert.Equal(t, int64(19), s.TotalTokens())
	assert.Len(t, s.Counters(), 15)
}

func TestStats_Concurrent(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Emit(context.Background(), chefbot.ToolCallTrace{ToolName: "calculate"})
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(20), s.Counter(KeyToolCallsFor+"calculate"))
}
