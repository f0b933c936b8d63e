package chefbot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit(t *testing.T) {
	t.Run("nil sink is a no-op", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Emit(context.Background(), nil, LogTrace{Message: "hello"})
		})
	})

	t.Run("panicking sink is recovered", func(t *testing.T) {
		sink := SinkFunc(func(context.Context, TraceEvent) {
			panic(errors.New("sink exploded"))
		})
		assert.NotPanics(t, func() {
			Emit(context.Background(), sink, StageTrace{Stage: "planning"})
		})
	})

	t.Run("stamps zero time", func(t *testing.T) {
		var got TraceEvent
		sink := SinkFunc(func(_ context.Context, e TraceEvent) { got = e })

		Emit(context.Background(), sink, ToolCallTrace{ToolName: "check_fridge"})

		tc, ok := got.(ToolCallTrace)
		require.True(t, ok)
		assert.False(t, tc.Time.IsZero())
		assert.Equal(t, "check_fridge", tc.ToolName)
	})

	t.Run("logf formats message", func(t *testing.T) {
		var got TraceEvent
		sink := SinkFunc(func(_ context.Context, e TraceEvent) { got = e })

		Logf(context.Background(), sink, LogLevelError, "attempt %d failed", 2)

		lt, ok := got.(LogTrace)
		require.True(t, ok)
		assert.Equal(t, LogLevelError, lt.Level)
		assert.Equal(t, "attempt 2 failed", lt.Message)
	})
}

func TestWithTrace(t *testing.T) {
	ctx, outer := WithTrace(context.Background(), "outer", "ChefBot", "Partie 4")
	require.NotEmpty(t, outer.ID)
	assert.Equal(t, "outer", outer.Name)
	assert.Equal(t, []string{"ChefBot", "Partie 4"}, outer.Tags)

	nestedCtx, inner := WithTrace(ctx, "inner")
	assert.Equal(t, outer, inner, "nested operations keep the outer trace")
	assert.Equal(t, ctx, nestedCtx)

	got, ok := TraceFrom(nestedCtx)
	require.True(t, ok)
	assert.Equal(t, outer.ID, got.ID)

	_, ok = TraceFrom(context.Background())
	assert.False(t, ok)
}

func TestWithNewTrace(t *testing.T) {
	ctx, outer := WithTrace(context.Background(), "experiment")
	ctx, item := WithNewTrace(ctx, "item", "ChefBot")

	assert.NotEqual(t, outer.ID, item.ID)
	got, ok := TraceFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, item, got)
}
