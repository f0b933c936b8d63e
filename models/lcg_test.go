package models

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeLLM struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
}

func (f *fakeLLM) GenerateContent(
	_ context.Context,
	messages []llms.MessageContent,
	_ ...llms.CallOption,
) (*llms.ContentResponse, error) {
	f.messages = messages
	return f.resp, f.err
}

func (f *fakeLLM) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestLCGWrapper_GenerateContent(t *testing.T) {
	type expected struct {
		content      string
		toolCalls    int
		inputTokens  int
		outputTokens int
		totalTokens  int
	}

	tests := []struct {
		name     string
		info     map[string]any
		choice   *llms.ContentChoice
		expected expected
	}{
		{
			name:   "openai-compatible usage keys",
			info:   map[string]any{"PromptTokens": 120, "CompletionTokens": 30, "TotalTokens": 150},
			choice: &llms.ContentChoice{Content: "Une omelette !", StopReason: "stop"},
			expected: expected{
				content: "Une omelette !", inputTokens: 120, outputTokens: 30, totalTokens: 150,
			},
		},
		{
			name:   "computed total with float counts",
			info:   map[string]any{"input_tokens": 10.0, "output_tokens": 4.0},
			choice: &llms.ContentChoice{Content: "ok"},
			expected: expected{
				content: "ok", inputTokens: 10, outputTokens: 4, totalTokens: 14,
			},
		},
		{
			name: "tool calls preserved",
			info: map[string]any{"PromptTokens": int64(50), "CompletionTokens": int32(5)},
			choice: &llms.ContentChoice{
				StopReason: "tool_calls",
				ToolCalls:  []llms.ToolCall{tt.ToolCall("call_1", "check_fridge", "{}")},
			},
			expected: expected{
				toolCalls: 1, inputTokens: 50, outputTokens: 5, totalTokens: 55,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.choice.GenerationInfo = tc.info
			llm := &fakeLLM{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{tc.choice}}}
			sink := tt.NewRecordingSink()
			model := NewLCGWrapper(llm).WithModelName("qwen/qwen3-32b").WithSink(sink)

			msgs := []llms.MessageContent{chefbot.TextMessage(llms.ChatMessageTypeHuman, "J'ai faim")}
			resp, err := model.GenerateContent(context.Background(), msgs)
			require.NoError(t, err)

			choice, err := resp.First()
			require.NoError(t, err)
			assert.Equal(t, tc.expected.content, choice.Content)
			assert.Len(t, choice.ToolCalls, tc.expected.toolCalls)
			assert.Equal(t, tc.expected.inputTokens, resp.Info.InputTokens)
			assert.Equal(t, tc.expected.outputTokens, resp.Info.OutputTokens)
			assert.Equal(t, tc.expected.totalTokens, resp.Info.TotalTokens)
			assert.GreaterOrEqual(t, resp.Info.Duration, time.Duration(0))

			events := sink.Events()
			require.Len(t, events, 1)
			trace, ok := events[0].(chefbot.ModelCallTrace)
			require.True(t, ok)
			assert.Equal(t, "qwen/qwen3-32b", trace.Model)
			assert.Equal(t, 1, trace.MessageCount)
			assert.Equal(t, tc.expected.inputTokens, trace.InputTokens)
			assert.Equal(t, tc.expected.toolCalls, trace.ToolCalls)
			assert.NoError(t, trace.Error)
		})
	}
}

func TestLCGWrapper_Error(t *testing.T) {
	boom := errors.New("429 too many requests")
	sink := tt.NewRecordingSink()
	model := NewLCGWrapper(&fakeLLM{err: boom}).WithSink(sink)

	resp, err := model.GenerateContent(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, resp)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.ErrorIs(t, events[0].(chefbot.ModelCallTrace).Error, boom)
}

func TestLCGWrapper_PanickingSink(t *testing.T) {
	llm := &fakeLLM{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok"}}}}
	model := NewLCGWrapper(llm).WithSink(tt.PanickingSink{})

	resp, err := model.GenerateContent(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Choices[0].Content)
}

func TestHelloGroq(t *testing.T) {
	apiKey := os.Getenv("CHEFBOT_TEST_GROQ_KEY")
	if apiKey == "" {
		t.Skip("CHEFBOT_TEST_GROQ_KEY not set")
	}

	model, err := NewGroqModel(chefbot.DefaultModel, apiKey)
	require.NoError(t, err)

	out, err := chefbot.GenerateText(context.Background(), model,
		"Tu es ChefBot.", "Bonjour ChefBot ! Réponds en une phrase.")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
