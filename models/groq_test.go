package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func TestNewGroqModel_MissingToken(t *testing.T) {
	_, err := NewGroqModel(chefbot.DefaultToolModel, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewGroqModel_ToolCallRoundTrip(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "openai/gpt-oss-120b",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_fridge",
						"type": "function",
						"function": {"name": "check_fridge", "arguments": "{}"}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49}
		}`))
	}))
	defer server.Close()

	model, err := NewGroqModel(chefbot.DefaultToolModel, "gsk_test", openai.WithBaseURL(server.URL))
	require.NoError(t, err)
	assert.Equal(t, chefbot.DefaultToolModel, model.ModelName())

	resp, err := model.GenerateContent(context.Background(),
		[]llms.MessageContent{chefbot.TextMessage(llms.ChatMessageTypeHuman, "Qu'y a-t-il dans le frigo ?")},
		llms.WithTools(toolchain.Fridge().LLMTools()),
		llms.WithToolChoice("auto"),
		llms.WithTemperature(0.3),
	)
	require.NoError(t, err)

	assert.Equal(t, "Bearer gsk_test", gotAuth)
	assert.True(t, strings.HasSuffix(gotPath, "/chat/completions"), gotPath)
	assert.Equal(t, chefbot.DefaultToolModel, gotBody["model"])
	tools, ok := gotBody["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 3)

	choice, err := resp.First()
	require.NoError(t, err)
	require.Len(t, choice.ToolCalls, 1)
	assert.Equal(t, "call_fridge", choice.ToolCalls[0].ID)
	assert.Equal(t, "check_fridge", choice.ToolCalls[0].FunctionCall.Name)
	assert.Equal(t, 42, resp.Info.InputTokens)
	assert.Equal(t, 7, resp.Info.OutputTokens)
	assert.Equal(t, 49, resp.Info.TotalTokens)
}
