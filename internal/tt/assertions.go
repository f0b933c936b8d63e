package tt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// -----------------------------------------------------------------------------
// Message Helpers
// -----------------------------------------------------------------------------

// MessageText concatenates the text parts of a message.
func MessageText(msg llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range msg.Parts {
		if text, ok := part.(llms.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

// ToolResponses returns every tool response part in messages, in order.
func ToolResponses(messages []llms.MessageContent) []llms.ToolCallResponse {
	var out []llms.ToolCallResponse
	for _, msg := range messages {
		if msg.Role != llms.ChatMessageTypeTool {
			continue
		}
		for _, part := range msg.Parts {
			if resp, ok := part.(llms.ToolCallResponse); ok {
				out = append(out, resp)
			}
		}
	}
	return out
}

// RequestedToolCalls returns every tool call echoed in assistant messages, in order.
func RequestedToolCalls(messages []llms.MessageContent) []llms.ToolCall {
	var out []llms.ToolCall
	for _, msg := range messages {
		if msg.Role != llms.ChatMessageTypeAI {
			continue
		}
		for _, part := range msg.Parts {
			if call, ok := part.(llms.ToolCall); ok {
				out = append(out, call)
			}
		}
	}
	return out
}

// Roles returns the role sequence of messages.
func Roles(messages []llms.MessageContent) []llms.ChatMessageType {
	out := make([]llms.ChatMessageType, len(messages))
	for i, msg := range messages {
		out[i] = msg.Role
	}
	return out
}

// -----------------------------------------------------------------------------
// Conversation Assertions
// -----------------------------------------------------------------------------

// AssertToolCorrelation asserts that every tool call requested in messages has exactly one
// response carrying the same identifier, and that no response is orphaned.
func AssertToolCorrelation(t *testing.T, messages []llms.MessageContent) {
	t.Helper()

	calls := RequestedToolCalls(messages)
	responses := ToolResponses(messages)
	require.Equal(t, len(calls), len(responses), "tool call/response count mismatch")

	byID := make(map[string]int)
	for _, resp := range responses {
		byID[resp.ToolCallID]++
	}
	for _, call := range calls {
		assert.Equal(t, 1, byID[call.ID], "tool call %q must have exactly one response", call.ID)
	}
}
