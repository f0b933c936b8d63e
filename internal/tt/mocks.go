package tt

import (
	"context"
	"fmt"
	"sync"

	"github.com/rickchristie/chefbot"
	"github.com/tmc/langchaingo/llms"
)

// -----------------------------------------------------------------------------
// MockModel - implements chefbot.Model with scripted responses
// -----------------------------------------------------------------------------

// ResponderFunc computes a response from the messages of a call. Use it when the response
// depends on the conversation, e.g. for concurrent runs where queue order is not stable.
type ResponderFunc func(messages []llms.MessageContent) (*chefbot.ContentResponse, error)

// MockModel is a configurable mock that implements chefbot.Model.
// Queued responses are returned in call order. It is safe for concurrent use.
type MockModel struct {
	mu        sync.Mutex
	name      string
	responses []*chefbot.ContentResponse
	errors    []error
	responder ResponderFunc
	callCount int

	// CapturedMessages stores a copy of the messages passed to each GenerateContent call.
	CapturedMessages [][]llms.MessageContent

	// CapturedOptions stores the resolved call options of each GenerateContent call.
	CapturedOptions []llms.CallOptions
}

// NewMockModel creates a new MockModel with the default name "test-model".
func NewMockModel() *MockModel {
	return &MockModel{name: "test-model"}
}

// WithName sets the model name.
func (m *MockModel) WithName(name string) *MockModel {
	m.name = name
	return m
}

// Name returns the model name.
func (m *MockModel) Name() string { return m.name }

// WithResponder makes every call that has no queued response use fn.
func (m *MockModel) WithResponder(fn ResponderFunc) *MockModel {
	m.responder = fn
	return m
}

// AddResponse queues a final-answer response with the specified content.
func (m *MockModel) AddResponse(content string) *MockModel {
	return m.AddRawResponse(&chefbot.ContentResponse{
		Choices: []*chefbot.ContentChoice{{Content: content, StopReason: "stop"}},
		Info:    &chefbot.GenerationInfo{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	})
}

// AddToolCalls queues a response that requests the given tool calls.
func (m *MockModel) AddToolCalls(content string, calls ...llms.ToolCall) *MockModel {
	return m.AddRawResponse(&chefbot.ContentResponse{
		Choices: []*chefbot.ContentChoice{{
			Content:    content,
			StopReason: "tool_calls",
			ToolCalls:  calls,
		}},
		Info: &chefbot.GenerationInfo{InputTokens: 20, OutputTokens: 8, TotalTokens: 28},
	})
}

// AddRawResponse queues a raw ContentResponse.
// Use this when you need full control over the response structure (e.g., empty Choices).
func (m *MockModel) AddRawResponse(resp *chefbot.ContentResponse) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues an error for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// CallCount returns the number of times GenerateContent has been called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns a snapshot of the captured messages.
func (m *MockModel) Calls() [][]llms.MessageContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]llms.MessageContent, len(m.CapturedMessages))
	copy(out, m.CapturedMessages)
	return out
}

// GenerateContent implements chefbot.Model.
func (m *MockModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	opts ...llms.CallOption,
) (*chefbot.ContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var resolved llms.CallOptions
	for _, opt := range opts {
		opt(&resolved)
	}
	snapshot := make([]llms.MessageContent, len(messages))
	copy(snapshot, messages)

	m.mu.Lock()
	idx := m.callCount
	m.callCount++
	m.CapturedMessages = append(m.CapturedMessages, snapshot)
	m.CapturedOptions = append(m.CapturedOptions, resolved)
	responder := m.responder
	var (
		resp *chefbot.ContentResponse
		err  error
	)
	queued := idx < len(m.responses)
	if queued {
		resp, err = m.responses[idx], m.errors[idx]
	}
	m.mu.Unlock()

	if !queued {
		if responder != nil {
			return responder(snapshot)
		}
		return nil, fmt.Errorf("tt: no response queued for call %d", idx+1)
	}
	return resp, err
}

// ToolCall builds a function tool call with the given ID, name and raw JSON arguments.
func ToolCall(id, name, arguments string) llms.ToolCall {
	return llms.ToolCall{
		ID:   id,
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      name,
			Arguments: arguments,
		},
	}
}

// TextResponse builds a final-answer response, for use in a ResponderFunc.
func TextResponse(content string) *chefbot.ContentResponse {
	return &chefbot.ContentResponse{
		Choices: []*chefbot.ContentChoice{{Content: content, StopReason: "stop"}},
		Info:    &chefbot.GenerationInfo{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
}

// ToolCallResponse builds a tool-call response, for use in a ResponderFunc.
func ToolCallResponse(calls ...llms.ToolCall) *chefbot.ContentResponse {
	return &chefbot.ContentResponse{
		Choices: []*chefbot.ContentChoice{{StopReason: "tool_calls", ToolCalls: calls}},
		Info:    &chefbot.GenerationInfo{InputTokens: 20, OutputTokens: 8, TotalTokens: 28},
	}
}

// Compile-time check.
var _ chefbot.Model = (*MockModel)(nil)
