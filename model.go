package chefbot

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Model is chefbot's view of the Chat Completion Service. It wraps LangChainGo's llms.Model
// but returns a normalized response with token usage, so the agents never depend on a
// provider-specific shape.
//
// A response whose selected choice carries zero tool calls is a final answer. A response with
// one or more tool calls is a request to invoke tools; every call carries a stable identifier,
// a tool name and a JSON-object-shaped argument string.
type Model interface {
	// GenerateContent sends the ordered message sequence to the model.
	//
	// Options are LangChainGo call options (llms.WithTools, llms.WithToolChoice,
	// llms.WithTemperature, ...). The implementation decides which model identifier is used.
	GenerateContent(
		ctx context.Context,
		messages []llms.MessageContent,
		options ...llms.CallOption,
	) (*ContentResponse, error)
}

// ContentResponse is the response from a GenerateContent call.
type ContentResponse struct {
	// Choices contains the generated content choices. Agents only read the first one.
	Choices []*ContentChoice

	// Info contains generation metadata including normalized token counts.
	Info *GenerationInfo
}

// ContentChoice is a single content choice from the model.
type ContentChoice struct {
	// Content is the textual content of the response.
	Content string

	// StopReason is the reason the model stopped generating.
	StopReason string

	// ToolCalls is the list of tool calls the model asks to invoke, in the order received.
	ToolCalls []llms.ToolCall

	// ReasoningContent contains reasoning/thinking content if supported.
	ReasoningContent string
}

// GenerationInfo contains metadata about the generation.
type GenerationInfo struct {
	// InputTokens is the number of prompt tokens used.
	InputTokens int

	// OutputTokens is the number of completion tokens generated.
	OutputTokens int

	// TotalTokens is InputTokens + OutputTokens when the provider does not report it.
	TotalTokens int

	// Duration is how long the generation took.
	Duration time.Duration
}

// First returns the first choice of the response.
// Returns ErrEmptyResponse when the response is nil or carries no choices.
func (r *ContentResponse) First() (*ContentChoice, error) {
	if r == nil || len(r.Choices) == 0 || r.Choices[0] == nil {
		return nil, ErrEmptyResponse
	}
	return r.Choices[0], nil
}

// TextMessage builds a single-part text message with the given role.
func TextMessage(role llms.ChatMessageType, text string) llms.MessageContent {
	return llms.MessageContent{
		Role:  role,
		Parts: []llms.ContentPart{llms.TextContent{Text: text}},
	}
}

// GenerateText is a convenience for single-shot calls: a system message and a user message
// in, the first choice's text out.
func GenerateText(
	ctx context.Context,
	model Model,
	system string,
	user string,
	options ...llms.CallOption,
) (string, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if system != "" {
		messages = append(messages, TextMessage(llms.ChatMessageTypeSystem, system))
	}
	messages = append(messages, TextMessage(llms.ChatMessageTypeHuman, user))

	resp, err := model.GenerateContent(ctx, messages, options...)
	if err != nil {
		return "", err
	}
	choice, err := resp.First()
	if err != nil {
		return "", err
	}
	return choice.Content, nil
}
