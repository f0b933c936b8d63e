package models

import (
	"context"
	"time"

	"github.com/rickchristie/chefbot"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
)

// LCGWrapper wraps an llms.Model and implements chefbot.Model.
// It normalizes token usage across providers and reports every call to a chefbot.Sink.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey), openai.WithBaseURL(models.GroqBaseURL))
//	model := models.NewLCGWrapper(llm).WithModelName("openai/gpt-oss-120b")
//
//	response, err := model.GenerateContent(ctx, messages, llms.WithTemperature(0.3))
type LCGWrapper struct {
	model     llms.Model
	modelName string
	sink      chefbot.Sink
	logger    zerolog.Logger
}

// NewLCGWrapper creates a new LCGWrapper wrapping the given llms.Model.
func NewLCGWrapper(model llms.Model) *LCGWrapper {
	return &LCGWrapper{
		model:  model,
		logger: zerolog.Nop(),
	}
}

// WithModelName sets the model name used in traces and logs.
// Returns the model for chaining.
func (m *LCGWrapper) WithModelName(name string) *LCGWrapper {
	m.modelName = name
	return m
}

// WithSink sets the sink receiving a chefbot.ModelCallTrace per call.
func (m *LCGWrapper) WithSink(sink chefbot.Sink) *LCGWrapper {
	m.sink = sink
	return m
}

// WithLogger sets the logger.
func (m *LCGWrapper) WithLogger(logger zerolog.Logger) *LCGWrapper {
	m.logger = logger
	return m
}

// ModelName returns the configured model name.
func (m *LCGWrapper) ModelName() string {
	return m.modelName
}

// GenerateContent implements chefbot.Model.GenerateContent.
// The call is traced with token counts and duration. Token usage is normalized across providers.
func (m *LCGWrapper) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*chefbot.ContentResponse, error) {
	startTime := time.Now()
	lcgResponse, err := m.model.GenerateContent(ctx, messages, options...)
	duration := time.Since(startTime)

	var response *chefbot.ContentResponse
	if lcgResponse != nil {
		response = convertLCGResponse(lcgResponse, duration)
	}

	trace := chefbot.ModelCallTrace{
		Model:        m.modelName,
		MessageCount: len(messages),
		Duration:     duration,
		Error:        err,
	}
	if response != nil {
		if response.Info != nil {
			trace.InputTokens = response.Info.InputTokens
			trace.OutputTokens = response.Info.OutputTokens
		}
		if choice, cErr := response.First(); cErr == nil {
			trace.Output = choice.Content
			trace.ToolCalls = len(choice.ToolCalls)
		}
	}
	chefbot.Emit(ctx, m.sink, trace)

	event := m.logger.Debug()
	if err != nil {
		event = m.logger.Warn().Err(err)
	}
	event.Str("model", m.modelName).
		Int("messages", len(messages)).
		Int("input_tokens", trace.InputTokens).
		Int("output_tokens", trace.OutputTokens).
		Int("tool_calls", trace.ToolCalls).
		Dur("duration", duration).
		Msg("model call")

	return response, err
}

// convertLCGResponse converts an llms.ContentResponse to chefbot.ContentResponse with normalized
// tokens.
func convertLCGResponse(
	lcgResponse *llms.ContentResponse,
	duration time.Duration,
) *chefbot.ContentResponse {
	response := &chefbot.ContentResponse{
		Choices: make([]*chefbot.ContentChoice, len(lcgResponse.Choices)),
		Info:    &chefbot.GenerationInfo{Duration: duration},
	}

	for i, choice := range lcgResponse.Choices {
		if choice == nil {
			continue
		}
		response.Choices[i] = &chefbot.ContentChoice{
			Content:          choice.Content,
			StopReason:       choice.StopReason,
			ToolCalls:        choice.ToolCalls,
			ReasoningContent: choice.ReasoningContent,
		}
	}

	// Token info lives in the first choice's GenerationInfo.
	if len(lcgResponse.Choices) > 0 && lcgResponse.Choices[0] != nil &&
		lcgResponse.Choices[0].GenerationInfo != nil {
		rawInfo := lcgResponse.Choices[0].GenerationInfo
		response.Info.InputTokens = extractInputTokens(rawInfo)
		response.Info.OutputTokens = extractOutputTokens(rawInfo)
		response.Info.TotalTokens = extractTotalTokens(
			rawInfo,
			response.Info.InputTokens,
			response.Info.OutputTokens,
		)
	}

	return response
}

// extractInputTokens extracts input/prompt token count from GenerationInfo.
// Handles different key names used by different providers.
func extractInputTokens(info map[string]any) int {
	// OpenAI-compatible (Groq)
	if v := getIntFromMap(info, "PromptTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "InputTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "input_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractOutputTokens extracts output/completion token count from GenerationInfo.
func extractOutputTokens(info map[string]any) int {
	if v := getIntFromMap(info, "CompletionTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "OutputTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "output_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractTotalTokens extracts total token count or computes it.
func extractTotalTokens(info map[string]any, input, output int) int {
	if v := getIntFromMap(info, "TotalTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "total_tokens"); v > 0 {
		return v
	}
	return input + output
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// Compile-time check that LCGWrapper implements chefbot.Model.
var _ chefbot.Model = (*LCGWrapper)(nil)
