package models

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// GroqBaseURL is the base URL of Groq's OpenAI-compatible API.
	// The chat completions endpoint is at {baseURL}/chat/completions.
	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// ErrMissingAPIKey is returned when no Groq API key is configured.
var ErrMissingAPIKey = errors.New("groq api key is required: set GROQ_API_KEY")

// NewGroqModel creates a Model backed by Groq's chat completions API.
//
// Model names use the publisher/model format, for example:
//
//	"meta-llama/llama-4-scout-17b-16e-instruct"
//	"openai/gpt-oss-120b"
//	"qwen/qwen3-32b"
//
// Additional openai.Option values customise the underlying LangChainGo client
// (e.g. openai.WithBaseURL for a proxy, openai.WithHTTPClient in tests).
//
// Example:
//
//	model, err := models.NewGroqModel("openai/gpt-oss-120b", os.Getenv("GROQ_API_KEY"))
func NewGroqModel(
	model string,
	apiKey string,
	opts ...openai.Option,
) (*LCGWrapper, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseOpts := []openai.Option{
		openai.WithBaseURL(GroqBaseURL),
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}

	// Caller options come after so they can override defaults.
	allOpts := append(baseOpts, opts...)

	llm, err := openai.New(allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Groq client: %w", err)
	}

	return NewLCGWrapper(llm).WithModelName(model), nil
}
