package chefbot

// =============================================================================
// Groq-hosted models
// https://console.groq.com/docs/models
// =============================================================================

const (
	// Meta Llama
	ModelLlama4Scout  = "meta-llama/llama-4-scout-17b-16e-instruct"
	ModelLlama33Large = "meta-llama/llama-3.3-70b-versatile"

	// OpenAI open-weight
	ModelGPTOSS120B = "openai/gpt-oss-120b"

	// Qwen
	ModelQwen3 = "qwen/qwen3-32b"
)

// DefaultModel answers plain chef questions, plans menus and judges evaluations.
const DefaultModel = ModelLlama4Scout

// DefaultToolModel drives the tool-calling loops.
const DefaultToolModel = ModelGPTOSS120B

// Tags attached to every trace started by the chefbot entry points.
const TagChefBot = "ChefBot"
