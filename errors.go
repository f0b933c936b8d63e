package chefbot

import "errors"

var (
	// ErrUnknownTool is returned when a requested tool name is absent from the registry.
	ErrUnknownTool = errors.New("chefbot: unknown tool")

	// ErrToolExecution wraps failures raised inside a tool body or while binding its arguments.
	ErrToolExecution = errors.New("chefbot: tool execution failed")

	// ErrStructuredParse is returned when model text is not valid JSON even after
	// delimiter-based recovery.
	ErrStructuredParse = errors.New("chefbot: structured parse failed")

	// ErrIterationBudgetExhausted marks a tool loop that ran out of iterations without a
	// tool-call-free response. The loop reports this as text, never as a returned error.
	ErrIterationBudgetExhausted = errors.New("chefbot: iteration budget exhausted")

	// ErrEmptyResponse is returned when the model response carries no choice.
	ErrEmptyResponse = errors.New("chefbot: empty model response")
)
