// Package manual implements ChefBot's manual tool-calling loop.
//
// The loop sends the conversation and the tool descriptors to the model. A reply without tool
// calls is the final answer. A reply with tool calls is echoed back as an assistant message, each
// call is dispatched through the [toolchain.Registry] in the order received, and one tool message
// per call is appended, correlated by call identifier. Then the model is called again.
//
// States:
//
//	AWAITING_MODEL --no tool calls--> DONE
//	AWAITING_MODEL --tool calls--> DISPATCHING_TOOLS --> AWAITING_MODEL
//	max iterations reached without DONE --> EXHAUSTED
//
// Tool failures never stop the loop: an unknown tool, malformed arguments or a failing tool body
// become the text of the tool message and the model decides what to do next. Exhaustion returns
// [FallbackAnswer]. Run returns a non-nil error only when the model itself cannot be reached or
// ctx is done.
//
// # Example
//
//	agent := manual.NewAgent(model, toolchain.Fridge()).WithSink(sink)
//	answer, err := agent.Run(ctx, "Qu'est-ce que je peux cuisiner avec mon frigo ?")
package manual
