// Package staged implements ChefBot's plan, execute and synthesize menu pipeline.
//
// Three stages run in sequence, each one a plain call to the model:
//
//   - Plan: the model decomposes the task into steps and replies with a JSON array of
//     {step, title, instruction} objects.
//   - Execute: each step is sent with the serialized [StepContext] accumulated so far. Its raw
//     reply is recorded and folded into the context under "step_<n>".
//   - Synthesize: every [ExecutionResult] is sent with a strict JSON-only instruction and the
//     reply is parsed as the final [Menu].
//
// Plan and synthesis replies go through [extract], so prose around the JSON is tolerated. A
// reply that still cannot be parsed, and a failed model call, cost one attempt; after
// [DefaultAttempts] the stage returns a [*StageError] wrapping chefbot.ErrStructuredParse or
// the model error. A failing step never aborts the run: its output becomes "Error: <message>".
//
// # Example
//
//	p := staged.NewPipeline(model).WithSink(sink)
//	menu, err := p.Generate(ctx, "repas pour diabetique, sans sucre ajouté")
//	if fallback, ok := staged.FallbackMenu(err); ok {
//	    menu, err = fallback, nil
//	}
package staged
