// Package chefbot is a French cooking assistant built on a Chat Completion Service.
//
// The root package holds the contracts every component shares: the [Model] interface and its
// response types, sentinel errors, the [Sink] observability side channel with its trace events,
// the season-aware [TimeProvider] and the Groq model identifiers. The behavior lives in
// subpackages:
//
//   - agents/ask: one-shot seasonal chef question.
//   - agents/manual: the manual tool-calling loop and multi-turn sessions.
//   - agents/staged: the plan, execute and synthesize menu pipeline.
//   - agents/crew: a manager agent delegating to specialist agents.
//   - toolchain: the tool registry and the kitchen tools.
//   - evaluation: datasets, rule and model-judge evaluators, model comparison.
//   - telemetry: zerolog, Langfuse, OpenTelemetry and counting sinks.
//
// # Quick Start: Fridge Assistant
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "os"
//
//	    "github.com/rickchristie/chefbot"
//	    "github.com/rickchristie/chefbot/agents/manual"
//	    "github.com/rickchristie/chefbot/models"
//	    "github.com/rickchristie/chefbot/toolchain"
//	)
//
//	func main() {
//	    // 1. Create a model
//	    model, err := models.NewGroqModel(chefbot.DefaultToolModel, os.Getenv("GROQ_API_KEY"))
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    // 2. Build the agent over the fridge tools
//	    agent := manual.NewAgent(model, toolchain.Fridge()).WithMaxIterations(5)
//
//	    // 3. Run
//	    answer, err := agent.Run(context.Background(), manual.DemoQuestion)
//	    if err != nil {
//	        panic(err)
//	    }
//	    fmt.Println(answer)
//	}
//
// # Observability
//
// Components report to a [Sink] through [Emit], which never lets a sink failure reach the
// caller. The trace an event belongs to travels in the context ([WithTrace]), so nested
// components (a specialist inside a crew, a pipeline inside an experiment) report into the
// trace of the outermost operation.
//
//	sink := telemetry.Multi(telemetry.NewLogSink(logger), telemetry.NewStats())
//	agent := manual.NewAgent(model, nil).WithSink(sink)
package chefbot
