package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/agents/staged"
)

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// generateMenu runs the pipeline, settling for the raw synthesis text when it is not JSON.
func generateMenu(ctx context.Context, p *staged.Pipeline, constraints string) (staged.Menu, error) {
	menu, err := p.Generate(ctx, constraints)
	if err == nil {
		return menu, nil
	}
	if fallback, ok := staged.FallbackMenu(err); ok {
		return fallback, nil
	}
	return nil, err
}

func printResult(out io.Writer, res *manual.Result, verbose bool) {
	if verbose {
		for _, tc := range res.ToolCalls {
			fmt.Fprintf(out, "  -> %s %v\n     %s\n", tc.Name, tc.Arguments, tc.Content)
		}
		fmt.Fprintf(out, "[%s après %d itération(s)]\n", res.State, res.Iterations)
	}
	fmt.Fprintln(out, res.Answer)
}
