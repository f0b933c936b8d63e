// Command chefbot runs the ChefBot cooking assistant.
//
// Without a subcommand it runs the demonstration: the fridge tool loop, then the weekly menu
// pipeline. See `chefbot --help` for the other modes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := newApp()
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
