// Command dutyctl bootstraps and inspects the duty database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dutyservice/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.DefaultRuntime()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
