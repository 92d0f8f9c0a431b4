// Command policydesk is a CLI client for the PolicyDesk insurance API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main runs the command tree; any error ends the process with exit code 1.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&app{})
	if err := root.ExecuteContext(ctx); err != nil {
		fail(os.Stderr, err)
	}
}

func fail(w io.Writer, err error) {
	fmt.Fprintln(w, errorLine(err))
	os.Exit(1)
}
