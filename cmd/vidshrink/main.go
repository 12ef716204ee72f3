package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	vidshrinkcmd "vidshrink/internal/cli/cmd"
)

func main() {
	// Cancelling the context stops a running job before the process exits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := vidshrinkcmd.Execute(ctx); err != nil {
		var ee *vidshrinkcmd.ExitError
		if errors.As(err, &ee) {
			if ee.Err != nil {
				fmt.Fprintln(os.Stderr, ee.Err)
			}
			os.Exit(ee.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(vidshrinkcmd.ExitCLIError)
	}
	os.Exit(vidshrinkcmd.ExitOK)
}
