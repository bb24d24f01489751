package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/stockroom/internal/cmd"
	"github.com/felixgeelhaar/stockroom/internal/exitcode"
	"github.com/felixgeelhaar/stockroom/internal/ux"
)

func main() {
	exitcode.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command named by args and returns its exit code. Cancellation by a
// signal wins over whatever error the interrupted command produced.
func run(args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteArgs(ctx, args)
	if err == nil {
		return exitcode.Success
	}
	if ctx.Err() != nil {
		fmt.Fprintln(stderr, "\nInterrupted.")
		return exitcode.Interrupted
	}

	err = cmd.Explain(err)
	ux.RenderError(stderr, err)
	return exitcode.DetermineExitCode(err)
}
