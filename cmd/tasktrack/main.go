// Package main implements tasktrack, the maintenance entry point for the
// task tracker's data directory. It reports storage statistics, takes and
// prunes backups, keeps the two storage formats in step and summarizes the
// stored tasks.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, cmdArgs, err := parseGlobalFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if len(cmdArgs) == 0 {
		usage(stderr)
		return 2
	}

	cmd, ok := commands[cmdArgs[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmdArgs[0])
		usage(stderr)
		return 2
	}

	app, err := initializeApp(opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize application: %v\n", err)
		return 1
	}

	err = cmd.run(ctx, app, cmdArgs[1:], stdout)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		app.logger.Error("command failed", "command", cmdArgs[0], "error", err)
		fmt.Fprintf(stderr, "%s: %v\n", cmdArgs[0], err)
		return 1
	}
	return 0
}
