package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/perfgrid/internal/app"
	"github.com/vk/perfgrid/internal/cli"
	"github.com/vk/perfgrid/internal/hcl_adapter"
)

// main is the entrypoint for the perfgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		exitErr := cli.FromError(err)
		fmt.Fprintln(os.Stderr, exitErr.Message)
		stop()
		os.Exit(exitErr.Code)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) (err error) {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Node functions and module registration may panic; report it as an
	// error instead of crashing without context.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application panicked: %v", r)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl_adapter.NewLoader()
	perfgridApp, err := app.NewApp(outW, inv.Config, loader)
	if err != nil {
		return err
	}

	switch inv.Command {
	case cli.CommandPlan:
		return perfgridApp.Plan(ctx, outW)
	default:
		return perfgridApp.Run(ctx)
	}
}
