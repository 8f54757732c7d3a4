package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/amoebajs/builder-sub000/internal/app"
	"github.com/amoebajs/builder-sub000/internal/cli"
	"github.com/amoebajs/builder-sub000/internal/hcl_adapter"
)

// main is the entrypoint for the amoeba compiler.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render(err.Error()))
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Documents and help go to outW, logs to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string) (err error) {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on configuration that cannot be loaded; report it as an
	// ordinary error.
	defer func() {
		if r := recover(); r != nil {
			err = &cli.ExitError{Code: 1, Message: fmt.Sprintf("application startup panicked | %v", r)}
		}
	}()

	amoeba := app.NewApp(outW, logW, inv.Config, hcl_adapter.NewLoader())

	switch inv.Action {
	case cli.ActionTemplates:
		return cli.PrintTemplates(outW, amoeba.Registry())
	case cli.ActionWatch:
		if err := amoeba.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return &cli.ExitError{Code: 1, Err: err}
		}
		return nil
	default:
		if _, err := amoeba.Build(ctx); err != nil {
			return &cli.ExitError{Code: 1, Err: err}
		}
		return nil
	}
}
