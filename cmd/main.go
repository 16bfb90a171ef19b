package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/podfix/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		ConfigPath: "config.toml",
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "podfix",
		Usage:    "Restore missing podcast episode artwork from source media",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	// A first Ctrl+C drains gracefully via context cancellation; progress up
	// to the current episode is already on disk. A second one kills us.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted, progress saved")
			os.Exit(130)
		}
		logger.Fatalf("application error: %v", err)
	}
}
