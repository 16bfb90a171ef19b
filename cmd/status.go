package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/podfix/internal/formatter"
	"github.com/desertthunder/podfix/internal/ledger"
	"github.com/urfave/cli/v3"
)

// Status reports the recorded run's progress without touching the network.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	led := ledger.New(config.Ledger.Path)
	found, err := led.Load()
	if err != nil {
		return err
	}
	if !found {
		r.writePlain("No recorded progress at %s. Run 'podfix run' to start.\n", led.Path())
		return nil
	}

	report := formatter.NewReport(led.Meta(), led.Outcomes())

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	r.writePlainHeader(fmt.Sprintf("Progress: %s", led.Path()))
	summary, err := formatter.ExportToText(report)
	if err != nil {
		return err
	}
	return r.writePlain("%s", summary)
}
