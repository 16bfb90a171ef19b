package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/podfix/internal/formatter"
	"github.com/desertthunder/podfix/internal/ledger"
	"github.com/desertthunder/podfix/internal/shared"
	"github.com/desertthunder/podfix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run executes the batch artwork restore pipeline for a podcast.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	podcastID := cmd.String("podcast")
	batchSize := cmd.Int("batch-size")
	if batchSize <= 0 {
		batchSize = config.Run.BatchSize
	}

	led, err := r.openLedger(config)
	if err != nil {
		return err
	}

	if info, ok := led.Resume(); ok && info.PodcastID == podcastID {
		r.logger.Info("resuming previous run", "page", info.Page, "processed", info.Processed)
		r.writePlain("Resuming from page %d (%d/%d episodes processed)\n\n", info.Page, info.Processed, info.Total)
	}
	led.Initialize(podcastID, batchSize)

	opts := tasks.RestoreOpts{
		PodcastID: podcastID,
		BatchSize: batchSize,
		StartPage: cmd.Int("start-page"),
		Simulate:  cmd.Bool("dry-run"),
		Force:     cmd.Bool("force"),
	}

	return r.runPipeline(ctx, cmd, config, led, opts)
}

// Resume continues the run recorded in the ledger.
func (r *Runner) Resume(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	led, err := r.openLedger(config)
	if err != nil {
		return err
	}

	info, ok := led.Resume()
	if !ok {
		return fmt.Errorf("%w: no interrupted run to resume (try 'podfix run' or 'podfix status')", shared.ErrLedgerNotFound)
	}

	r.logger.Info("resuming run", "podcast", info.PodcastID, "page", info.Page)
	r.writePlain("Resuming podcast %s from page %d (%d/%d episodes processed)\n\n",
		info.PodcastID, info.Page, info.Processed, info.Total)

	led.Initialize(info.PodcastID, info.BatchSize)

	opts := tasks.RestoreOpts{
		PodcastID: info.PodcastID,
		BatchSize: info.BatchSize,
		Simulate:  cmd.Bool("dry-run"),
	}

	return r.runPipeline(ctx, cmd, config, led, opts)
}

// runPipeline wires the engine and drives one run to completion, printing
// progress and the final summary.
func (r *Runner) runPipeline(ctx context.Context, cmd *cli.Command, config *shared.Config, led *ledger.Ledger, opts tasks.RestoreOpts) error {
	svc, err := r.provider(ctx, config)
	if err != nil {
		return err
	}

	r.logger.Debug("checking provider connectivity")
	if err := svc.TestConnectivity(ctx); err != nil {
		return fmt.Errorf("provider unreachable: %w", err)
	}

	var cache tasks.EpisodeCacher
	db, adapter, err := r.openCache(config)
	if err != nil {
		r.logger.Warn("episode cache unavailable, continuing without it", "error", err)
	} else {
		cache = adapter
		defer db.Close()
	}

	var control tasks.ControlFunc
	if !cmd.Bool("yes") {
		control = r.promptControl()
	}

	if opts.Simulate {
		r.writePlain("Dry run: artwork will be downloaded and validated, not uploaded.\n\n")
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPage:
				r.writePlain("\n📥 %s\n", update.Message)
			case tasks.ProcessEpisode, tasks.SkipEpisode:
				r.writePlain("   %s\n", update.Message)
			case tasks.BatchDone:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	engine := tasks.NewRestoreEngine(svc, led, control, cache)
	result, err := engine.Run(ctx, opts, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	if result.Complete {
		r.writePlainHeader("Run Complete!")
	} else if result.Stopped {
		r.writePlainHeader("Run Stopped")
	} else {
		r.writePlainHeader("Run Finished")
	}

	report := formatter.NewReport(result.Meta, led.Outcomes())
	summary, err := formatter.ExportToText(report)
	if err != nil {
		return err
	}
	r.writePlain("%s", summary)

	if path := cmd.String("report"); path != "" {
		written, err := formatter.WriteReport(report.FailedOnly(), path)
		if err != nil {
			return err
		}
		r.writePlain("\nFailure report written to %s\n", written)
	}

	return nil
}

// Reset deletes the progress ledger.
func (r *Runner) Reset(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	led, err := r.openLedger(config)
	if err != nil {
		// A corrupt ledger is exactly what reset is for
		led = ledger.New(config.Ledger.Path)
	}

	if !cmd.Bool("yes") {
		ok, err := r.confirm(fmt.Sprintf("Delete all recorded progress at %s?", led.Path()))
		if err != nil {
			return err
		}
		if !ok {
			r.writePlain("Aborted.\n")
			return nil
		}
	}

	if err := led.Reset(); err != nil {
		return err
	}

	r.logger.Info("ledger reset", "path", led.Path())
	r.writePlain("✓ Progress ledger deleted. The next run starts fresh.\n")
	return nil
}
