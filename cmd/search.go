package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/repositories"
	"github.com/desertthunder/podfix/internal/shared"
	"github.com/desertthunder/podfix/internal/tasks"
	"github.com/desertthunder/podfix/internal/ui"
	"github.com/urfave/cli/v3"
)

// Search launches the interactive TUI: scan episode titles for a match,
// confirm, and restore one episode's artwork.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query required", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	podcastID := cmd.String("podcast")

	svc, err := r.provider(ctx, config)
	if err != nil {
		return err
	}

	led, err := r.openLedger(config)
	if err != nil {
		return err
	}
	led.Initialize(podcastID, config.Run.BatchSize)

	// Cached matches skip the remote scan entirely; a cold cache falls back
	// to paging through the provider listing.
	var cache tasks.EpisodeCacher
	var cached []models.Episode
	db, adapter, err := r.openCache(config)
	if err != nil {
		r.logger.Warn("episode cache unavailable, continuing without it", "error", err)
	} else {
		cache = adapter
		defer db.Close()

		repo := repositories.NewEpisodeRepository(db)
		if hits, err := repo.SearchByTitle(podcastID, query); err == nil {
			for _, hit := range hits {
				cached = append(cached, hit.Episode)
			}
		}
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/podfix-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := tasks.NewRestoreEngine(svc, led, nil, cache)
	model := ui.NewModel(ctx, engine, podcastID, query, cmd.Bool("dry-run"), cached)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return model.Err()
}
