package main

import (
	"context"

	"github.com/desertthunder/podfix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CachePodcast pages through a podcast's full listing and caches every
// episode's metadata locally.
func (r *Runner) CachePodcast(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	podcastID := cmd.String("id")

	svc, err := r.provider(ctx, config)
	if err != nil {
		return err
	}

	db, cache, err := r.openCache(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("caching episode metadata for podcast: %s", podcastID)

	progressCh := make(chan tasks.ProgressUpdate, 10)
	go func() {
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	engine := tasks.NewRestoreEngine(svc, nil, nil, cache)
	cached, err := engine.CacheAll(ctx, podcastID, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlainln("✓ Cached %d episodes to %s", cached, config.Database.Path)
	return nil
}
