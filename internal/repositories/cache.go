package repositories

import (
	"fmt"

	"github.com/desertthunder/podfix/internal/models"
)

// EpisodeCacheAdapter implements tasks.EpisodeCacher using EpisodeRepository.
//
// Episodes flow through here on every page fetch, so listings are cached as a
// side effect of normal pipeline runs. Episodes that fail validation (no ID,
// podcast, or title) are dropped rather than surfaced, since caching is
// best-effort and must never disturb a run.
type EpisodeCacheAdapter struct {
	repo *EpisodeRepository
}

// NewEpisodeCacheAdapter creates a new EpisodeCacheAdapter with the given repository
func NewEpisodeCacheAdapter(repo *EpisodeRepository) *EpisodeCacheAdapter {
	return &EpisodeCacheAdapter{repo: repo}
}

// CacheEpisode stores one provider episode in the local cache. Re-caching a
// known episode refreshes its metadata.
func (a *EpisodeCacheAdapter) CacheEpisode(episode models.Episode) error {
	persisted := &models.PersistedEpisode{Episode: episode}
	if err := persisted.Validate(); err != nil {
		return nil
	}

	if err := a.repo.Upsert(persisted); err != nil {
		return fmt.Errorf("failed to cache episode: %w", err)
	}

	return nil
}
