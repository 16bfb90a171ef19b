package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/podfix/internal/models"
)

// EpisodeRepository persists provider episode metadata in the local cache.
//
// Rows are keyed by the provider's episode ID. Upsert overwrites existing
// metadata so the cache always reflects the most recent listing.
type EpisodeRepository struct {
	db *sql.DB
}

// NewEpisodeRepository creates a new EpisodeRepository with the given database connection
func NewEpisodeRepository(db *sql.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// Upsert inserts an episode or refreshes its cached metadata when the ID is
// already present. CachedAt survives refreshes; UpdatedAt does not.
func (r *EpisodeRepository) Upsert(episode *models.PersistedEpisode) error {
	if err := episode.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	if episode.CachedAt.IsZero() {
		episode.CachedAt = now
	}
	episode.UpdatedAt = now

	query := `
		INSERT INTO episodes (id, podcast_id, title, media_ref, has_artwork, published_at, cached_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			podcast_id = excluded.podcast_id,
			title = excluded.title,
			media_ref = excluded.media_ref,
			has_artwork = excluded.has_artwork,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		episode.ID,
		episode.PodcastID,
		episode.Title,
		episode.MediaRef,
		episode.HasArtwork,
		episode.PublishedAt,
		episode.CachedAt,
		episode.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert episode: %w", err)
	}

	return nil
}

// Get retrieves a cached episode by provider ID
func (r *EpisodeRepository) Get(id string) (*models.PersistedEpisode, error) {
	query := `
		SELECT id, podcast_id, title, media_ref, has_artwork, published_at, cached_at, updated_at
		FROM episodes
		WHERE id = ?
	`

	episode, err := scanEpisode(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("episode not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan episode: %w", err)
	}

	return episode, nil
}

// ListByPodcast retrieves all cached episodes for a podcast ordered by title
func (r *EpisodeRepository) ListByPodcast(podcastID string) ([]*models.PersistedEpisode, error) {
	query := `
		SELECT id, podcast_id, title, media_ref, has_artwork, published_at, cached_at, updated_at
		FROM episodes
		WHERE podcast_id = ?
		ORDER BY title ASC
	`

	return r.queryEpisodes(query, podcastID)
}

// SearchByTitle retrieves cached episodes for a podcast whose titles contain
// the query, case-insensitively.
func (r *EpisodeRepository) SearchByTitle(podcastID, query string) ([]*models.PersistedEpisode, error) {
	stmt := `
		SELECT id, podcast_id, title, media_ref, has_artwork, published_at, cached_at, updated_at
		FROM episodes
		WHERE podcast_id = ? AND title LIKE ? ESCAPE '\'
		ORDER BY title ASC
	`

	return r.queryEpisodes(stmt, podcastID, "%"+escapeLike(query)+"%")
}

// CountByPodcast returns the number of cached episodes for a podcast
func (r *EpisodeRepository) CountByPodcast(podcastID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM episodes WHERE podcast_id = ?", podcastID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count episodes: %w", err)
	}
	return count, nil
}

// DeleteByPodcast removes all cached episodes for a podcast and returns the
// number of rows removed.
func (r *EpisodeRepository) DeleteByPodcast(podcastID string) (int, error) {
	result, err := r.db.Exec("DELETE FROM episodes WHERE podcast_id = ?", podcastID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete episodes: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}

func (r *EpisodeRepository) queryEpisodes(query string, args ...any) ([]*models.PersistedEpisode, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*models.PersistedEpisode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, episode)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return episodes, nil
}

// scanner covers both [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(s scanner) (*models.PersistedEpisode, error) {
	var (
		episode     models.PersistedEpisode
		mediaRef    sql.NullString
		publishedAt sql.NullString
	)

	err := s.Scan(
		&episode.ID,
		&episode.PodcastID,
		&episode.Title,
		&mediaRef,
		&episode.HasArtwork,
		&publishedAt,
		&episode.CachedAt,
		&episode.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	episode.MediaRef = mediaRef.String
	episode.PublishedAt = publishedAt.String

	return &episode, nil
}

// escapeLike neutralizes LIKE wildcards in user-supplied queries
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
