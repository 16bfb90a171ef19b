// package models defines the data model for the artwork restore pipeline
package models

import (
	"fmt"
	"time"
)

// Episode represents a single episode drawn from a provider's paginated
// episode listing. Owned by the provider; podfix only reads it.
type Episode struct {
	ID          string `json:"id"`
	PodcastID   string `json:"podcast_id"`
	Title       string `json:"title"`
	MediaRef    string `json:"media_ref"`    // opaque source media reference, may be empty
	HasArtwork  bool   `json:"has_artwork"`  // provider-reported flag; known to lie, never used to skip work
	PublishedAt string `json:"published_at"` // RFC3339, informational only
}

// EpisodePage is one page of a provider episode listing.
type EpisodePage struct {
	Episodes   []Episode `json:"episodes"`
	Page       int       `json:"page"`
	TotalCount int       `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// OutcomeStatus is the terminal classification of one episode's processing attempt.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailed  OutcomeStatus = "failed"
	StatusSkipped OutcomeStatus = "skipped"
)

// Outcome records the terminal result of processing one episode within a run.
// Once recorded it is immutable unless the run is reset.
type Outcome struct {
	EpisodeID    string        `json:"episode_id"`
	MediaRef     string        `json:"media_ref,omitempty"`
	Status       OutcomeStatus `json:"status"`
	Error        string        `json:"error,omitempty"`
	ArtworkBytes int           `json:"artwork_bytes,omitempty"` // size of the restored artwork, zero when none was moved
	Timestamp    time.Time     `json:"timestamp"`
}

// RunMetadata is the ledger's single live run record.
type RunMetadata struct {
	RunID       string     `json:"run_id"`
	PodcastID   string     `json:"podcast_id"`
	BatchSize   int        `json:"batch_size"`
	CurrentPage int        `json:"current_page"`
	Total       int        `json:"total"`
	Processed   int        `json:"processed"`
	Success     int        `json:"success"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
	StartedAt   time.Time  `json:"started_at"`
	LastActive  time.Time  `json:"last_active"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Complete    bool       `json:"complete"`
}

// UploadResult is the provider's response to an artwork upload.
type UploadResult struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message,omitempty"`
}

// PersistedEpisode is a database-backed cached episode with lifecycle timestamps.
type PersistedEpisode struct {
	Episode
	CachedAt  time.Time
	UpdatedAt time.Time
}

// Validate checks that the persisted episode carries the minimum cacheable identity.
func (p *PersistedEpisode) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("episode id is required")
	}
	if p.PodcastID == "" {
		return fmt.Errorf("podcast id is required")
	}
	if p.Title == "" {
		return fmt.Errorf("episode title is required")
	}
	return nil
}
