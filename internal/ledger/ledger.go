// package ledger implements the durable progress record that makes runs
// resumable and episode processing at-most-once.
//
// The ledger is a single JSON document on disk: run metadata (counters,
// pagination cursor, completion state) plus an outcome map keyed by episode
// ID. Every mutation that matters is persisted as a complete snapshot via an
// atomic temp-file rename, so a crash never leaves a half-written ledger and
// loses at most the one in-flight episode.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/shared"
)

// document is the on-disk shape of the ledger. New fields must be optional
// so older ledger files keep loading.
type document struct {
	Meta     models.RunMetadata        `json:"meta"`
	Outcomes map[string]models.Outcome `json:"outcomes"`
}

// ResumeInfo summarizes a resumable run for display and driver start-up.
type ResumeInfo struct {
	PodcastID string
	Page      int
	BatchSize int
	Processed int
	Total     int
}

// Ledger is the sole source of truth for run progress. Not safe for
// concurrent use; the pipeline owns it from exactly one goroutine.
type Ledger struct {
	path     string
	loaded   bool
	meta     models.RunMetadata
	outcomes map[string]models.Outcome
}

// New creates a Ledger bound to the given file path. Nothing is read or
// written until Load or Initialize.
func New(path string) *Ledger {
	if path == "" {
		path = "podfix_progress.json"
	}
	return &Ledger{path: path}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Load reads the ledger from disk. Returns false without error when no
// ledger file exists. A present but unparsable file is a fatal configuration
// error wrapping [shared.ErrLedgerCorrupt].
func (l *Ledger) Load() (bool, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read ledger file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("%w: %s: %v", shared.ErrLedgerCorrupt, l.path, err)
	}

	l.meta = doc.Meta
	l.outcomes = doc.Outcomes
	if l.outcomes == nil {
		l.outcomes = make(map[string]models.Outcome)
	}
	l.loaded = true
	return true, nil
}

// Initialize prepares the ledger for a run against podcastID.
//
// When a valid ledger is already loaded for the same podcast its counters,
// outcome map, and current page survive untouched (this merge is what makes
// automatic resume safe); only the batch size is refreshed. Otherwise a
// fresh run record starts at page 1 with zeroed counters.
func (l *Ledger) Initialize(podcastID string, batchSize int) {
	if l.loaded && l.meta.PodcastID == podcastID {
		l.meta.BatchSize = batchSize
		l.meta.LastActive = time.Now().UTC()
		return
	}

	now := time.Now().UTC()
	l.meta = models.RunMetadata{
		RunID:       shared.GenerateID(),
		PodcastID:   podcastID,
		BatchSize:   batchSize,
		CurrentPage: 1,
		StartedAt:   now,
		LastActive:  now,
	}
	l.outcomes = make(map[string]models.Outcome)
	l.loaded = true
}

// RecordOutcome upserts the outcome for an episode and synchronously
// persists the full ledger before returning.
//
// An episode recorded twice (crash mid-batch before the driver's own de-dup
// check) has its outcome overwritten, not double-counted: the counters only
// move when the episode had no prior entry.
func (l *Ledger) RecordOutcome(episodeID, mediaRef string, status models.OutcomeStatus, procErr error) error {
	if l.outcomes == nil {
		l.outcomes = make(map[string]models.Outcome)
	}

	outcome := models.Outcome{
		EpisodeID: episodeID,
		MediaRef:  mediaRef,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if procErr != nil {
		outcome.Error = procErr.Error()
	}

	_, seen := l.outcomes[episodeID]
	l.outcomes[episodeID] = outcome

	if !seen {
		l.meta.Processed++
		switch status {
		case models.StatusSuccess:
			l.meta.Success++
		case models.StatusFailed:
			l.meta.Failed++
		case models.StatusSkipped:
			l.meta.Skipped++
		}
	}
	l.meta.LastActive = outcome.Timestamp

	return l.persist()
}

// IsProcessed reports whether the episode already has a terminal outcome.
func (l *Ledger) IsProcessed(episodeID string) bool {
	_, ok := l.outcomes[episodeID]
	return ok
}

// StatusOf returns the recorded outcome for an episode, if any.
func (l *Ledger) StatusOf(episodeID string) (models.Outcome, bool) {
	outcome, ok := l.outcomes[episodeID]
	return outcome, ok
}

// Outcomes returns a copy of all recorded outcomes.
func (l *Ledger) Outcomes() []models.Outcome {
	out := make([]models.Outcome, 0, len(l.outcomes))
	for _, o := range l.outcomes {
		out = append(out, o)
	}
	return out
}

// Meta returns a copy of the current run metadata.
func (l *Ledger) Meta() models.RunMetadata { return l.meta }

// UpdateTotal records the collection's total episode count as last reported
// by the provider. In-memory only; the next RecordOutcome persists it.
func (l *Ledger) UpdateTotal(n int) { l.meta.Total = n }

// UpdateCurrentPage advances the pagination cursor. The page never moves
// backwards within a run; resuming at an earlier page would only re-skip.
func (l *Ledger) UpdateCurrentPage(p int) {
	if p > l.meta.CurrentPage {
		l.meta.CurrentPage = p
	}
}

// UpdateBatchSize records an operator-requested batch size change.
func (l *Ledger) UpdateBatchSize(n int) {
	if n > 0 {
		l.meta.BatchSize = n
	}
}

// MarkComplete sets the completion flag and timestamp and persists.
func (l *Ledger) MarkComplete() error {
	now := time.Now().UTC()
	l.meta.Complete = true
	l.meta.CompletedAt = &now
	l.meta.LastActive = now
	return l.persist()
}

// Persist writes the current snapshot to disk. RecordOutcome and
// MarkComplete call it implicitly; the driver calls it directly to flush
// page-cursor updates on pages where every episode was already processed.
func (l *Ledger) Persist() error { return l.persist() }

// Reset deletes the durable ledger; in-memory state becomes absent. Not an
// error when no ledger file existed.
func (l *Ledger) Reset() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove ledger file: %w", err)
	}
	l.meta = models.RunMetadata{}
	l.outcomes = nil
	l.loaded = false
	return nil
}

// Resume returns resume information, or false when no ledger is loaded or
// the recorded run already completed.
func (l *Ledger) Resume() (ResumeInfo, bool) {
	if !l.loaded || l.meta.Complete || l.meta.PodcastID == "" {
		return ResumeInfo{}, false
	}
	return ResumeInfo{
		PodcastID: l.meta.PodcastID,
		Page:      l.meta.CurrentPage,
		BatchSize: l.meta.BatchSize,
		Processed: l.meta.Processed,
		Total:     l.meta.Total,
	}, true
}

// persist writes a complete snapshot atomically: marshal, write to a temp
// file in the same directory, rename over the target. A failed write is
// fatal since progress durability is the ledger's entire purpose.
func (l *Ledger) persist() error {
	doc := document{Meta: l.meta, Outcomes: l.outcomes}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", shared.ErrLedgerPersist, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", shared.ErrLedgerPersist, err)
	}

	tmp, err := os.CreateTemp(dir, ".podfix-ledger-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", shared.ErrLedgerPersist, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write temp file: %v", shared.ErrLedgerPersist, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: chmod temp file: %v", shared.ErrLedgerPersist, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", shared.ErrLedgerPersist, err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename: %v", shared.ErrLedgerPersist, err)
	}
	return nil
}
