package tasks

import (
	"fmt"

	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase (0 when unknown)
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPage Phase = iota
	ProcessEpisode
	SkipEpisode
	BatchDone
	SearchScan
	CacheScan
)

func (p Phase) String() string {
	switch p {
	case FetchPage:
		return "fetch_page"
	case ProcessEpisode:
		return "process_episode"
	case SkipEpisode:
		return "skip_episode"
	case BatchDone:
		return "batch_done"
	case SearchScan:
		return "search_scan"
	case CacheScan:
		return "cache_scan"
	default:
		return ""
	}
}

func fetchPageUpdate(page, totalPages, batchSize int) ProgressUpdate {
	msg := fmt.Sprintf("Fetching page %d (batch size %d)...", page, batchSize)
	if totalPages > 0 {
		msg = fmt.Sprintf("Fetching page %d/%d (batch size %d)...", page, totalPages, batchSize)
	}
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    page,
		Total:   totalPages,
		Message: msg,
	}
}

func episodeStartUpdate(step, total int, episode models.Episode) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessEpisode,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, shared.Truncate(episode.Title, 60)),
		Data:    episode,
	}
}

func episodeDoneUpdate(step, total int, episode models.Episode, outcome models.Outcome) ProgressUpdate {
	var msg string
	switch outcome.Status {
	case models.StatusSuccess:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, shared.Truncate(episode.Title, 60))
		if outcome.ArtworkBytes > 0 {
			msg += fmt.Sprintf(" (%s)", shared.FormatBytes(outcome.ArtworkBytes))
		}
	case models.StatusFailed:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, shared.Truncate(episode.Title, 60), outcome.Error)
	default:
		msg = fmt.Sprintf("[%d/%d] - %s", step, total, shared.Truncate(episode.Title, 60))
	}
	return ProgressUpdate{
		Phase:   ProcessEpisode,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    outcome,
	}
}

func episodeSkippedUpdate(step, total int, episode models.Episode) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipEpisode,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] already processed: %s", step, total, shared.Truncate(episode.Title, 60)),
		Data:    episode,
	}
}

func batchDoneUpdate(page, totalPages int, batch BatchTotals) ProgressUpdate {
	return ProgressUpdate{
		Phase: BatchDone,
		Step:  page,
		Total: totalPages,
		Message: fmt.Sprintf("Page %d done: %d ok, %d failed, %d skipped",
			page, batch.Success, batch.Failed, batch.Skipped),
		Data: batch,
	}
}

func searchScanUpdate(page, totalPages, matches int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchScan,
		Step:    page,
		Total:   totalPages,
		Message: fmt.Sprintf("Scanning page %d... (%d matches so far)", page, matches),
	}
}

func cacheScanUpdate(page, totalPages, cached int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheScan,
		Step:    page,
		Total:   totalPages,
		Message: fmt.Sprintf("Caching page %d... (%d episodes cached)", page, cached),
	}
}
