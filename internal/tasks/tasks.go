// package tasks implements the resumable artwork restore pipeline.
//
// The core abstraction is RestoreEngine, which drives the pagination loop:
// fetch a page, skip episodes the ledger already settled, process the rest
// strictly one at a time, persist each outcome, and consult the operator
// control callback between batches. Progress updates flow to the CLI/UI
// layers via non-blocking channels.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/podfix/internal/ledger"
	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/services"
	"github.com/desertthunder/podfix/internal/shared"
)

// RestoreOpts configures one pipeline run.
type RestoreOpts struct {
	PodcastID string
	BatchSize int  // page size for listing calls
	StartPage int  // defaults to the ledger's resume page, or 1
	Simulate  bool // download and validate but never upload
	Force     bool // re-process episodes the ledger already settled
}

// RestoreRunResult aggregates one run's activity for the final summary.
type RestoreRunResult struct {
	Processed int // episodes handled this run, including ledger skips
	Success   int
	Failed    int
	Skipped   int
	Pages     int  // pages fetched and processed this run
	FinalPage int  // last page processed
	Stopped   bool // operator requested stop before the collection ended
	Complete  bool // every episode in the collection has an outcome
	Meta      models.RunMetadata
}

// EpisodeCacher persists episode metadata encountered during runs.
// Caching failures are ignored so persistence never disrupts a run.
type EpisodeCacher interface {
	CacheEpisode(episode models.Episode) error
}

// RestoreEngine orchestrates artwork restoration against a provider service
// with a durable progress ledger.
type RestoreEngine struct {
	service services.Service
	ledger  *ledger.Ledger
	control ControlFunc
	cache   EpisodeCacher
}

// NewRestoreEngine creates a RestoreEngine. control may be nil, in which
// case the driver continues unattended (AutoContinue semantics); cache may
// be nil to disable episode caching.
func NewRestoreEngine(svc services.Service, led *ledger.Ledger, control ControlFunc, cache EpisodeCacher) *RestoreEngine {
	return &RestoreEngine{
		service: svc,
		ledger:  led,
		control: control,
		cache:   cache,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *RestoreEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// consult invokes the control callback, defaulting to continue-as-is when
// no callback is configured.
func (e *RestoreEngine) consult(point ControlPoint) Decision {
	if e.control == nil {
		return AutoContinue(point)
	}
	return e.control(point)
}

// cacheEpisodes stores page episodes in the local cache, ignoring failures.
func (e *RestoreEngine) cacheEpisodes(episodes []models.Episode) {
	if e.cache == nil {
		return
	}
	for _, ep := range episodes {
		_ = e.cache.CacheEpisode(ep)
	}
}

// Run executes the batch pipeline until the collection is exhausted, the
// operator stops it, or ctx is cancelled.
//
// The ledger must be initialized before calling Run. Only fatal errors are
// returned; per-episode failures are ledger outcomes, and page-level fetch
// failures defer to the operator control (continuing past the page by
// default).
func (e *RestoreEngine) Run(ctx context.Context, opts RestoreOpts, progress chan<- ProgressUpdate) (*RestoreRunResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: provider service not initialized", shared.ErrServiceUnavailable)
	}
	if e.ledger == nil {
		return nil, fmt.Errorf("%w: progress ledger not initialized", shared.ErrInvalidConfig)
	}
	if opts.PodcastID == "" {
		return nil, fmt.Errorf("%w: podcast ID required", shared.ErrMissingArgument)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	page := opts.StartPage
	if page <= 0 {
		page = 1
		if info, ok := e.ledger.Resume(); ok && info.Page > 0 {
			page = info.Page
		}
	}

	result := &RestoreRunResult{FinalPage: page}
	totalPages := 0
	preGated := false

	for {
		if err := ctx.Err(); err != nil {
			result.Meta = e.ledger.Meta()
			return result, fmt.Errorf("run cancelled: %w", err)
		}

		e.sendProgress(progress, fetchPageUpdate(page, totalPages, batchSize))

		epPage, err := e.service.ListEpisodes(ctx, opts.PodcastID, batchSize, page)
		if err != nil {
			if ctx.Err() != nil {
				result.Meta = e.ledger.Meta()
				return result, fmt.Errorf("run cancelled: %w", ctx.Err())
			}

			// A page listing that fails after retries is reported to the
			// operator, who chooses between aborting and moving on. With
			// no bounds known yet there is no next page to move on to.
			decision := e.consult(ControlPoint{
				Mode:      ControlPageError,
				Page:      page,
				BatchSize: batchSize,
				Run:       e.ledger.Meta(),
				Err:       err,
			})
			if !decision.Continue {
				result.Stopped = true
				break
			}
			if totalPages == 0 {
				result.Meta = e.ledger.Meta()
				return result, fmt.Errorf("failed to fetch first page: %w", err)
			}
			if page >= totalPages {
				break
			}
			page++
			continue
		}

		if len(epPage.Episodes) == 0 {
			// An empty page before anything was processed means the
			// collection itself is empty. Record the reported total so the
			// run settles as complete instead of dangling at zero progress.
			if !preGated {
				e.ledger.UpdateTotal(epPage.TotalCount)
			}
			break
		}

		if epPage.TotalPages > 0 {
			totalPages = epPage.TotalPages
		}

		if !preGated {
			preGated = true
			e.ledger.UpdateTotal(epPage.TotalCount)

			decision := e.consult(ControlPoint{
				Mode:      ControlPreProcess,
				Page:      page,
				BatchSize: batchSize,
				Run:       e.ledger.Meta(),
			})
			if !decision.Continue {
				result.Stopped = true
				break
			}
			if decision.BatchSize > 0 && decision.BatchSize != batchSize {
				// The stale page is discarded and re-fetched at the new
				// size before anything is processed.
				batchSize = decision.BatchSize
				e.ledger.UpdateBatchSize(batchSize)
				totalPages = 0
				continue
			}
		}

		e.cacheEpisodes(epPage.Episodes)

		batch, err := e.processBatch(ctx, epPage.Episodes, opts, progress)
		result.Processed += batch.Processed
		result.Success += batch.Success
		result.Failed += batch.Failed
		result.Skipped += batch.Skipped
		result.Pages++
		result.FinalPage = page
		if err != nil {
			result.Meta = e.ledger.Meta()
			return result, err
		}

		e.ledger.UpdateCurrentPage(page)
		if err := e.ledger.Persist(); err != nil {
			result.Meta = e.ledger.Meta()
			return result, err
		}

		e.sendProgress(progress, batchDoneUpdate(page, totalPages, batch))

		decision := e.consult(ControlPoint{
			Mode:      ControlBatchComplete,
			Page:      page,
			BatchSize: batchSize,
			Batch:     batch,
			Run:       e.ledger.Meta(),
		})
		if !decision.Continue {
			result.Stopped = true
			break
		}
		if decision.BatchSize > 0 {
			// Applies to the next fetch only, never retroactively.
			batchSize = decision.BatchSize
			e.ledger.UpdateBatchSize(batchSize)
		}

		if totalPages > 0 && page >= totalPages {
			break
		}
		page++
	}

	meta := e.ledger.Meta()
	if !result.Stopped && meta.Processed >= meta.Total {
		if err := e.ledger.MarkComplete(); err != nil {
			return result, err
		}
		result.Complete = true
	}

	result.Meta = e.ledger.Meta()
	return result, nil
}

// processBatch handles one page of episodes sequentially, recording every
// terminal outcome in the ledger before moving to the next episode.
func (e *RestoreEngine) processBatch(ctx context.Context, episodes []models.Episode, opts RestoreOpts, progress chan<- ProgressUpdate) (BatchTotals, error) {
	var batch BatchTotals

	for i, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return batch, fmt.Errorf("run cancelled: %w", err)
		}

		// The idempotent-resume guarantee: episodes the ledger already
		// settled are skipped without touching the network. Force re-runs
		// them; their existing entry is overwritten, not double-counted.
		if !opts.Force && e.ledger.IsProcessed(episode.ID) {
			batch.Processed++
			batch.Skipped++
			e.sendProgress(progress, episodeSkippedUpdate(i+1, len(episodes), episode))
			continue
		}

		e.sendProgress(progress, episodeStartUpdate(i+1, len(episodes), episode))

		outcome := e.processEpisode(ctx, episode, opts.Simulate)

		var procErr error
		if outcome.Error != "" {
			procErr = fmt.Errorf("%s", outcome.Error)
		}
		if err := e.ledger.RecordOutcome(episode.ID, outcome.MediaRef, outcome.Status, procErr); err != nil {
			return batch, err
		}

		batch.Processed++
		switch outcome.Status {
		case models.StatusSuccess:
			batch.Success++
		case models.StatusFailed:
			batch.Failed++
		case models.StatusSkipped:
			batch.Skipped++
		}

		e.sendProgress(progress, episodeDoneUpdate(i+1, len(episodes), episode, outcome))
	}

	return batch, nil
}

// FindEpisodes scans the podcast's full listing for episodes whose titles
// contain query (case-insensitive). Used by the targeted search mode.
func (e *RestoreEngine) FindEpisodes(ctx context.Context, podcastID, query string, progress chan<- ProgressUpdate) ([]models.Episode, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: provider service not initialized", shared.ErrServiceUnavailable)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, fmt.Errorf("%w: search query required", shared.ErrMissingArgument)
	}

	const scanPageSize = 50
	var matches []models.Episode

	for page := 1; ; page++ {
		epPage, err := e.service.ListEpisodes(ctx, podcastID, scanPageSize, page)
		if err != nil {
			return matches, err
		}
		if len(epPage.Episodes) == 0 {
			break
		}

		e.sendProgress(progress, searchScanUpdate(page, epPage.TotalPages, len(matches)))
		e.cacheEpisodes(epPage.Episodes)

		for _, episode := range epPage.Episodes {
			if strings.Contains(strings.ToLower(episode.Title), needle) {
				matches = append(matches, episode)
			}
		}

		if epPage.TotalPages > 0 && page >= epPage.TotalPages {
			break
		}
	}

	return matches, nil
}

// ProcessOne runs a single confirmed episode through the processor and
// records its outcome in the ledger. Used by the search-and-confirm mode.
func (e *RestoreEngine) ProcessOne(ctx context.Context, episode models.Episode, simulate bool) (models.Outcome, error) {
	if e.service == nil {
		return models.Outcome{}, fmt.Errorf("%w: provider service not initialized", shared.ErrServiceUnavailable)
	}

	outcome := e.processEpisode(ctx, episode, simulate)

	if e.ledger != nil {
		var procErr error
		if outcome.Error != "" {
			procErr = fmt.Errorf("%s", outcome.Error)
		}
		if err := e.ledger.RecordOutcome(episode.ID, outcome.MediaRef, outcome.Status, procErr); err != nil {
			return outcome, err
		}
	}

	return outcome, nil
}

// CacheAll pages through the podcast's entire listing and persists every
// episode to the local cache. Returns the number of episodes cached.
func (e *RestoreEngine) CacheAll(ctx context.Context, podcastID string, progress chan<- ProgressUpdate) (int, error) {
	if e.service == nil {
		return 0, fmt.Errorf("%w: provider service not initialized", shared.ErrServiceUnavailable)
	}
	if e.cache == nil {
		return 0, fmt.Errorf("%w: episode cache not configured", shared.ErrInvalidConfig)
	}

	const scanPageSize = 50
	cached := 0

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return cached, err
		}

		epPage, err := e.service.ListEpisodes(ctx, podcastID, scanPageSize, page)
		if err != nil {
			return cached, err
		}
		if len(epPage.Episodes) == 0 {
			break
		}

		for _, episode := range epPage.Episodes {
			if err := e.cache.CacheEpisode(episode); err == nil {
				cached++
			}
		}

		e.sendProgress(progress, cacheScanUpdate(page, epPage.TotalPages, cached))

		if epPage.TotalPages > 0 && page >= epPage.TotalPages {
			break
		}
	}

	return cached, nil
}
