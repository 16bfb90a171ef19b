package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/shared"
)

// processEpisode runs one episode through the download→upload state machine
// and returns its terminal classification. Transport and business failures
// never escape as errors; they come back as a failed outcome with a reason.
//
// The provider's own has_artwork flag is deliberately ignored: the flag is
// known to report artwork that is not actually there, which is the whole
// reason this tool exists.
func (e *RestoreEngine) processEpisode(ctx context.Context, episode models.Episode, simulate bool) models.Outcome {
	outcome := models.Outcome{
		EpisodeID: episode.ID,
		MediaRef:  episode.MediaRef,
	}

	if episode.MediaRef == "" {
		outcome.Status = models.StatusFailed
		outcome.Error = shared.ErrNoMediaReference.Error()
		return outcome
	}

	artwork, err := e.service.DownloadArtwork(ctx, episode.MediaRef)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Error = fmt.Sprintf("artwork download failed: %v", err)
		return outcome
	}

	if len(artwork) == 0 {
		outcome.Status = models.StatusFailed
		outcome.Error = shared.ErrNoArtworkData.Error()
		return outcome
	}

	outcome.ArtworkBytes = len(artwork)

	// Simulate mode stops after the read side: the download proved the
	// artwork exists, no mutation is issued.
	if simulate {
		outcome.Status = models.StatusSuccess
		return outcome
	}

	result, err := e.service.UploadArtwork(ctx, episode.PodcastID, episode.ID, artwork)
	if err != nil {
		outcome.Status = models.StatusFailed
		outcome.Error = fmt.Sprintf("artwork upload failed: %v", err)
		return outcome
	}

	if !result.Accepted {
		outcome.Status = models.StatusFailed
		if result.Message != "" {
			outcome.Error = result.Message
		} else {
			outcome.Error = "upload failed"
		}
		return outcome
	}

	outcome.Status = models.StatusSuccess
	return outcome
}
