// package services defines interface Service for interacting with podcast hosting APIs
package services

import (
	"context"

	"github.com/desertthunder/podfix/internal/models"
)

// Service defines the interface for podcast hosting providers that can list
// episodes, expose embedded source artwork, and accept replacement artwork.
type Service interface {
	// Authenticate configures credentials for subsequent requests.
	// Accepts either an "api_key" or an OAuth2 "client_id"/"client_secret" pair.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// ListEpisodes retrieves one page of a podcast's episode listing.
	ListEpisodes(ctx context.Context, podcastID string, pageSize, page int) (*models.EpisodePage, error)

	// DownloadArtwork fetches the artwork embedded in an episode's source
	// media by its opaque media reference. A zero-length result is a valid
	// response meaning the media carries no embedded art.
	DownloadArtwork(ctx context.Context, mediaRef string) ([]byte, error)

	// UploadArtwork submits replacement artwork for an episode.
	UploadArtwork(ctx context.Context, podcastID, episodeID string, artwork []byte) (*models.UploadResult, error)

	// TestConnectivity probes the provider endpoint, returning an error when unreachable.
	TestConnectivity(ctx context.Context) error

	// Name returns the provider name for display.
	Name() string
}
