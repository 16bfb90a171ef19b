// Podcast hosting provider implementation of [Service]
//
// Endpoint shapes follow the provider's v1 REST API: paginated episode
// listings, redirect-backed artwork downloads, and multipart artwork uploads.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.podcasthost.example/v1"

// providerEpisode is the provider's episode representation in listing responses.
type providerEpisode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	MediaURL    string `json:"media_url"`
	HasArtwork  bool   `json:"has_artwork"`
	PublishedAt string `json:"published_at"`
}

// providerEpisodePage is the provider's paginated listing envelope.
type providerEpisodePage struct {
	Episodes   []providerEpisode `json:"episodes"`
	Page       int               `json:"page"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// providerUploadResponse acknowledges an artwork upload.
type providerUploadResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// ProviderService implements [Service] against the hosting provider's HTTP API.
//
// Every operation goes through the same retry policy (transport errors and
// non-2xx statuses retried with exponential backoff) and a shared rate
// limiter pacing requests so sequential runs stay gentle on the API.
type ProviderService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
}

// ProviderOpts configures a ProviderService.
type ProviderOpts struct {
	BaseURL   string
	Client    *http.Client
	RateLimit float64 // requests per second, default 2
	Retry     RetryConfig
}

// NewProviderService creates a provider client. Credentials are supplied
// later via Authenticate.
func NewProviderService(opts ProviderOpts) *ProviderService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	return &ProviderService{
		baseURL:    opts.BaseURL,
		httpClient: opts.Client,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		retry:      opts.Retry.normalize(),
	}
}

// Name returns the provider name.
func (p *ProviderService) Name() string {
	return "Podcast Host"
}

// Authenticate configures request credentials.
//
// An "api_key" is attached to every request as a bearer token. Without one,
// a "client_id"/"client_secret" pair (plus optional "token_url") sets up an
// OAuth2 client-credentials token source; the [clientcredentials] client
// fetches and refreshes tokens transparently.
func (p *ProviderService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if apiKey, ok := credentials["api_key"]; ok && apiKey != "" {
		p.apiKey = apiKey
		return nil
	}

	clientID := credentials["client_id"]
	clientSecret := credentials["client_secret"]
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: api_key or client_id/client_secret required", shared.ErrMissingCredentials)
	}

	tokenURL := credentials["token_url"]
	if tokenURL == "" {
		tokenURL = p.baseURL + "/oauth/token"
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	p.httpClient = conf.Client(ctx)
	return nil
}

// doRequest performs one authenticated HTTP request and decodes a JSON response.
func (p *ProviderService) doRequest(ctx context.Context, method, endpoint string, body io.Reader, contentType string, result any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListEpisodes retrieves one page of a podcast's episode listing.
//
// Calls GET /podcasts/{id}/episodes?page={n}&limit={size}.
func (p *ProviderService) ListEpisodes(ctx context.Context, podcastID string, pageSize, page int) (*models.EpisodePage, error) {
	if podcastID == "" {
		return nil, fmt.Errorf("%w: podcast ID required", shared.ErrInvalidInput)
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}

	endpoint := fmt.Sprintf("/podcasts/%s/episodes?page=%d&limit=%d", podcastID, page, pageSize)

	var resp providerEpisodePage
	err := withRetry(ctx, p.retry, func() error {
		return p.doRequest(ctx, http.MethodGet, endpoint, nil, "", &resp)
	})
	if err != nil {
		return nil, err
	}

	episodes := make([]models.Episode, len(resp.Episodes))
	for i, pe := range resp.Episodes {
		episodes[i] = models.Episode{
			ID:          pe.ID,
			PodcastID:   podcastID,
			Title:       pe.Title,
			MediaRef:    pe.MediaURL,
			HasArtwork:  pe.HasArtwork,
			PublishedAt: pe.PublishedAt,
		}
	}

	return &models.EpisodePage{
		Episodes:   episodes,
		Page:       resp.Page,
		TotalCount: resp.Total,
		TotalPages: resp.TotalPages,
	}, nil
}

// DownloadArtwork fetches the artwork embedded in an episode's source media.
//
// Calls GET /media/{ref}/artwork. The provider answers with a redirect to
// the binary location, which the HTTP client follows. An empty body is a
// valid response meaning "no embedded art" and is returned as zero bytes
// without consuming the retry budget.
func (p *ProviderService) DownloadArtwork(ctx context.Context, mediaRef string) ([]byte, error) {
	if mediaRef == "" {
		return nil, shared.ErrNoMediaReference
	}

	var artwork []byte
	err := withRetry(ctx, p.retry, func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		endpoint := fmt.Sprintf("/media/%s/artwork", mediaRef)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read artwork body: %w", err)
		}

		artwork = body
		return nil
	})
	if err != nil {
		return nil, err
	}

	return artwork, nil
}

// UploadArtwork submits replacement artwork for an episode as multipart form data.
//
// Calls POST /podcasts/{pid}/episodes/{eid}/artwork with the image bytes in
// an "artwork" form file.
func (p *ProviderService) UploadArtwork(ctx context.Context, podcastID, episodeID string, artwork []byte) (*models.UploadResult, error) {
	if podcastID == "" || episodeID == "" {
		return nil, fmt.Errorf("%w: podcast and episode IDs required", shared.ErrInvalidInput)
	}
	if len(artwork) == 0 {
		return nil, shared.ErrNoArtworkData
	}

	endpoint := fmt.Sprintf("/podcasts/%s/episodes/%s/artwork", podcastID, episodeID)

	var resp providerUploadResponse
	err := withRetry(ctx, p.retry, func() error {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("artwork", fmt.Sprintf("%s.jpg", episodeID))
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(artwork); err != nil {
			return fmt.Errorf("failed to write form file: %w", err)
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("failed to finalize form: %w", err)
		}

		return p.doRequest(ctx, http.MethodPost, endpoint, &buf, writer.FormDataContentType(), &resp)
	})
	if err != nil {
		return nil, err
	}

	return &models.UploadResult{Accepted: resp.Accepted, Message: resp.Message}, nil
}

// TestConnectivity probes GET /health.
func (p *ProviderService) TestConnectivity(ctx context.Context) error {
	err := withRetry(ctx, p.retry, func() error {
		return p.doRequest(ctx, http.MethodGet, "/health", nil, "", nil)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}
