// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/podfix/internal/models"
)

// MockService is a configurable test double for [services.Service]
type MockService struct {
	Page          *models.EpisodePage
	ListErr       error
	Artwork       []byte
	DownloadErr   error
	Upload        *models.UploadResult
	UploadErr     error
	ConnectErr    error
	DownloadCount int
	UploadCount   int
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockService) ListEpisodes(ctx context.Context, podcastID string, pageSize, page int) (*models.EpisodePage, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if m.Page != nil {
		return m.Page, nil
	}
	return &models.EpisodePage{Page: page, TotalPages: 1}, nil
}

func (m *MockService) DownloadArtwork(ctx context.Context, mediaRef string) ([]byte, error) {
	m.DownloadCount++
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	if m.Artwork != nil {
		return m.Artwork, nil
	}
	return []byte("artwork"), nil
}

func (m *MockService) UploadArtwork(ctx context.Context, podcastID, episodeID string, artwork []byte) (*models.UploadResult, error) {
	m.UploadCount++
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	if m.Upload != nil {
		return m.Upload, nil
	}
	return &models.UploadResult{Accepted: true}, nil
}

func (m *MockService) TestConnectivity(ctx context.Context) error { return m.ConnectErr }

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
