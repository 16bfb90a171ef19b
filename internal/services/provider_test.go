package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tu "github.com/desertthunder/podfix/internal/testing"
)

// newTestProvider builds a ProviderService against srv with a fast retry
// policy and an effectively unlimited rate limiter.
func newTestProvider(t *testing.T, srv *httptest.Server) *ProviderService {
	t.Helper()
	p := NewProviderService(ProviderOpts{
		BaseURL:   srv.URL,
		RateLimit: 10000,
		Retry:     RetryConfig{Attempts: 3, BaseDelay: time.Millisecond},
	})
	if err := p.Authenticate(context.Background(), map[string]string{"api_key": "test-key"}); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	return p
}

func TestProviderService(t *testing.T) {
	t.Run("Authenticate", func(t *testing.T) {
		t.Run("API Key", func(t *testing.T) {
			p := NewProviderService(ProviderOpts{})
			if err := p.Authenticate(context.Background(), map[string]string{"api_key": "abc"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if p.apiKey != "abc" {
				t.Errorf("expected stored api key, got %q", p.apiKey)
			}
		})

		t.Run("Client Credentials", func(t *testing.T) {
			p := NewProviderService(ProviderOpts{})
			err := p.Authenticate(context.Background(), map[string]string{
				"client_id":     "id",
				"client_secret": "secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if p.httpClient == http.DefaultClient {
				t.Error("expected oauth2 client to replace default client")
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			p := NewProviderService(ProviderOpts{})
			if err := p.Authenticate(context.Background(), map[string]string{}); err == nil {
				t.Error("expected error for empty credentials")
			}
		})
	})

	t.Run("ListEpisodes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/podcasts/pod1/episodes" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("expected bearer auth header, got %q", got)
			}
			if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "5" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}

			json.NewEncoder(w).Encode(providerEpisodePage{
				Episodes: []providerEpisode{
					{ID: "ep1", Title: "Pilot", MediaURL: "media-1", HasArtwork: true},
					{ID: "ep2", Title: "Second"},
				},
				Page:       2,
				Total:      12,
				TotalPages: 3,
			})
		}))
		defer server.Close()

		p := newTestProvider(t, server)
		page, err := p.ListEpisodes(context.Background(), "pod1", 5, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(page.Episodes) != 2 {
			t.Fatalf("expected 2 episodes, got %d", len(page.Episodes))
		}
		if page.Episodes[0].MediaRef != "media-1" {
			t.Errorf("expected media ref mapping, got %q", page.Episodes[0].MediaRef)
		}
		if page.Episodes[0].PodcastID != "pod1" {
			t.Errorf("expected podcast id stamped on episodes, got %q", page.Episodes[0].PodcastID)
		}
		if page.TotalCount != 12 || page.TotalPages != 3 {
			t.Errorf("expected totals 12/3, got %d/%d", page.TotalCount, page.TotalPages)
		}
	})

	t.Run("ListEpisodes Transport Failure", func(t *testing.T) {
		client := &http.Client{
			Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
		}

		p := NewProviderService(ProviderOpts{
			BaseURL:   "http://example.com",
			Client:    client,
			RateLimit: 10000,
			Retry:     RetryConfig{Attempts: 3, BaseDelay: time.Millisecond},
		})
		if err := p.Authenticate(context.Background(), map[string]string{"api_key": "test-key"}); err != nil {
			t.Fatalf("authenticate: %v", err)
		}

		_, err := p.ListEpisodes(context.Background(), "pod1", 10, 1)
		if err == nil {
			t.Fatal("expected error for failed request")
		}
		if !strings.Contains(err.Error(), "request failed") {
			t.Errorf("expected 'request failed' error, got %v", err)
		}
	})

	t.Run("ListEpisodes Retries Server Errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(providerEpisodePage{Page: 1, TotalPages: 1})
		}))
		defer server.Close()

		p := newTestProvider(t, server)
		if _, err := p.ListEpisodes(context.Background(), "pod1", 10, 1); err != nil {
			t.Fatalf("expected recovery on third attempt, got %v", err)
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 attempts, got %d", calls.Load())
		}
	})

	t.Run("ListEpisodes Exhausts Retry Budget", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		p := newTestProvider(t, server)
		if _, err := p.ListEpisodes(context.Background(), "pod1", 10, 1); err == nil {
			t.Fatal("expected error after exhausted retries")
		}
		if calls.Load() != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", calls.Load())
		}
	})

	t.Run("DownloadArtwork", func(t *testing.T) {
		t.Run("Follows Redirect To Binary", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/media/ref1/artwork", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/cdn/ref1.jpg", http.StatusFound)
			})
			mux.HandleFunc("/cdn/ref1.jpg", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg-bytes"))
			})
			server := httptest.NewServer(mux)
			defer server.Close()

			p := newTestProvider(t, server)
			data, err := p.DownloadArtwork(context.Background(), "ref1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(data) != "jpeg-bytes" {
				t.Errorf("expected redirected binary body, got %q", data)
			}
		})

		t.Run("Empty Body Is Not Retried", func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			p := newTestProvider(t, server)
			data, err := p.DownloadArtwork(context.Background(), "ref1")
			if err != nil {
				t.Fatalf("empty body should not be a transport error, got %v", err)
			}
			if len(data) != 0 {
				t.Errorf("expected zero bytes, got %d", len(data))
			}
			if calls.Load() != 1 {
				t.Errorf("empty body must not consume the retry budget, got %d calls", calls.Load())
			}
		})

		t.Run("Failed Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			p := NewProviderService(ProviderOpts{
				BaseURL:   "http://example.com",
				Client:    client,
				RateLimit: 10000,
				Retry:     RetryConfig{Attempts: 1, BaseDelay: time.Millisecond},
			})
			if err := p.Authenticate(context.Background(), map[string]string{"api_key": "test-key"}); err != nil {
				t.Fatalf("authenticate: %v", err)
			}

			_, err := p.DownloadArtwork(context.Background(), "ref1")
			if err == nil {
				t.Fatal("expected error for failed body read")
			}
			if !strings.Contains(err.Error(), "failed to read artwork body") {
				t.Errorf("expected body read error, got %v", err)
			}
		})

		t.Run("Missing Media Ref", func(t *testing.T) {
			p := NewProviderService(ProviderOpts{})
			if _, err := p.DownloadArtwork(context.Background(), ""); err == nil {
				t.Error("expected error for empty media ref")
			}
		})
	})

	t.Run("UploadArtwork", func(t *testing.T) {
		t.Run("Multipart Accepted", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/podcasts/pod1/episodes/ep1/artwork" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}

				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Fatalf("expected multipart body: %v", err)
				}
				file, header, err := r.FormFile("artwork")
				if err != nil {
					t.Fatalf("expected artwork form file: %v", err)
				}
				defer file.Close()
				if header.Filename != "ep1.jpg" {
					t.Errorf("unexpected filename %s", header.Filename)
				}

				json.NewEncoder(w).Encode(providerUploadResponse{Accepted: true, Message: "stored"})
			}))
			defer server.Close()

			p := newTestProvider(t, server)
			res, err := p.UploadArtwork(context.Background(), "pod1", "ep1", []byte("img"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !res.Accepted || res.Message != "stored" {
				t.Errorf("unexpected result %+v", res)
			}
		})

		t.Run("Provider Rejection Is Not An Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(providerUploadResponse{Accepted: false, Message: "unsupported format"})
			}))
			defer server.Close()

			p := newTestProvider(t, server)
			res, err := p.UploadArtwork(context.Background(), "pod1", "ep1", []byte("img"))
			if err != nil {
				t.Fatalf("expected no transport error, got %v", err)
			}
			if res.Accepted {
				t.Error("expected rejection to surface in the result")
			}
		})

		t.Run("Empty Artwork", func(t *testing.T) {
			p := NewProviderService(ProviderOpts{})
			if _, err := p.UploadArtwork(context.Background(), "pod1", "ep1", nil); err == nil {
				t.Error("expected error for empty artwork payload")
			}
		})
	})

	t.Run("TestConnectivity", func(t *testing.T) {
		t.Run("Healthy", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				fmt.Fprint(w, `{"status":"ok"}`)
			}))
			defer server.Close()

			p := newTestProvider(t, server)
			if err := p.TestConnectivity(context.Background()); err != nil {
				t.Fatalf("expected healthy probe, got %v", err)
			}
		})

		t.Run("Unreachable", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			p := newTestProvider(t, server)
			if err := p.TestConnectivity(context.Background()); err == nil {
				t.Error("expected error for unhealthy endpoint")
			}
		})
	})
}
