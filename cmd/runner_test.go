package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/shared"
	tu "github.com/desertthunder/podfix/internal/testing"
	"github.com/urfave/cli/v3"
)

// testConfig returns a config whose state files live under a temp dir.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Credentials.APIKey = "test-key"
	config.Database.Path = filepath.Join(dir, "podfix.db")
	config.Ledger.Path = filepath.Join(dir, "progress.json")
	return config
}

func runApp(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:     "podfix",
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"podfix"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			svc := &tu.MockService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Service:    svc,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.service != svc {
				t.Error("expected service to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(output.String(), `{"key":"value"}`) {
				t.Errorf("expected compact JSON, got %s", output.String())
			}
		})

		t.Run("returns error when writer fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})
}

func TestRunCommand(t *testing.T) {
	episodes := []models.Episode{
		{ID: "ep1", PodcastID: "pod1", Title: "One", MediaRef: "m1"},
		{ID: "ep2", PodcastID: "pod1", Title: "Two", MediaRef: "m2"},
	}
	page := &models.EpisodePage{Episodes: episodes, Page: 1, TotalCount: 2, TotalPages: 1}

	t.Run("Completes And Persists Ledger", func(t *testing.T) {
		config := testConfig(t)
		output := &bytes.Buffer{}
		svc := &tu.MockService{Page: page}
		runner := NewRunner(RunnerOpts{Config: config, Service: svc, Output: output})

		if err := runApp(t, runner, "run", "--podcast", "pod1", "--yes"); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if !strings.Contains(output.String(), "Run Complete!") {
			t.Errorf("expected completion banner, got: %s", output.String())
		}
		tu.AssertFileExists(t, config.Ledger.Path)

		if svc.UploadCount != 2 {
			t.Errorf("expected 2 uploads, got %d", svc.UploadCount)
		}
	})

	t.Run("Dry Run Never Uploads", func(t *testing.T) {
		config := testConfig(t)
		svc := &tu.MockService{Page: page}
		runner := NewRunner(RunnerOpts{Config: config, Service: svc, Output: &bytes.Buffer{}})

		if err := runApp(t, runner, "run", "--podcast", "pod1", "--yes", "--dry-run"); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		if svc.UploadCount != 0 {
			t.Errorf("dry run must not upload, got %d calls", svc.UploadCount)
		}
	})

	t.Run("Writes Failure Report", func(t *testing.T) {
		config := testConfig(t)
		svc := &tu.MockService{
			Page:   page,
			Upload: &models.UploadResult{Accepted: false, Message: "image too small"},
		}
		runner := NewRunner(RunnerOpts{Config: config, Service: svc, Output: &bytes.Buffer{}})

		reportPath := filepath.Join(t.TempDir(), "failures.csv")
		if err := runApp(t, runner, "run", "--podcast", "pod1", "--yes", "--report", reportPath); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		contents := tu.MustReadFile(t, reportPath)
		if !strings.Contains(contents, "image too small") {
			t.Errorf("expected failure reason in report, got: %s", contents)
		}
	})

	t.Run("Unreachable Provider Fails Fast", func(t *testing.T) {
		config := testConfig(t)
		svc := &tu.MockService{ConnectErr: os.ErrDeadlineExceeded}
		runner := NewRunner(RunnerOpts{Config: config, Service: svc, Output: &bytes.Buffer{}})

		if err := runApp(t, runner, "run", "--podcast", "pod1", "--yes"); err == nil {
			t.Error("expected connectivity error")
		}
	})
}

func TestResumeCommand(t *testing.T) {
	t.Run("Nothing To Resume", func(t *testing.T) {
		config := testConfig(t)
		runner := NewRunner(RunnerOpts{Config: config, Service: &tu.MockService{}, Output: &bytes.Buffer{}})

		if err := runApp(t, runner, "resume", "--yes"); err == nil {
			t.Error("expected error when no run is recorded")
		}
	})
}

func TestResetCommand(t *testing.T) {
	t.Run("Removes Ledger With Yes Flag", func(t *testing.T) {
		config := testConfig(t)
		if err := os.WriteFile(config.Ledger.Path, []byte(`{"meta":{},"outcomes":{}}`), 0644); err != nil {
			t.Fatal(err)
		}

		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})
		if err := runApp(t, runner, "reset", "--yes"); err != nil {
			t.Fatalf("reset failed: %v", err)
		}

		if _, err := os.Stat(config.Ledger.Path); !os.IsNotExist(err) {
			t.Error("expected ledger file removed")
		}
	})

	t.Run("Prompt Declined Keeps Ledger", func(t *testing.T) {
		config := testConfig(t)
		if err := os.WriteFile(config.Ledger.Path, []byte(`{"meta":{},"outcomes":{}}`), 0644); err != nil {
			t.Fatal(err)
		}

		runner := NewRunner(RunnerOpts{
			Config: config,
			Output: &bytes.Buffer{},
			Input:  strings.NewReader("n\n"),
		})
		if err := runApp(t, runner, "reset"); err != nil {
			t.Fatalf("reset failed: %v", err)
		}

		tu.AssertFileExists(t, config.Ledger.Path)
	})
}

func TestStatusCommand(t *testing.T) {
	t.Run("No Ledger", func(t *testing.T) {
		config := testConfig(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := runApp(t, runner, "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}

		if !strings.Contains(output.String(), "No recorded progress") {
			t.Errorf("expected empty-state message, got: %s", output.String())
		}
	})

	t.Run("After A Run", func(t *testing.T) {
		config := testConfig(t)
		page := &models.EpisodePage{
			Episodes:   []models.Episode{{ID: "ep1", PodcastID: "pod1", Title: "One", MediaRef: "m1"}},
			Page:       1,
			TotalCount: 1,
			TotalPages: 1,
		}
		runner := NewRunner(RunnerOpts{Config: config, Service: &tu.MockService{Page: page}, Output: &bytes.Buffer{}})
		if err := runApp(t, runner, "run", "--podcast", "pod1", "--yes"); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		output := &bytes.Buffer{}
		statusRunner := NewRunner(RunnerOpts{Config: config, Output: output})
		if err := runApp(t, statusRunner, "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}

		if !strings.Contains(output.String(), "Status: complete") {
			t.Errorf("expected completed status, got: %s", output.String())
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("Setup Config Creates Template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		if err := runApp(t, runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}

		contents := tu.MustReadFile(t, path)
		if !strings.Contains(contents, "[credentials]") {
			t.Errorf("expected TOML template, got: %s", contents)
		}
	})

	t.Run("Setup Config Refuses Overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("# existing"), 0644); err != nil {
			t.Fatal(err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		if err := runApp(t, runner, "setup", "config", "--config", path); err == nil {
			t.Error("expected error for existing config file")
		}
	})
}

func TestCacheCommand(t *testing.T) {
	t.Run("Caches Podcast Episodes", func(t *testing.T) {
		config := testConfig(t)
		page := &models.EpisodePage{
			Episodes: []models.Episode{
				{ID: "ep1", PodcastID: "pod1", Title: "One", MediaRef: "m1"},
				{ID: "ep2", PodcastID: "pod1", Title: "Two", MediaRef: "m2"},
			},
			Page:       1,
			TotalCount: 2,
			TotalPages: 1,
		}
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Service: &tu.MockService{Page: page}, Output: output})

		if err := runApp(t, runner, "cache", "podcast", "--id", "pod1"); err != nil {
			t.Fatalf("cache failed: %v", err)
		}

		if !strings.Contains(output.String(), "Cached 2 episodes") {
			t.Errorf("expected cache summary, got: %s", output.String())
		}
		tu.AssertFileExists(t, config.Database.Path)
	})
}
