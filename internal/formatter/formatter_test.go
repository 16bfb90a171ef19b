package formatter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/podfix/internal/models"
	th "github.com/desertthunder/podfix/internal/testing"
)

func sampleReport() *Report {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := models.RunMetadata{
		RunID:       "run-1",
		PodcastID:   "pod1",
		BatchSize:   10,
		CurrentPage: 2,
		Total:       3,
		Processed:   3,
		Success:     1,
		Failed:      1,
		Skipped:     1,
	}
	outcomes := []models.Outcome{
		{EpisodeID: "ep3", MediaRef: "m3", Status: models.StatusSkipped, Timestamp: base.Add(2 * time.Minute)},
		{EpisodeID: "ep1", MediaRef: "m1", Status: models.StatusSuccess, Timestamp: base},
		{EpisodeID: "ep2", MediaRef: "m2", Status: models.StatusFailed, Error: "no artwork data received", Timestamp: base.Add(time.Minute)},
	}
	return NewReport(run, outcomes)
}

func TestExporters(t *testing.T) {
	t.Run("NewReport Orders By Timestamp", func(t *testing.T) {
		report := sampleReport()

		if report.Outcomes[0].EpisodeID != "ep1" || report.Outcomes[2].EpisodeID != "ep3" {
			t.Errorf("expected chronological ordering, got %s first and %s last",
				report.Outcomes[0].EpisodeID, report.Outcomes[2].EpisodeID)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleReport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "EpisodeID,Status,MediaRef,Error,Timestamp") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "ep2,failed,m2,no artwork data received") {
			t.Errorf("CSV missing failure record, got: %s", output)
		}
		if !strings.Contains(output, "2026-03-01T12:00:00Z") {
			t.Errorf("CSV missing RFC3339 timestamp, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleReport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded Report
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("report JSON did not round-trip: %v", err)
		}
		if decoded.Run.PodcastID != "pod1" || len(decoded.Outcomes) != 3 {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleReport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Progress: 3/3 processed (page 2)") {
			t.Errorf("text summary missing progress line, got: %s", output)
		}
		if !strings.Contains(output, "Succeeded: 1  Failed: 1  Skipped: 1") {
			t.Errorf("text summary missing counters, got: %s", output)
		}
		if !strings.Contains(output, "ep2: no artwork data received") {
			t.Errorf("text summary missing failure detail, got: %s", output)
		}
	})

	t.Run("FailedOnly", func(t *testing.T) {
		failed := sampleReport().FailedOnly()

		if len(failed.Outcomes) != 1 || failed.Outcomes[0].EpisodeID != "ep2" {
			t.Errorf("expected only the failed outcome, got %+v", failed.Outcomes)
		}
	})
}

func TestWriteReport(t *testing.T) {
	t.Run("CSV By Extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.csv")

		written, err := WriteReport(sampleReport(), path)
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected path %s, got %s", path, written)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.HasPrefix(string(data), "EpisodeID,") {
			t.Errorf("expected CSV content, got: %s", data)
		}
	})

	t.Run("JSON By Default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.out")

		if _, err := WriteReport(sampleReport(), path); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var decoded Report
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Errorf("expected JSON content: %v", err)
		}
	})

	t.Run("Default Path From Podcast ID", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		written, err := WriteReport(sampleReport(), "")
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if written != "pod1_report.json" {
			t.Errorf("expected default path pod1_report.json, got %s", written)
		}
		th.AssertFileExists(t, filepath.Join(tempDir, written))
	})
}
