// package formatter exports run reports to various formats (CSV, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/shared"
)

// Report bundles a run's metadata with its recorded outcomes for export
type Report struct {
	Run      models.RunMetadata `json:"run"`
	Outcomes []models.Outcome   `json:"outcomes"`
}

// NewReport builds a Report with outcomes ordered by timestamp so exports are
// stable across invocations.
func NewReport(run models.RunMetadata, outcomes []models.Outcome) *Report {
	sorted := make([]models.Outcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].EpisodeID < sorted[j].EpisodeID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return &Report{Run: run, Outcomes: sorted}
}

// FailedOnly returns a copy of the report containing only failed outcomes
func (r *Report) FailedOnly() *Report {
	failed := make([]models.Outcome, 0)
	for _, o := range r.Outcomes {
		if o.Status == models.StatusFailed {
			failed = append(failed, o)
		}
	}
	return &Report{Run: r.Run, Outcomes: failed}
}

// ExportToCSV converts a Report to CSV format with columns: EpisodeID, Status, MediaRef, Error, Timestamp
func ExportToCSV(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"EpisodeID", "Status", "MediaRef", "Error", "Timestamp"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, outcome := range report.Outcomes {
		record := []string{
			outcome.EpisodeID,
			string(outcome.Status),
			outcome.MediaRef,
			outcome.Error,
			outcome.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a Report to indented JSON
func ExportToJSON(report *Report) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// ExportToText converts a Report to a plain text run summary
func ExportToText(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	run := report.Run
	buf.WriteString(fmt.Sprintf("Podcast: %s\n", run.PodcastID))
	buf.WriteString(fmt.Sprintf("Run: %s\n", run.RunID))
	buf.WriteString(fmt.Sprintf("Progress: %d/%d processed (page %d)\n", run.Processed, run.Total, run.CurrentPage))
	buf.WriteString(fmt.Sprintf("Succeeded: %d  Failed: %d  Skipped: %d\n", run.Success, run.Failed, run.Skipped))
	if run.Complete {
		buf.WriteString("Status: complete\n")
	} else {
		buf.WriteString("Status: in progress\n")
	}

	failed := report.FailedOnly().Outcomes
	if len(failed) > 0 {
		buf.WriteString("\nFailures:\n")
		for i, outcome := range failed {
			buf.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, outcome.EpisodeID, outcome.Error))
		}
	}

	return buf.Bytes(), nil
}

// WriteReport writes a report to path, choosing the format from the file
// extension (.csv or .json; anything else gets JSON). Returns the path
// written.
func WriteReport(report *Report, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_report.json", report.Run.PodcastID)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err = ExportToCSV(report)
	default:
		data, err = ExportToJSON(report)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
