package ui

import (
	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/tasks"
)

// episodesFetchedMsg carries the finished search scan.
type episodesFetchedMsg struct {
	episodes []models.Episode
	err      error
}

// progressUpdateMsg relays pipeline progress into the Elm loop.
type progressUpdateMsg tasks.ProgressUpdate

// processCompleteMsg carries the terminal outcome of a confirmed restore.
type processCompleteMsg struct {
	outcome models.Outcome
	err     error
}
