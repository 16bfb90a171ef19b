package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/podfix/internal/models"
)

var _ list.Item = episodeItem{}

// episodeItem wraps [models.Episode] to implement [list.Item].
type episodeItem struct {
	episode models.Episode
}

func (i episodeItem) FilterValue() string { return i.episode.Title }
func (i episodeItem) Title() string       { return i.episode.Title }
func (i episodeItem) Description() string {
	if i.episode.MediaRef == "" {
		return "no source media"
	}
	desc := i.episode.MediaRef
	if i.episode.PublishedAt != "" {
		desc = fmt.Sprintf("%s • %s", i.episode.PublishedAt, desc)
	}
	return desc
}
