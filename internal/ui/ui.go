package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/podfix/internal/models"
	"github.com/desertthunder/podfix/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	EpisodeListView
	ConfirmView
	ProcessView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.RestoreEngine
	podcastID    string
	query        string
	simulate     bool
	cached       []models.Episode
	width        int
	height       int
	episodeList  list.Model
	episodes     []models.Episode
	selected     *models.Episode
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	outcome      *models.Outcome
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies. cached
// holds local search hits; when non-empty the provider scan is skipped.
func NewModel(ctx context.Context, engine *tasks.RestoreEngine, podcastID, query string, simulate bool, cached []models.Episode) *Model {
	return &Model{
		ctx:       ctx,
		view:      SearchView,
		engine:    engine,
		podcastID: podcastID,
		query:     query,
		simulate:  simulate,
		cached:    cached,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the search scan, serving cached matches without a network trip.
func (m *Model) Init() tea.Cmd {
	if len(m.cached) > 0 {
		episodes := m.cached
		return func() tea.Msg {
			return episodesFetchedMsg{episodes: episodes}
		}
	}
	return tea.Batch(m.startSearch(), m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.episodeList.Width() == 0 {
			m.episodeList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case EpisodeListView:
			return m.handleEpisodeListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case episodesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.episodes = msg.episodes
		items := make([]list.Item, len(msg.episodes))
		for i, ep := range msg.episodes {
			items[i] = episodeItem{episode: ep}
		}
		m.episodeList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.episodeList.Title = fmt.Sprintf("Episodes matching %q", m.query)
		m.episodeList.SetSize(m.width-4, m.height-8)
		m.view = EpisodeListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case processCompleteMsg:
		m.outcome = &msg.outcome
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	if m.view == EpisodeListView {
		var cmd tea.Cmd
		m.episodeList, cmd = m.episodeList.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SearchView:
		return m.renderSearch()
	case EpisodeListView:
		return m.renderEpisodeList()
	case ConfirmView:
		return m.renderConfirm()
	case ProcessView:
		return m.renderProcess()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Err reports the terminal error, if any, once the program exits.
func (m *Model) Err() error { return m.err }

func (m *Model) handleEpisodeListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.episodeList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(episodeItem); ok {
				episode := item.episode
				m.selected = &episode
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.episodeList, cmd = m.episodeList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = EpisodeListView
		m.selected = nil
		return m, nil
	case "y":
		m.view = ProcessView
		return m, m.startProcess()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = EpisodeListView
		m.selected = nil
		m.outcome = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) startSearch() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	return func() tea.Msg {
		episodes, err := m.engine.FindEpisodes(m.ctx, m.podcastID, m.query, m.progressChan)
		close(m.progressChan)
		return episodesFetchedMsg{episodes: episodes, err: err}
	}
}

func (m *Model) startProcess() tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.engine.ProcessOne(m.ctx, *m.selected, m.simulate)
		return processCompleteMsg{outcome: outcome, err: err}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return nil
		}
		update, ok := <-m.progressChan
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render(fmt.Sprintf("Searching for %q", m.query))
	status := "Scanning episode listing..."
	if m.progress.Phase == tasks.SearchScan {
		status = m.progress.Message
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, status, helpView)
}

func (m *Model) renderEpisodeList() string {
	if len(m.episodes) == 0 {
		title := styles.title.Render("No matches")
		info := fmt.Sprintf("No episode titles contain %q.", m.query)
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
		return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
	}

	restoreKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "restore"),
	)
	helpView := m.help.ShortHelpView([]key.Binding{restoreKey, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.episodeList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Restore artwork for '%s'?", m.selected.Title))

	info := fmt.Sprintf("\nEpisode: %s\nSource media: %s\n", m.selected.ID, m.selected.MediaRef)
	if m.selected.MediaRef == "" {
		info += styles.warn.Render("This episode has no source media and will fail.") + "\n"
	}
	if m.simulate {
		info += styles.warn.Render("Dry run: artwork will be downloaded but not uploaded.") + "\n"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderProcess() string {
	title := styles.title.Render("Restoring Artwork")
	return fmt.Sprintf("%s\n\nProcessing '%s'...", title, m.selected.Title)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Restore failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.outcome == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	var title, detail string
	switch m.outcome.Status {
	case models.StatusSuccess:
		title = styles.ok.Render("✓ Artwork Restored")
		detail = fmt.Sprintf("\nEpisode: %s\nSource media: %s", m.outcome.EpisodeID, m.outcome.MediaRef)
	default:
		title = styles.err.Render("✗ Restore Failed")
		detail = fmt.Sprintf("\nEpisode: %s\nReason: %s", m.outcome.EpisodeID, m.outcome.Error)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", title, detail, helpView)
}
