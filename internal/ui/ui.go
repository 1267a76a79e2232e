package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wahoodash/internal/models"
	"github.com/desertthunder/wahoodash/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ScrapeView ViewState = iota
	SummaryView
	ActivityListView
)

// Scraper runs one scrape, reporting progress on the channel.
type Scraper interface {
	Scrape(ctx context.Context, progress chan<- tasks.ProgressUpdate, req models.ScrapeRequest) models.ScrapeResult
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	scraper      Scraper
	request      models.ScrapeRequest
	width        int
	height       int
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	done         chan models.ScrapeResult
	progress     tasks.ProgressUpdate
	result       *models.ScrapeResult
	activities   list.Model
	help         help.Model
	keys         keyMap
	quitting     bool
}

// NewModel creates a new TUI model that runs req through scraper when started.
func NewModel(ctx context.Context, scraper Scraper, req models.ScrapeRequest) *Model {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		view:    ScrapeView,
		scraper: scraper,
		request: req,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Result returns the scrape result once the scrape has finished, or nil.
func (m *Model) Result() *models.ScrapeResult {
	return m.result
}

// Init starts the scrape and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startScrape())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ActivityListView {
			m.activities.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.view != ScrapeView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case scrapeCompleteMsg:
		m.result = &msg.result
		m.view = SummaryView
		m.activities = list.New(activityItems(msg.result.Export), list.NewDefaultDelegate(), 0, 0)
		m.activities.Title = "Activities"
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.view == ActivityListView {
		var cmd tea.Cmd
		m.activities, cmd = m.activities.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) && !(m.view == ActivityListView && m.activities.FilterState() == list.Filtering) {
		m.cancel()
		if m.view == ScrapeView {
			// The scrape reports back once its process has been killed.
			m.quitting = true
			return m, nil
		}
		return m, tea.Quit
	}

	switch m.view {
	case SummaryView:
		if key.Matches(msg, m.keys.activities) && len(m.activities.Items()) > 0 {
			m.view = ActivityListView
			m.activities.SetSize(m.width-4, m.height-6)
		}
		return m, nil
	case ActivityListView:
		if key.Matches(msg, m.keys.back) && m.activities.FilterState() == list.Unfiltered {
			m.view = SummaryView
			return m, nil
		}
		var cmd tea.Cmd
		m.activities, cmd = m.activities.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ScrapeView:
		return m.renderScrape()
	case SummaryView:
		return m.renderSummary()
	case ActivityListView:
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", m.activities.View(), helpView)
	default:
		return ""
	}
}

func (m *Model) startScrape() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan models.ScrapeResult, 1)
	m.progressChan, m.done = progress, done

	go func() {
		done <- m.scraper.Scrape(m.ctx, progress, m.request)
		close(progress)
	}()

	return m.waitForProgress()
}

// waitForProgress returns the next progress update, or the result once the progress channel is closed.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return scrapeCompleteMsg{result: <-done}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderScrape() string {
	title := styles.title.Render("Exporting Wahoo data")

	phase := "Starting..."
	if m.quitting {
		phase = "Canceling..."
	} else if m.progress.Total > 0 {
		phase = fmt.Sprintf("[%d/%d] %s", m.progress.Step, m.progress.Total, m.progress.Message)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s %s\n\n%s", title, m.spinner.View(), phase, helpView)
}

func (m *Model) renderSummary() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	helpKeys := []key.Binding{m.keys.quit}
	if len(m.activities.Items()) > 0 {
		helpKeys = []key.Binding{m.keys.activities, m.keys.quit}
	}
	return fmt.Sprintf("%s\n\n%s", RenderResult(*m.result), m.help.ShortHelpView(helpKeys))
}
