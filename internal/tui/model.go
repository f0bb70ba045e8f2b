// Package tui implements the interactive grant network explorer: type an
// identifier, pick a view, and read the answer without leaving the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/grantflow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	maxExplorerDepth = 6
	chromeHeight     = 7 // title, input, filters, status, help and borders
)

// Model holds the explorer state.
type Model struct {
	theme     themes.Theme
	lastError error
	input     textinput.Model
	results   viewport.Model
	spinner   spinner.Model
	help      help.Model
	keymap    KeyMap
	config    Config
	lastID    string
	status    string
	mode      Mode
	depth     int
	seq       int
	width     int
	height    int
	loading   bool
	quitting  bool
}

// newModel creates a new model with the given configuration.
func newModel(cfg Config) Model {
	input := textinput.New()
	input.Prompt = "EIN › "
	input.PromptStyle = cfg.Theme.Prompt
	input.Placeholder = "12-3456789"
	input.CharLimit = 32
	input.Focus()

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(cfg.Theme.StatusInfo),
	)

	m := Model{
		theme:   cfg.Theme,
		input:   input,
		spinner: spin,
		help:    help.New(),
		keymap:  DefaultKeyMap(),
		config:  cfg,
		mode:    ModeNetwork,
		depth:   cfg.Depth,
		status:  "Type an EIN and press enter",
	}
	m.results = viewport.New(0, 0)
	m.resize(cfg.Width, cfg.Height)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case queryResultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.lastError = msg.err
			m.status = ""
			return m, nil
		}
		m.lastError = nil
		m.lastID = msg.id
		m.status = fmt.Sprintf("%s: %s", msg.mode, msg.summary)
		m.results.SetContent(msg.content)
		m.results.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Submit):
		id := strings.TrimSpace(m.input.Value())
		if id == "" {
			m.lastError = nil
			m.status = "Type an EIN first"
			return m, nil
		}
		return m.submit(id)

	case key.Matches(msg, m.keymap.NextMode):
		m.mode = (m.mode + 1) % modeCount
		return m.rerun()

	case key.Matches(msg, m.keymap.DeeperHop):
		if m.depth < maxExplorerDepth {
			m.depth++
		}
		return m.rerunNetwork()

	case key.Matches(msg, m.keymap.ShallowHop):
		if m.depth > 0 {
			m.depth--
		}
		return m.rerunNetwork()

	case key.Matches(msg, m.keymap.Clear):
		m.input.Reset()
		m.results.SetContent("")
		m.lastID = ""
		m.lastError = nil
		m.status = "Type an EIN and press enter"
		return m, nil

	case key.Matches(msg, m.keymap.ScrollUp), key.Matches(msg, m.keymap.ScrollDown):
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(id string) (tea.Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.lastError = nil
	m.status = fmt.Sprintf("Resolving %s…", id)
	return m, tea.Batch(m.spinner.Tick, runQuery(m.newQuery(id)))
}

// rerun repeats the last successful query under the current settings.
func (m Model) rerun() (tea.Model, tea.Cmd) {
	if m.lastID == "" {
		return m, nil
	}
	return m.submit(m.lastID)
}

func (m Model) rerunNetwork() (tea.Model, tea.Cmd) {
	if m.mode != ModeNetwork {
		return m, nil
	}
	return m.rerun()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.input.Width = max(width-12, 10)
	m.results.Width = max(width-2, 0)
	m.results.Height = max(height-chromeHeight, 1)
}
