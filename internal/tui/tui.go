// Package tui provides a Bubble Tea terminal user interface for recordnote.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recordnote/internal/command"
	"recordnote/internal/logger"
	"recordnote/internal/metadata"
	"recordnote/internal/pipeline"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateMenu State = iota
	StateURLInput
	StateSearchInput
	StateSearching
	StateResults
	StateRunning
	StateComplete
	StateError
)

const maxVisibleResults = 10

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model

	pipeline *pipeline.Pipeline
	commands *command.Commands
	document string
	events   chan tea.Msg

	stage   pipeline.State
	notice  string
	results []metadata.SearchResult
	cursor  int
	result  pipeline.Result
	err     error

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel creates a TUI model writing to the named document.
func NewModel(document string) Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateMenu,
		textInput: ti,
		spinner:   sp,
		document:  document,
		events:    make(chan tea.Msg, 32),
		stage:     pipeline.StateIdle,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Notifier returns a pipeline.Notifier that shows messages in the UI.
func (m Model) Notifier() pipeline.Notifier {
	return pipeline.NotifierFunc(func(msg string) {
		m.send(NoticeMsg{Text: msg})
	})
}

// Attach connects the model to the pipeline it drives.
func (m *Model) Attach(p *pipeline.Pipeline, log *logger.Logger) {
	events := m.events
	p.Hooks.OnState = func(s pipeline.State) {
		select {
		case events <- StageMsg{State: s}:
		default:
		}
	}
	m.pipeline = p
	m.commands = command.New(p, nil, log)
}

func (m Model) send(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// Message types
type (
	// StageMsg reports a pipeline state transition.
	StageMsg struct {
		State pipeline.State
	}

	// NoticeMsg carries the pipeline's user notification.
	NoticeMsg struct {
		Text string
	}

	// SearchDoneMsg is sent when a search returns.
	SearchDoneMsg struct {
		Results []metadata.SearchResult
		Err     error
	}

	// RunDoneMsg is sent when a pipeline run finishes.
	RunDoneMsg struct {
		Result pipeline.Result
		Err    error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if w := msg.Width - 10; w > 20 {
			m.textInput.Width = min(w, 80)
		}
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StageMsg:
		m.stage = msg.State
		cmds = append(cmds, m.waitForEvent())

	case NoticeMsg:
		m.notice = msg.Text
		cmds = append(cmds, m.waitForEvent())

	case SearchDoneMsg:
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case len(msg.Results) == 0:
			m.state = StateSearchInput
			m.textInput.Focus()
		default:
			m.state = StateResults
			m.results = msg.Results
			m.cursor = 0
		}

	case RunDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
			m.result = msg.Result
		}
	}

	if m.state == StateURLInput || m.state == StateSearchInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit, true
	}

	switch m.state {
	case StateMenu:
		switch key {
		case "c":
			next, cmd := m.startRun(m.clipboardRun())
			return next, cmd, true
		case "u":
			return m.openInput(StateURLInput, "https://www.discogs.com/release/..."), textinput.Blink, true
		case "s":
			return m.openInput(StateSearchInput, "artist and title"), textinput.Blink, true
		case "q", "esc":
			m.cancel()
			return m, tea.Quit, true
		}
		return m, nil, true

	case StateURLInput, StateSearchInput:
		switch key {
		case "esc":
			m.state = StateMenu
			m.textInput.Blur()
			return m, nil, true
		case "enter":
			value := strings.TrimSpace(m.textInput.Value())
			if value == "" {
				return m, nil, true
			}
			m.textInput.Blur()
			if m.state == StateURLInput {
				next, cmd := m.startRun(m.urlRun(value))
				return next, cmd, true
			}
			m.state = StateSearching
			m.notice = ""
			return m, tea.Batch(m.search(value), m.spinner.Tick), true
		}
		return m, nil, false

	case StateResults:
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
		case "enter":
			picked := m.results[m.cursor]
			next, cmd := m.startRun(m.resultRun(picked))
			return next, cmd, true
		case "esc":
			m.state = StateSearchInput
			m.textInput.Focus()
			return m, textinput.Blink, true
		}
		return m, nil, true

	case StateRunning, StateSearching:
		if key == "esc" {
			m.cancel()
		}
		return m, nil, true

	case StateComplete, StateError:
		switch key {
		case "q", "esc":
			return m, tea.Quit, true
		case "r":
			m.reset()
			return m, nil, true
		}
		return m, nil, true
	}

	return m, nil, false
}

func (m Model) openInput(state State, placeholder string) Model {
	m.state = state
	m.textInput.SetValue("")
	m.textInput.Placeholder = placeholder
	m.textInput.Focus()
	return m
}

func (m *Model) reset() {
	m.state = StateMenu
	m.stage = pipeline.StateIdle
	m.notice = ""
	m.results = nil
	m.cursor = 0
	m.result = pipeline.Result{}
	m.err = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
}

func (m Model) startRun(run tea.Cmd) (Model, tea.Cmd) {
	m.state = StateRunning
	m.stage = pipeline.StateIdle
	m.notice = ""
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func (m Model) clipboardRun() tea.Cmd {
	ctx, cmds := m.ctx, m.commands
	return func() tea.Msg {
		res, err := cmds.FromClipboard(ctx)
		return RunDoneMsg{Result: res, Err: err}
	}
}

func (m Model) urlRun(input string) tea.Cmd {
	ctx, p := m.ctx, m.pipeline
	return func() tea.Msg {
		res, err := p.Run(ctx, input)
		return RunDoneMsg{Result: res, Err: err}
	}
}

func (m Model) resultRun(r metadata.SearchResult) tea.Cmd {
	ctx, p := m.ctx, m.pipeline
	return func() tea.Msg {
		res, err := p.RunResult(ctx, r)
		return RunDoneMsg{Result: res, Err: err}
	}
}

func (m Model) search(query string) tea.Cmd {
	ctx, p := m.ctx, m.pipeline
	return func() tea.Msg {
		results, err := p.Search(ctx, query)
		return SearchDoneMsg{Results: results, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("recordnote"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Discogs releases into notes → " + m.documentLabel()))
	b.WriteString("\n\n")

	switch m.state {
	case StateMenu:
		b.WriteString(m.viewMenu())
	case StateURLInput:
		b.WriteString(m.viewInput("Enter release URL:"))
	case StateSearchInput:
		b.WriteString(m.viewInput("Search Discogs:"))
	case StateSearching:
		b.WriteString(m.spinner.View() + " " + subtitleStyle.Render("Searching..."))
		b.WriteString("\n")
	case StateResults:
		b.WriteString(m.viewResults())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) documentLabel() string {
	if m.document == "" {
		return "no document"
	}
	return m.document
}

func (m Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("What do you want to import?"))
	b.WriteString("\n\n")
	b.WriteString("  c  Extract from clipboard\n")
	b.WriteString("  u  Enter URL manually\n")
	b.WriteString("  s  Search by text\n")
	return b.String()
}

func (m Model) viewInput(prompt string) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(prompt))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(m.notice))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewResults() string {
	var b strings.Builder
	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d release(s):", len(m.results))))
	b.WriteString("\n\n")

	start := 0
	if m.cursor >= maxVisibleResults {
		start = m.cursor - maxVisibleResults + 1
	}
	end := min(start+maxVisibleResults, len(m.results))

	for i := start; i < end; i++ {
		line := command.Describe(m.results[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(m.stage.Label() + "..."))
	b.WriteString("\n\n")

	for _, s := range pipeline.Steps[:len(pipeline.Steps)-1] {
		switch {
		case stepIndex(s) < stepIndex(m.stage):
			b.WriteString(successStyle.Render("✓ " + s.Label()))
		case s == m.stage:
			b.WriteString(infoStyle.Render("› " + s.Label()))
		default:
			b.WriteString(dimStyle.Render("• " + s.Label()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewComplete() string {
	rel := m.result.Release
	artwork := m.result.ArtworkRef
	if artwork == "" {
		artwork = "none"
	}
	return boxStyle.Render(fmt.Sprintf(
		"Imported!\n\n"+
			"Release: %s\n"+
			"Tracks: %d\n"+
			"Artwork: %s\n"+
			"Document: %s",
		rel.Title,
		len(rel.Tracklist),
		artwork,
		m.result.Document,
	))
}

func (m Model) viewError() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	b.WriteString("  " + errorText(m.err, m.notice))
	b.WriteString("\n")
	return b.String()
}

func errorText(err error, notice string) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled by user"
	case notice != "":
		return notice
	case err != nil:
		return metadata.UserMessage(err)
	}
	return ""
}

func stepIndex(s pipeline.State) int {
	for i, step := range pipeline.Steps {
		if step == s {
			return i
		}
	}
	return -1
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateMenu:
		return "c: clipboard • u: url • s: search • q: quit"
	case StateURLInput, StateSearchInput:
		return "enter: submit • esc: back"
	case StateResults:
		return "↑/↓: move • enter: import • esc: back"
	case StateRunning, StateSearching:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: import another • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
