package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/cryptoquery/pkg/ui/components"
)

// maxErrors is how many recent errors stay on screen.
const maxErrors = 3

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	title string
	keys  KeyMap
	help  help.Model

	spinner spinner.Model
	trades  *components.TradesComponent
	status  *components.StatusComponent
	stats   *components.StatsComponent

	paused   bool
	quitting bool
	width    int
	height   int
	errors   []ErrorEntry
	lastLog  string
}

// New creates a new TUI model.
func New(title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return Model{
		title:   title,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: s,
		trades:  components.NewTradesComponent(),
		status:  components.NewStatusComponent(),
		stats:   components.NewStatsComponent(),
		errors:  make([]ErrorEntry, 0, maxErrors),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Clear):
			m.errors = m.errors[:0]
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TradesMsg:
		stats := m.stats.Stats()
		stats.Refreshes++
		// While paused the counters move but the table stays frozen.
		if !m.paused {
			m.trades.Update(msg.Rows)
			stats.Profitable = countProfitable(msg.Rows)
			stats.LastUpdate = msg.At
		}
		m.stats.Update(stats)

	case SnapshotMsg:
		if !m.paused {
			m.status.Update(components.SourceStatus{
				Pairs:     msg.Pairs,
				Prices:    msg.Prices,
				Currency:  msg.Currency,
				FetchedAt: msg.FetchedAt,
			})
		}

	case ErrorMsg:
		if msg.Err != nil {
			m.errors = addError(m.errors, msg.Err.Error())
			stats := m.stats.Stats()
			stats.Errors++
			m.stats.Update(stats)
		}

	case LogMsg:
		m.lastLog = msg.Message
	}

	return m, nil
}

func countProfitable(rows []components.TradeRow) int {
	n := 0
	for _, r := range rows {
		if r.Class == "profitable" {
			n++
		}
	}
	return n
}

func addError(errs []ErrorEntry, message string) []ErrorEntry {
	errs = append(errs, ErrorEntry{Message: message, Timestamp: time.Now()})
	if len(errs) > maxErrors {
		errs = errs[len(errs)-maxErrors:]
	}
	return errs
}

// Paused reports whether table updates are frozen.
func (m Model) Paused() bool {
	return m.paused
}

// Errors returns the errors on screen, oldest first.
func (m Model) Errors() []ErrorEntry {
	return m.errors
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	header := TitleStyle.Render(m.title)
	if m.paused {
		header += " " + PausedStyle.Render("PAUSED")
	} else {
		header += " " + m.spinner.View()
	}
	b.WriteString(header + "\n\n")

	b.WriteString(m.status.View() + "\n\n")
	b.WriteString(BoxStyle.Render(m.trades.View()) + "\n\n")
	b.WriteString(m.stats.View() + "\n")

	if m.lastLog != "" {
		b.WriteString("\n" + MutedValue.Render(m.lastLog) + "\n")
	}

	if len(m.errors) > 0 {
		b.WriteString("\n")
		for _, e := range m.errors {
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("[%s] %s", e.Timestamp.Format("15:04:05"), e.Message)) + "\n")
		}
	}

	b.WriteString("\n" + HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Program runs a Model and accepts messages from other goroutines.
type Program struct {
	program *tea.Program
}

// NewProgram wraps m in a Bubble Tea program using the alternate screen.
func NewProgram(m Model, opts ...tea.ProgramOption) *Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &Program{program: tea.NewProgram(m, opts...)}
}

// Run blocks until the user quits or Quit is called.
func (p *Program) Run() error {
	_, err := p.program.Run()
	return err
}

// Send delivers msg to the model. Safe for concurrent use.
func (p *Program) Send(msg tea.Msg) {
	p.program.Send(msg)
}

// Quit stops the program.
func (p *Program) Quit() {
	p.program.Quit()
}
