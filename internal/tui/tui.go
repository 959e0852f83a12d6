// Package tui provides a Bubble Tea terminal user interface for organisiert.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/organisiert/internal/model"
	"github.com/handiism/organisiert/internal/pipeline"
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

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// ErrInterrupted is returned by Run when the user quits before the run ends.
var ErrInterrupted = errors.New("interrupted by user")

// State represents the current UI state.
type State int

const (
	StateStarting State = iota
	StateScanning
	StateOrganizing
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   model.ProgressLevel
}

// Job runs the organize stages, reporting through r.
type Job func(ctx context.Context, r pipeline.Reporter) (*pipeline.Summary, error)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	logs     []LogEntry
	stage    string
	err      error

	done  int
	total int

	summary     *pipeline.Summary
	interrupted bool
	verbose     bool

	width  int
	height int
}

// Message types
type (
	// StageMsg announces a new stage.
	StageMsg struct {
		Step  int
		Title string
	}

	// ProgressMsg is sent for every scan or organize progress event.
	ProgressMsg struct {
		Event model.ProgressEvent
	}

	// InfoMsg carries a line of run output.
	InfoMsg struct {
		Message string
	}

	// DoneMsg is sent when the job returns.
	DoneMsg struct {
		Summary *pipeline.Summary
		Err     error
	}
)

// NewModel creates a new TUI model. The job feeding it runs outside the
// program; see Run.
func NewModel(verbose bool) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		state:    StateStarting,
		spinner:  sp,
		progress: prog,
		logs:     make([]LogEntry, 0, maxLogs),
		verbose:  verbose,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.state != StateComplete && m.state != StateError {
				m.interrupted = true
			}
			return m, tea.Quit
		case "q", "esc", "enter":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StageMsg:
		m.stage = fmt.Sprintf("[%d/%d] %s", msg.Step, pipeline.TotalStages, msg.Title)
		m.done, m.total = 0, 0
		if msg.Step >= pipeline.TotalStages {
			m.state = StateOrganizing
		} else {
			m.state = StateScanning
		}
		cmds = append(cmds, m.progress.SetPercent(0))

	case ProgressMsg:
		if msg.Event.Done > m.done {
			m.done = msg.Event.Done
		}
		m.total = msg.Event.Total
		cmds = append(cmds, m.progress.SetPercent(m.percent()))
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level != model.LevelVerbose || m.verbose {
			m.appendLog(LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		}

	case InfoMsg:
		m.appendLog(LogEntry{Message: msg.Message, Level: model.LevelInfo})

	case DoneMsg:
		m.summary = msg.Summary
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) appendLog(entry LogEntry) {
	m.logs = append(m.logs, entry)
	// Keep only the last few logs
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♫ organisiert"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Organize music files by their tags"))
	b.WriteString("\n\n")

	switch m.state {
	case StateStarting:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Starting..."))
		b.WriteString("\n")
	case StateScanning, StateOrganizing:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(m.stage))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.done, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	if m.summary == nil || m.summary.Result.Total() == 0 {
		b.WriteString(boxStyle.Render("No music files found to organize."))
		b.WriteString("\n")
		return b.String()
	}

	r := m.summary.Result
	box := boxStyle.Render(fmt.Sprintf(
		"✓ Organization complete in %.2fs\n\n"+
			"Moved:      %d\n"+
			"Skipped:    %d\n"+
			"Duplicates: %d\n"+
			"Failed:     %d",
		r.Duration.Seconds(),
		r.Moved,
		r.Skipped,
		r.Duplicates,
		r.Failed,
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case model.LevelError:
			style = errorStyle
			prefix = "✗"
		case model.LevelWarning:
			style = warningStyle
			prefix = "!"
		case model.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case model.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateComplete, StateError:
		return "q: quit"
	default:
		return "ctrl+c: quit"
	}
}

// reporter forwards pipeline callbacks to the program.
type reporter struct {
	send func(tea.Msg)
}

func (r reporter) Stage(step int, title string) {
	r.send(StageMsg{Step: step, Title: title})
}

func (r reporter) Progress(event model.ProgressEvent) {
	r.send(ProgressMsg{Event: event})
}

func (r reporter) Info(message string) {
	r.send(InfoMsg{Message: message})
}

// Run starts the TUI, runs job alongside it and returns the job's summary
// once the user dismisses the final screen. Quitting early cancels the job
// and returns ErrInterrupted. Run never returns while the job is still
// running.
func Run(ctx context.Context, job Job, verbose bool) (*pipeline.Summary, error) {
	return run(ctx, job, verbose, tea.WithAltScreen())
}

func run(ctx context.Context, job Job, verbose bool, opts ...tea.ProgramOption) (*pipeline.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(verbose), append(opts, tea.WithContext(ctx))...)
	done := startJob(ctx, job, p.Send)

	final, runErr := p.Run()

	// Transfers may still be in flight.
	cancel()
	result := <-done

	m, _ := final.(Model)
	switch {
	case runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && !errors.Is(runErr, tea.ErrInterrupted):
		return result.Summary, runErr
	case runErr != nil || m.interrupted:
		return result.Summary, ErrInterrupted
	default:
		return result.Summary, result.Err
	}
}

// startJob runs job in its own goroutine. Its DoneMsg goes to send and to
// the returned channel.
func startJob(ctx context.Context, job Job, send func(tea.Msg)) <-chan DoneMsg {
	done := make(chan DoneMsg, 1)
	go func() {
		summary, err := job(ctx, reporter{send: send})
		msg := DoneMsg{Summary: summary, Err: err}
		send(msg)
		done <- msg
	}()
	return done
}
