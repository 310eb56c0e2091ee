package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/amalgam/amalgam"
	"github.com/sokinpui/amalgam/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type summaryMsg struct {
	model.Summary
}

type progressMsg struct {
	current, total int
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	app      *amalgam.App
	program  *tea.Program
	spinner  spinner.Model
	state    state
	progress progressMsg
	summary  summaryMsg
	err      error
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

func New(app *amalgam.App) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	m := &Model{
		app:     app,
		spinner: s,
		state:   stateProcessing,
	}
	app.SetProgressCallback(func(current, total int) {
		if m.program != nil {
			m.program.Send(progressMsg{current: current, total: total})
		}
	})
	return m
}

// SetProgram gives the model the program it runs in, for progress updates.
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// Err returns the error the run ended with, if any.
func (m *Model) Err() error {
	return m.err
}

// Summary returns the summary of a finished run.
func (m *Model) Summary() model.Summary {
	return m.summary.Summary
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.err = errors.New("interrupted")
			m.state = stateError
			return m, tea.Quit
		}

	case progressMsg:
		m.progress = msg
		return m, nil

	case summaryMsg:
		m.state = stateSummary
		m.summary = msg
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.state {
	case stateProcessing:
		if m.progress.total > 0 {
			return fmt.Sprintf("%s Combining fragments... %s\n", m.spinner.View(),
				faintStyle.Render(fmt.Sprintf("[%d/%d]", m.progress.current, m.progress.total)))
		}
		return fmt.Sprintf("%s Combining fragments...\n", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) renderSummary() string {
	var b strings.Builder
	s := m.summary.Summary

	if s.Message != "" {
		b.WriteString(headerStyle.Render(s.Message))
		b.WriteString("\n\n")
	}
	if s.Fragments == 0 {
		b.WriteString(faintStyle.Render("Nothing to do."))
		b.WriteString("\n")
		return b.String()
	}

	title := "Amalgamated"
	if s.Name != "" {
		title += " " + s.Name
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %d fragment(s), %d byte(s)\n", s.Fragments, s.Bytes))
	b.WriteString(faintStyle.Render("  sha256 " + s.SHA256))
	b.WriteString("\n")

	if len(s.Sinks) > 0 {
		b.WriteString(successStyle.Render("Wrote:"))
		b.WriteString("\n")
		for _, f := range s.Sinks {
			b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(f)))
		}
	}
	if s.Checked {
		if s.Stale {
			b.WriteString(warningStyle.Render(s.Output + " is out of date."))
			if s.OnDiskSHA256 != "" {
				b.WriteString("\n")
				b.WriteString(faintStyle.Render("  on disk sha256 " + s.OnDiskSHA256))
			}
		} else {
			b.WriteString(successStyle.Render(s.Output + " is up to date."))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) runApp() tea.Msg {
	summary, err := m.app.Execute()
	if err != nil {
		return errorMsg{err}
	}
	return summaryMsg{Summary: summary}
}
