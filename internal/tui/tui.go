// Package tui provides a Bubble Tea viewer for one file's provenance
// timeline (`tabd inspect`): a lipgloss style vocabulary over a
// viewport-driven scroll model, rendering a single scrollable list of
// tagged intervals.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/tabd/internal/provenance"
	"github.com/fakeyudi/tabd/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	kindUserEditStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	kindAIGeneratedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	kindPasteStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	kindUndoRedoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

func kindStyle(k provenance.Kind) lipgloss.Style {
	switch k {
	case provenance.UserEdit:
		return kindUserEditStyle
	case provenance.AIGenerated:
		return kindAIGeneratedStyle
	case provenance.Paste, provenance.IDEPaste:
		return kindPasteStyle
	case provenance.UndoRedo:
		return kindUndoRedoStyle
	default:
		return dimStyle
	}
}

// model is the Bubble Tea model for one timeline view.
type model struct {
	timeline *report.Timeline
	viewport viewport.Model
	ready    bool
}

func newModel(t *report.Timeline) model {
	return model{timeline: t}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := 3
		footerHeight := 1
		vpHeight := msg.Height - headerHeight - footerHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.viewport.SetContent(m.body())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading...\n"
	}
	header := titleStyle.Render(fmt.Sprintf("tabd inspect — %s", m.timeline.RelativePath))
	footer := statusBarStyle.Render(fmt.Sprintf("%d changes  •  q to quit", len(m.timeline.Changes)))
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func (m model) body() string {
	var sb strings.Builder

	sb.WriteString(sectionHeader.Render("Provenance timeline"))
	sb.WriteString("\n\n")

	if len(m.timeline.Changes) == 0 {
		sb.WriteString(dimStyle.Render("No tracked changes."))
		return sb.String()
	}

	for i, c := range m.timeline.Changes {
		style := kindStyle(c.Kind)
		fmt.Fprintf(&sb, "%s %s  %s\n",
			style.Render(fmt.Sprintf("[%d]", i+1)),
			style.Render(string(c.Kind)),
			dimStyle.Render(fmt.Sprintf("%d:%d-%d:%d", c.Range.Start.Line, c.Range.Start.Column, c.Range.End.Line, c.Range.End.Column)),
		)
		if c.Author != "" {
			fmt.Fprintf(&sb, "    %s %s\n", labelStyle.Render("author:"), c.Author)
		}
		if c.CreationTS != 0 {
			fmt.Fprintf(&sb, "    %s %s\n", labelStyle.Render("created:"), timeStyle.Render(formatMS(c.CreationTS)))
		}
		if detail := detailLine(c); detail != "" {
			fmt.Fprintf(&sb, "    %s %s\n", labelStyle.Render("detail:"), detail)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Run starts the interactive viewer for t.
func Run(t *report.Timeline) error {
	p := tea.NewProgram(newModel(t), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
