package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/glasswing-io/sightline/cli/reader"
)

// StatsModel is a Bubble Tea model for archive statistics.
type StatsModel struct {
	data     *reader.ArchiveStats
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(data any) StatsModel {
	m := StatsModel{}
	if st, ok := data.(*reader.ArchiveStats); ok {
		m.data = st
	}
	return m
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Archive Statistics"))
	b.WriteString("\n\n")

	if m.data == nil {
		b.WriteString(ValueStyle.Render("(no stats)"))
	} else {
		b.WriteString(LabelStyle.Render("Archive:"))
		b.WriteString(" ")
		b.WriteString(ValueStyle.Render(m.data.Archive))
		b.WriteString("\n\n")

		top := []string{
			m.renderStatBox("Issues", m.data.Issues, highlightColor),
			m.renderStatBox("Skipped", m.data.Skipped, errorColor),
			m.renderStatBox("Viewpoints", m.data.WithViewpoint, successColor),
		}
		bottom := []string{
			m.renderStatBox("Cameras", m.data.WithCamera, successColor),
			m.renderStatBox("Entity Refs", m.data.WithEntityRef, warningColor),
			m.renderStatBox("Snapshots", m.data.WithSnapshot, primaryColor),
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, top...))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, bottom...))
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m StatsModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(strconv.Itoa(value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(data any) error {
	model := NewStatsModel(data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders stats once without running the program.
func RenderStatsStatic(data any) string {
	model := NewStatsModel(data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
