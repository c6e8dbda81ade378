package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/glasswing-io/sightline/cli/reader"
	"github.com/glasswing-io/sightline/geom"
)

// BrowseModel is a Bubble Tea model for the issue browser: a list
// panel on the left, the selected issue's detail on the right.
type BrowseModel struct {
	summaries []reader.IssueSummary
	detail    *reader.IssueDetail
	cursor    int
	width     int
	height    int
	quitting  bool
}

// NewBrowseModel creates a browser over the wired reader's issues.
// When data carries an issue detail, the cursor starts on that issue.
func NewBrowseModel(data any) BrowseModel {
	m := BrowseModel{summaries: reader.GetReader().Summaries()}
	if d, ok := data.(*reader.IssueDetail); ok && d != nil {
		m.detail = d
		for i, s := range m.summaries {
			if s.ID == d.ID {
				m.cursor = i
				break
			}
		}
	}
	m.load()
	return m
}

// load fetches the detail for the issue under the cursor.
func (m *BrowseModel) load() {
	if m.cursor >= 0 && m.cursor < len(m.summaries) {
		m.detail = reader.GetReader().Detail(m.summaries[m.cursor].ID)
	}
}

// Init implements tea.Model.
func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.load()
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.summaries)-1 {
				m.cursor++
				m.load()
			}
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m BrowseModel) View() string {
	if m.quitting {
		return ""
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(), m.renderDetail())
	help := HelpStyle.Render("up/k and down/j to move, q to quit")
	return panels + "\n" + help
}

func (m BrowseModel) renderList() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Issues"))
	b.WriteString("\n\n")

	if len(m.summaries) == 0 {
		b.WriteString(ValueStyle.Render("(no issues)"))
		return BoxStyle.Render(b.String())
	}

	for i, s := range m.summaries {
		line := s.ID
		if s.Title != "" {
			line += "  " + s.Title
		}
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("> " + line))
		} else {
			b.WriteString(ValueStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	return BoxStyle.Render(b.String())
}

func (m BrowseModel) renderDetail() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Detail"))
	b.WriteString("\n\n")

	d := m.detail
	if d == nil {
		b.WriteString(ValueStyle.Render("(no issue selected)"))
		return BoxStyle.Render(b.String())
	}

	writeField(&b, "ID", d.ID, false)
	writeField(&b, "Title", d.Title, false)
	if d.Status != "" {
		writeField(&b, "Status", d.Status, true)
	}
	if d.Author != "" {
		writeField(&b, "Author", d.Author, false)
	}
	if d.CreatedAt != "" {
		writeField(&b, "Created", d.CreatedAt, false)
	}

	if vp := d.Viewpoint; vp != nil {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Viewpoint"))
		b.WriteString("\n")
		writeField(&b, "Camera", vp.Camera, false)
		if vp.EntityRef != nil {
			writeField(&b, "Entity Ref", *vp.EntityRef, false)
		}
		if vp.BearingDeg != nil {
			writeField(&b, "Bearing", fmt.Sprintf("%.1f deg", *vp.BearingDeg), false)
		}
		if vp.ElevationDeg != nil {
			writeField(&b, "Elevation", fmt.Sprintf("%.1f deg", *vp.ElevationDeg), false)
		}
	}

	if c := d.Camera; c != nil {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Camera"))
		b.WriteString("\n")
		writeField(&b, "Eye", formatVec(c.Eye), false)
		writeField(&b, "Target", formatVec(c.Target), false)
		writeField(&b, "FOV", fmt.Sprintf("%.3f rad", c.FieldOfViewRadians), false)
		writeField(&b, "Distance", fmt.Sprintf("%.2f", c.Distance), false)
	}

	if s := d.Snapshot; s != nil {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Snapshot"))
		b.WriteString("\n")
		writeField(&b, "Name", s.Name, false)
		if s.Width > 0 {
			writeField(&b, "Size", fmt.Sprintf("%dx%d %s", s.Width, s.Height, s.Format), false)
		} else {
			writeField(&b, "Size", fmt.Sprintf("%d bytes", s.Bytes), false)
		}
	}

	return BoxStyle.Render(b.String())
}

func writeField(b *strings.Builder, label, value string, stateColored bool) {
	rendered := ValueStyle.Render(value)
	if stateColored {
		rendered = StateStyle(value).Render(value)
	}
	fmt.Fprintf(b, "%s %s\n", LabelStyle.Render(label+":"), rendered)
}

func formatVec(v geom.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// keyMap defines key bindings.
type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunBrowseTUI runs the issue browser.
func RunBrowseTUI(data any) error {
	model := NewBrowseModel(data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderBrowseStatic renders the browser once without running the
// program (for fallback and tests).
func RenderBrowseStatic(data any) string {
	model := NewBrowseModel(data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
