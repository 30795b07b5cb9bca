package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cheerioskun/testtool/internal/models"
)

// RowKind tells how a generated line came to be
type RowKind int

const (
	HarnessRow RowKind = iota
	StructuralRow
	TracedRow
)

// String returns a human-readable representation of the row kind
func (k RowKind) String() string {
	switch k {
	case HarnessRow:
		return "Harness"
	case StructuralRow:
		return "Structural"
	case TracedRow:
		return "Traced"
	default:
		return "Unknown"
	}
}

// Row is one line of the generated file
type Row struct {
	Number int     // 1-based line in the generated file
	Text   string  // Emitted text
	Kind   RowKind // Harness, passed through, or traced
}

// Styles for preview rendering
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	harnessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111"))

	structuralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	tracedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	gutterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

const (
	headerHeight = 2
	footerHeight = 2
)

// Model is a scrollable view of an instrumented file
type Model struct {
	path     string
	rows     []Row
	summary  *models.Summary
	viewport viewport.Model

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates a preview of the given generated rows
func NewModel(path string, rows []Row, summary *models.Summary) *Model {
	return &Model{
		path:    path,
		rows:    rows,
		summary: summary,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := max(msg.Height-headerHeight-footerHeight, 1)

		if !m.ready {
			m.viewport = viewport.New(msg.Width, bodyHeight)
			m.viewport.SetContent(m.renderRows())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = bodyHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
	}

	if !m.ready {
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Loading...\n"
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View(), m.renderFooter())
}

// renderHeader shows the file being previewed
func (m *Model) renderHeader() string {
	title := titleStyle.Render(fmt.Sprintf("Instrumented: %s", m.path))
	help := helpStyle.Render("↑/↓ pgup/pgdn: scroll | q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, help)
}

// renderFooter shows summary counts and scroll position
func (m *Model) renderFooter() string {
	counts := ""
	if m.summary != nil {
		counts = fmt.Sprintf("%d lines · %d traced · %d structural",
			m.summary.Lines, m.summary.Instrumented, m.summary.Structural)
	}
	position := fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100)
	return lipgloss.JoinVertical(lipgloss.Left, "", helpStyle.Render(counts+"  "+position))
}

// renderRows renders every row with a line-number gutter
func (m *Model) renderRows() string {
	width := len(fmt.Sprintf("%d", len(m.rows)))

	var b strings.Builder
	for i, row := range m.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(gutterStyle.Render(fmt.Sprintf("%*d ", width, row.Number)))
		b.WriteString(styleFor(row.Kind).Render(row.Text))
	}
	return b.String()
}

func styleFor(kind RowKind) lipgloss.Style {
	switch kind {
	case TracedRow:
		return tracedStyle
	case StructuralRow:
		return structuralStyle
	default:
		return harnessStyle
	}
}
