package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/gridsmith/oneline/pkg/diagram"
	"github.com/gridsmith/oneline/pkg/editor"
	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/layout"
	"github.com/gridsmith/oneline/pkg/snap"
)

// dragStep is how far a single arrow key moves a dragged node, in world units.
const dragStep = 5.0

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command for interactive browsing.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [diagram.json]",
		Short: "Browse a diagram interactively with drag simulation",
		Long: `Browse a diagram interactively with drag simulation.

Equipment is listed with its computed position and connections. Pressing
enter on a piece of equipment starts a drag: arrow keys move it, snap
guides appear when connection handles line up, enter commits the new
position, and esc cancels. Press w to write the diagram back to disk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
}

func (c *CLI) runInspect(input string) error {
	g, err := diagram.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}

	ed := editor.New(
		editor.WithGraph(g),
		editor.WithLayoutOptions(
			layout.WithContainerWidth(c.Config.Layout.ContainerWidth),
			layout.WithMargin(c.Config.Layout.Margin),
			layout.WithSpacing(c.Config.Layout.VerticalSpacing, c.Config.Layout.HorizontalSpacing),
		),
		editor.WithSnapThresholds(c.Config.Snap.ThresholdX, c.Config.Snap.ThresholdY),
		editor.WithLogger(c.Logger),
	)
	ed.Relayout()

	model := newInspectModel(ed, input)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run inspector: %w", err)
	}

	if m, ok := final.(inspectModel); ok && m.saveErr != nil {
		return m.saveErr
	}
	return nil
}

// inspectModel is the bubbletea model for the diagram inspector.
type inspectModel struct {
	ed    *editor.Editor
	path  string
	nodes []*equipment.Node

	cursor int
	offset int
	height int

	dragging  bool
	tentative equipment.Position
	snapped   equipment.Position
	lines     []snap.Line

	status  string
	saveErr error
}

func newInspectModel(ed *editor.Editor, path string) inspectModel {
	return inspectModel{
		ed:     ed,
		path:   path,
		nodes:  ed.Graph().Nodes(),
		height: 15,
	}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.dragging {
			return m.updateDrag(msg)
		}
		return m.updateBrowse(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m inspectModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter":
		if len(m.nodes) == 0 {
			return m, nil
		}
		n := m.nodes[m.cursor]
		if err := m.ed.BeginDrag(n.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dragging = true
		m.tentative = n.Position
		m.snapped = n.Position
		m.lines = nil
		m.status = ""
	case "w":
		if err := diagram.WriteFile(m.ed.Graph(), m.path); err != nil {
			m.saveErr = err
			return m, tea.Quit
		}
		m.status = "saved " + m.path
	}
	return m, nil
}

func (m inspectModel) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ed.CancelDrag()
		return m, tea.Quit
	case "esc":
		m.ed.CancelDrag()
		m.dragging = false
		m.lines = nil
		m.status = "drag cancelled"
		return m, nil
	case "enter":
		committed, err := m.ed.EndDrag(m.tentative)
		m.dragging = false
		m.lines = nil
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("moved to (%.0f, %.0f)", committed.X, committed.Y)
		return m, nil
	case "up":
		m.tentative.Y -= dragStep
	case "down":
		m.tentative.Y += dragStep
	case "left":
		m.tentative.X -= dragStep
	case "right":
		m.tentative.X += dragStep
	default:
		return m, nil
	}

	res, err := m.ed.DragTick(m.tentative)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.snapped = res.Position
	m.lines = res.Lines
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Diagram Inspector"))
	b.WriteString("\n")
	if m.dragging {
		b.WriteString(listDimStyle.Render("arrows move  ⏎ commit  esc cancel"))
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ drag  w write  q quit"))
	}
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.nodes) {
		end = len(m.nodes)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		pos := fmt.Sprintf("%.0f, %.0f", n.Position.X, n.Position.Y)
		if i == m.cursor && m.dragging {
			pos = fmt.Sprintf("%.0f, %.0f*", m.snapped.X, m.snapped.Y)
		}

		rows = append(rows, []string{
			cursor,
			n.ID,
			n.Kind.String(),
			n.Name,
			pos,
			fmt.Sprintf("%d/%d", n.SourceCount(), n.AllowedSources),
			fmt.Sprintf("%d/%d", n.LoadCount(), n.AllowedLoads),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Kind", "Name", "Position", "Src", "Load").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.dragging {
		b.WriteString(m.dragPanel())
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))

	return b.String()
}

// dragPanel renders the live drag state with any active snap guides.
func (m inspectModel) dragPanel() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render(fmt.Sprintf("  dragging %s", m.nodes[m.cursor].ID)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  raw (%.0f, %.0f)", m.tentative.X, m.tentative.Y)))

	if len(m.lines) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	for _, line := range m.lines {
		axis := "x"
		if line.Axis == snap.AxisHorizontal {
			axis = "y"
		}
		b.WriteString(StyleSuccess.Render(fmt.Sprintf("  snap %s = %.0f", axis, line.Value)))
	}
	return b.String()
}
