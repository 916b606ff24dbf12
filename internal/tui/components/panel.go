// Package components provides small view building blocks for the playground.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/waypoint/internal/tui/ui"
)

// Panel is a bordered container with a title.
type Panel struct {
	title     string
	lines     []string
	width     int
	hasBorder bool
	style     *lipgloss.Style
	styles    ui.Styles
}

// NewPanel creates a new panel with the given title.
func NewPanel(title string) Panel {
	return Panel{
		title:     title,
		width:     ui.DefaultWidth / 2,
		hasBorder: true,
		styles:    ui.DefaultStyles(),
	}
}

// Title returns the panel title.
func (p Panel) Title() string {
	return p.title
}

// Lines returns the panel body lines.
func (p Panel) Lines() []string {
	return p.lines
}

// Width returns the panel width.
func (p Panel) Width() int {
	return p.width
}

// AddLine returns the panel with line appended to its body.
func (p Panel) AddLine(line string) Panel {
	p.lines = append(append([]string(nil), p.lines...), line)
	return p
}

// WithWidth returns the panel with a new width.
func (p Panel) WithWidth(width int) Panel {
	p.width = width
	return p
}

// WithBorder returns the panel with border enabled/disabled.
func (p Panel) WithBorder(hasBorder bool) Panel {
	p.hasBorder = hasBorder
	return p
}

// WithStyle returns the panel framed by style instead of the default panel
// style.
func (p Panel) WithStyle(style lipgloss.Style) Panel {
	p.style = &style
	return p
}

// WithStyles returns the panel with custom styles.
func (p Panel) WithStyles(styles ui.Styles) Panel {
	p.styles = styles
	return p
}

// View renders the panel.
func (p Panel) View() string {
	var frame lipgloss.Style
	switch {
	case p.style != nil:
		frame = p.style.Width(p.width - 4)
	case p.hasBorder:
		frame = p.styles.Panel.Width(p.width - 4)
	default:
		frame = lipgloss.NewStyle().Width(p.width).Padding(0, 1)
	}

	var b strings.Builder
	if p.title != "" {
		b.WriteString(p.styles.PanelTitle.Render(p.title))
	}
	for i, line := range p.lines {
		if i > 0 || p.title != "" {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return frame.Render(b.String())
}
