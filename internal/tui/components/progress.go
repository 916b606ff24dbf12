package components

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/waypoint/internal/tui/ui"
)

// Progress displays how far through a walkthrough the user is.
type Progress struct {
	current int
	total   int
	message string
	width   int
	styles  ui.Styles
}

// NewProgress creates a new progress component.
func NewProgress() Progress {
	return Progress{
		width:  30,
		styles: ui.DefaultStyles(),
	}
}

// Current returns the number of steps reached.
func (p Progress) Current() int {
	return p.current
}

// Total returns the number of steps.
func (p Progress) Total() int {
	return p.total
}

// Percent returns the completed fraction (0.0 to 1.0).
func (p Progress) Percent() float64 {
	if p.total <= 0 {
		return 0
	}
	return float64(p.current) / float64(p.total)
}

// SetSteps sets the reached and total step counts, clamping current into
// range.
func (p Progress) SetSteps(current, total int) Progress {
	if total < 0 {
		total = 0
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	p.current, p.total = current, total
	return p
}

// SetMessage sets the status message.
func (p Progress) SetMessage(message string) Progress {
	p.message = message
	return p
}

// WithWidth sets the bar width.
func (p Progress) WithWidth(width int) Progress {
	p.width = width
	return p
}

// View renders the progress bar.
func (p Progress) View() string {
	var b strings.Builder

	barWidth := p.width - 2
	if barWidth < 0 {
		barWidth = 0
	}
	filled := int(p.Percent() * float64(barWidth))
	bar := fmt.Sprintf("[%s%s]", strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled))

	b.WriteString(p.styles.ProgressBar.Render(bar))
	fmt.Fprintf(&b, " %d/%d", p.current, p.total)

	if p.message != "" {
		b.WriteString(" ")
		b.WriteString(p.styles.Help.Render(p.message))
	}
	return b.String()
}
