package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrorMsg represents an error that occurred during processing.
type ErrorMsg struct {
	Err error
}

func (e ErrorMsg) Error() string {
	return e.Err.Error()
}

// TickMsg asks the model to refresh its view of the session.
type TickMsg struct {
	At time.Time
}

// NewErrorMsg creates a new error message.
func NewErrorMsg(err error) tea.Msg {
	return ErrorMsg{Err: err}
}

// Tick returns a command that delivers a TickMsg after d.
func Tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg{At: t}
	})
}
