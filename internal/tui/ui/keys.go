package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap contains the playground key bindings. It implements help.KeyMap.
type KeyMap struct {
	// Element selection
	Up      key.Binding
	Down    key.Binding
	VimUp   key.Binding
	VimDown key.Binding

	// Walkthrough navigation
	Next key.Binding
	Prev key.Binding
	Exit key.Binding

	// Page mutations on the selected element
	Toggle  key.Binding
	Detach  key.Binding
	Type    key.Binding
	Clear   key.Binding
	Animate key.Binding
	Finish  key.Binding

	// Text entry
	Submit key.Binding
	Cancel key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		VimUp: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "up"),
		),
		VimDown: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "down"),
		),

		Next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next step"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "previous step"),
		),
		Exit: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "exit tour"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "show/hide"),
		),
		Detach: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove/attach"),
		),
		Type: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "type"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Animate: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "animate"),
		),
		Finish: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "finish animation"),
		),

		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send text"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// IsUp returns true if the key message matches an up navigation key.
func (k KeyMap) IsUp(msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Up) || key.Matches(msg, k.VimUp)
}

// IsDown returns true if the key message matches a down navigation key.
func (k KeyMap) IsDown(msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Down) || key.Matches(msg, k.VimDown)
}

// ShortHelp returns the bindings shown in the collapsed help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Toggle, k.Type, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev, k.Exit},
		{k.Toggle, k.Detach, k.Type, k.Clear},
		{k.Animate, k.Finish, k.Help, k.Quit},
	}
}
