package ui

import "time"

// Default playground dimensions.
const (
	// DefaultWidth is the assumed terminal width before the first resize.
	DefaultWidth = 100

	// DefaultHeight is the assumed terminal height before the first resize.
	DefaultHeight = 30

	// DefaultEventRows is how many recent session events are listed.
	DefaultEventRows = 6

	// DefaultInputCharLimit caps text typed into a page input.
	DefaultInputCharLimit = 200
)

// RefreshInterval is how often the playground re-reads the session so
// watcher-driven changes show up without a key press.
const RefreshInterval = 100 * time.Millisecond
