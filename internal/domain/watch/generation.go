package watch

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Generation is the set of watcher handles installed for one active step.
type Generation struct {
	id      string
	step    int
	handles []*Handle
}

// NewGeneration creates an empty generation for the step at index.
func NewGeneration(step int) *Generation {
	return &Generation{
		id:   uuid.NewString(),
		step: step,
	}
}

// ID returns the generation's unique identifier.
func (g *Generation) ID() string { return g.id }

// Step returns the index of the step the generation belongs to.
func (g *Generation) Step() int { return g.step }

// Add appends h. Nil handles (watchers that installed nothing) are skipped.
func (g *Generation) Add(h *Handle) {
	if h == nil {
		return
	}
	g.handles = append(g.handles, h)
}

// Len returns the number of handles.
func (g *Generation) Len() int { return len(g.handles) }

// Kinds returns the watcher kinds in install order.
func (g *Generation) Kinds() []string {
	out := make([]string, len(g.handles))
	for i, h := range g.handles {
		out[i] = h.Kind()
	}
	return out
}

// Cancel invokes every handle and clears the generation. A panicking handle
// does not stop the others; panics are returned joined.
func (g *Generation) Cancel() error {
	handles := g.handles
	g.handles = nil

	var errs []error
	for _, h := range handles {
		if err := h.teardown(); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s watcher: %w", h.Kind(), err))
		}
	}
	return errors.Join(errs...)
}
