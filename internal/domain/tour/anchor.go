// Package tour defines the walkthrough data model: steps, their anchors and
// hints, and the progress of a run.
package tour

import (
	"fmt"

	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// Anchor references the element a step or hint is positioned against: a
// selector resolved on demand, or an element resolved already. When both are
// set the element wins and the selector is kept for re-resolution.
type Anchor struct {
	Selector string
	Element  ports.Element
}

// Select returns an anchor resolved by selector.
func Select(selector string) Anchor {
	return Anchor{Selector: selector}
}

// At returns an anchor bound to a concrete element.
func At(el ports.Element) Anchor {
	return Anchor{Element: el}
}

// IsZero reports whether the anchor references nothing.
func (a Anchor) IsZero() bool {
	return a.Selector == "" && a.Element == nil
}

// Resolved reports whether the anchor holds a concrete element.
func (a Anchor) Resolved() bool {
	return a.Element != nil
}

// String describes the anchor for logs.
func (a Anchor) String() string {
	switch {
	case a.Element != nil && a.Selector != "":
		return fmt.Sprintf("%s (resolved)", a.Selector)
	case a.Element != nil:
		return "<element>"
	case a.Selector != "":
		return a.Selector
	default:
		return "<none>"
	}
}
