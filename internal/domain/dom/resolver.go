// Package dom answers the engine's questions about the observed document:
// which element an anchor refers to, whether it is visible, whether it is
// animating, and which event signals the end of a transition.
package dom

import (
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// Resolve returns the element an anchor refers to. A concrete element is
// returned unchanged; a selector is resolved with a first-match document query.
func Resolve(doc ports.Document, a tour.Anchor) (ports.Element, bool) {
	if a.Element != nil {
		return a.Element, true
	}
	if a.Selector == "" || doc == nil {
		return nil, false
	}
	return doc.QuerySelector(a.Selector)
}

// ResolveWithin resolves a hint anchor relative to its step's anchor element.
func ResolveWithin(scope ports.Element, a tour.Anchor) (ports.Element, bool) {
	if a.Element != nil {
		return a.Element, true
	}
	if a.Selector == "" || scope == nil {
		return nil, false
	}
	return scope.QuerySelector(a.Selector)
}
