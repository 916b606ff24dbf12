package dom

import (
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// IsVisible reports whether el renders anything: a positive width, a positive
// height, or at least one client rectangle. Any one signal suffices, so
// zero-box inline elements that still span rectangles count as visible.
func IsVisible(el ports.Element) bool {
	if el == nil {
		return false
	}
	w, h := el.OffsetSize()
	return w > 0 || h > 0 || len(el.ClientRects()) > 0
}

// IsAnimating reports whether el has a keyframe animation or a transition
// declared in its computed style.
func IsAnimating(el ports.Element) bool {
	if el == nil {
		return false
	}
	return el.ComputedStyle(ports.StyleAnimationName) != "none" ||
		el.ComputedStyle(ports.StyleTransition) != ""
}
