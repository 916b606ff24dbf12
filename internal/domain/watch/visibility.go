package watch

import (
	"time"

	"github.com/felixgeelhaar/waypoint/internal/domain/dom"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// WaitVisible calls onReady once the anchor resolves to a visible element.
//
// The anchor is re-resolved on every poll because it may not exist yet. Once
// visible, an in-flight transition or animation is waited out through a
// one-shot completion listener, then delay (if positive) is applied. Without
// a delay onReady runs synchronously, which for an already visible, idle
// target means before WaitVisible returns.
func (w *Watchers) WaitVisible(anchor tour.Anchor, delay time.Duration, onReady func()) *Handle {
	h := newHandle(KindVisibility)

	found := func(el ports.Element) {
		if !dom.IsAnimating(el) {
			w.afterDelay(h, delay, onReady)
			return
		}

		event := w.transitionEvent()
		var remove func()
		remove = el.AddEventListener(event, func() {
			remove()
			if !h.Active() {
				return
			}
			w.afterDelay(h, delay, onReady)
		})
		h.onCancel(remove)
	}

	if el, ok := dom.Resolve(w.doc, anchor); ok && dom.IsVisible(el) {
		found(el)
		return h
	}

	var timer ports.Timer
	timer = w.sched.Every(w.poll, func() {
		if !h.Active() {
			return
		}
		el, ok := dom.Resolve(w.doc, anchor)
		if !ok || !dom.IsVisible(el) {
			return
		}
		timer.Stop()
		found(el)
	})
	h.onCancel(timer.Stop)

	return h
}
