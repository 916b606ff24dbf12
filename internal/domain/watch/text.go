package watch

import (
	"time"

	"github.com/felixgeelhaar/waypoint/internal/domain/dom"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// WaitText calls onSettled once the anchor's field holds text that has not
// changed for debounce. A field that is missing or already non-empty settles
// immediately. Each input event restarts the quiet period; emptying the field
// cancels it until the next keystroke. A non-positive debounce uses the
// configured default.
func (w *Watchers) WaitText(anchor tour.Anchor, debounce time.Duration, onSettled func()) *Handle {
	if debounce <= 0 {
		debounce = w.debounce
	}

	h := newHandle(KindText)

	el, ok := dom.Resolve(w.doc, anchor)
	if !ok || el.Value() != "" {
		h.fire(onSettled)
		return h
	}

	var pending ports.Timer
	stopPending := func() {
		if pending != nil {
			pending.Stop()
			pending = nil
		}
	}

	remove := el.AddEventListener(ports.EventInput, func() {
		if !h.Active() {
			return
		}
		stopPending()
		if el.Value() == "" {
			return
		}
		pending = w.sched.AfterFunc(debounce, func() { h.fire(onSettled) })
	})
	h.onCancel(remove)
	h.onCancel(stopPending)

	return h
}
