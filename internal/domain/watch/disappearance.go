package watch

import (
	"time"

	"github.com/felixgeelhaar/waypoint/internal/domain/dom"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// WatchDisappearance polls the anchor's element and calls onGone once, the
// first time it is detached from the document or invisible. It returns nil
// when the anchor does not resolve.
//
// With a positive grace, detachment still fires on the next poll but
// invisibility must persist for grace before it counts, so an anchor that is
// briefly hidden while it animates in does not end the walkthrough.
func (w *Watchers) WatchDisappearance(anchor tour.Anchor, grace time.Duration, onGone func()) *Handle {
	el, ok := dom.Resolve(w.doc, anchor)
	if !ok {
		w.debug("anchor not found; disappearance monitor skipped", ports.F(ports.FieldSelector, anchor.String()))
		return nil
	}

	h := newHandle(KindDisappearance)
	var hiddenSince time.Time

	timer := w.sched.Every(w.poll, func() {
		if !h.Active() {
			return
		}
		if !el.Connected() {
			w.debug("anchor detached", ports.F(ports.FieldSelector, anchor.String()))
			h.fire(onGone)
			return
		}
		if dom.IsVisible(el) {
			hiddenSince = time.Time{}
			return
		}
		if grace > 0 {
			now := w.sched.Now()
			if hiddenSince.IsZero() {
				hiddenSince = now
				return
			}
			if now.Sub(hiddenSince) < grace {
				return
			}
		}
		w.debug("anchor hidden", ports.F(ports.FieldSelector, anchor.String()))
		h.fire(onGone)
	})
	h.onCancel(timer.Stop)

	return h
}
