package dom

import (
	"sync"

	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// TransitionEndDefault is the unprefixed completion event name.
const TransitionEndDefault = "transitionend"

// transitionCandidates maps style properties to completion events, in the
// order they are probed.
var transitionCandidates = []struct {
	property string
	event    string
}{
	{"transition", "transitionend"},
	{"OTransition", "oTransitionEnd"},
	{"MozTransition", "transitionend"},
	{"WebkitTransition", "webkitTransitionEnd"},
}

// TransitionProbe detects the transition-completion event name once and
// caches it for its lifetime.
type TransitionProbe struct {
	once  sync.Once
	event string
}

// EventName returns the detected event name, probing doc on the first call.
// Later calls ignore doc.
func (p *TransitionProbe) EventName(doc ports.Document) string {
	p.once.Do(func() {
		p.event = detectTransitionEvent(doc)
	})
	return p.event
}

func detectTransitionEvent(doc ports.Document) string {
	if doc == nil {
		return TransitionEndDefault
	}

	scratch := doc.CreateScratch()
	defer scratch.Remove()

	for _, c := range transitionCandidates {
		if scratch.SupportsStyle(c.property) {
			return c.event
		}
	}
	return TransitionEndDefault
}

var processProbe TransitionProbe

// TransitionEndEvent returns the process-wide completion event name, detected
// against doc the first time any caller asks.
func TransitionEndEvent(doc ports.Document) string {
	return processProbe.EventName(doc)
}
