// Package memdom is an in-memory document implementing the engine's DOM
// boundary. It models attachment, layout boxes, computed animation styles,
// input values and event listeners, which is everything the watchers observe.
package memdom

import (
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// DefaultTransitionEvent is the completion event FinishTransition dispatches
// when the document was not configured otherwise.
const DefaultTransitionEvent = "transitionend"

// Document is the root of an in-memory element tree.
type Document struct {
	root            *Node
	body            *Node
	supportedStyles map[string]bool
	transitionEvent string
	liveScratch     int
	scratchCreated  int
}

// Option configures a Document.
type Option func(*Document)

// WithSupportedStyles sets the style properties scratch elements report as
// supported. The default is the unprefixed "transition" only.
func WithSupportedStyles(props ...string) Option {
	return func(d *Document) {
		d.supportedStyles = make(map[string]bool, len(props))
		for _, p := range props {
			d.supportedStyles[p] = true
		}
	}
}

// WithTransitionEvent sets the event name FinishTransition dispatches.
func WithTransitionEvent(name string) Option {
	return func(d *Document) {
		d.transitionEvent = name
	}
}

// NewDocument creates a document with an html root and an empty body.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		supportedStyles: map[string]bool{"transition": true},
		transitionEvent: DefaultTransitionEvent,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.root = d.newNode("html")
	d.body = d.newNode("body")
	d.root.appendChild(d.body)
	return d
}

// Body returns the body element.
func (d *Document) Body() *Node {
	return d.body
}

// TransitionEvent returns the completion event name FinishTransition dispatches.
func (d *Document) TransitionEvent() string {
	return d.transitionEvent
}

// CreateElement creates a detached element with a default visible box.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(tag)
	n.width, n.height = DefaultWidth, DefaultHeight
	return n
}

func (d *Document) newNode(tag string) *Node {
	return &Node{
		doc:       d,
		tag:       tag,
		attrs:     make(map[string]string),
		style:     make(map[string]string),
		listeners: make(map[string][]*listener),
	}
}

// QuerySelector returns the first element in document order matching selector.
func (d *Document) QuerySelector(selector string) (ports.Element, bool) {
	n := d.Find(selector)
	if n == nil {
		return nil, false
	}
	return n, true
}

// Find is QuerySelector returning the concrete node, or nil.
func (d *Document) Find(selector string) *Node {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	return d.root.first(sel, false)
}

// All returns every attached element in document order, excluding the html
// and body elements.
func (d *Document) All() []*Node {
	var out []*Node
	d.body.walk(func(n *Node) {
		if n != d.body {
			out = append(out, n)
		}
	})
	return out
}

// CreateScratch creates an offscreen probe element.
func (d *Document) CreateScratch() ports.ScratchElement {
	d.liveScratch++
	d.scratchCreated++
	return &scratch{doc: d}
}

// LiveScratchCount returns how many probe elements have not been removed.
func (d *Document) LiveScratchCount() int {
	return d.liveScratch
}

// ScratchCreated returns how many probe elements were ever created.
func (d *Document) ScratchCreated() int {
	return d.scratchCreated
}

type scratch struct {
	doc     *Document
	removed bool
}

func (s *scratch) SupportsStyle(property string) bool {
	return s.doc.supportedStyles[property]
}

func (s *scratch) Remove() {
	if s.removed {
		return
	}
	s.removed = true
	s.doc.liveScratch--
}

var _ ports.Document = (*Document)(nil)
