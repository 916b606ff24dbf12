package memdom

import (
	"sort"
	"strings"

	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// Default layout box of created elements.
const (
	DefaultWidth  = 100
	DefaultHeight = 20
)

// Node is an element of an in-memory document.
type Node struct {
	doc        *Document
	tag        string
	attrs      map[string]string
	parent     *Node
	lastParent *Node
	children   []*Node

	width, height float64
	rects         []ports.Rect
	hidden        bool
	display       string
	style         map[string]string
	value         string

	listeners map[string][]*listener
}

type listener struct {
	fn      func()
	removed bool
}

// Tag returns the element's tag name.
func (n *Node) Tag() string { return n.tag }

// ID returns the element's id attribute.
func (n *Node) ID() string { return n.attrs["id"] }

// Classes returns the element's class list.
func (n *Node) Classes() []string { return strings.Fields(n.attrs["class"]) }

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// SetAttr sets an attribute value.
func (n *Node) SetAttr(name, value string) *Node {
	n.attrs[name] = value
	return n
}

// SetID sets the id attribute.
func (n *Node) SetID(id string) *Node { return n.SetAttr("id", id) }

// AddClass appends a class to the class list.
func (n *Node) AddClass(class string) *Node {
	classes := n.Classes()
	for _, c := range classes {
		if c == class {
			return n
		}
	}
	return n.SetAttr("class", strings.Join(append(classes, class), " "))
}

// Label returns a short selector-like description of the node.
func (n *Node) Label() string {
	var b strings.Builder
	b.WriteString(n.tag)
	if id := n.ID(); id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range n.Classes() {
		b.WriteString("." + c)
	}
	return b.String()
}

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Append attaches child as the last child of n, detaching it first if needed.
func (n *Node) Append(child *Node) *Node {
	if child.parent != nil {
		child.Remove()
	}
	n.appendChild(child)
	return n
}

func (n *Node) appendChild(child *Node) {
	child.parent = n
	child.lastParent = n
	n.children = append(n.children, child)
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Reattach appends n back to the parent it was last removed from.
func (n *Node) Reattach() bool {
	if n.parent != nil || n.lastParent == nil {
		return false
	}
	n.lastParent.appendChild(n)
	return true
}

// Connected reports whether n is attached to its document's tree.
func (n *Node) Connected() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == n.doc.root {
			return true
		}
	}
	return false
}

// SetBox sets the layout box size.
func (n *Node) SetBox(width, height float64) *Node {
	n.width, n.height = width, height
	return n
}

// SetClientRects sets the client rectangles reported independently of the box.
func (n *Node) SetClientRects(rects ...ports.Rect) *Node {
	n.rects = rects
	return n
}

// Hide makes the element render nothing without detaching it.
func (n *Node) Hide() { n.hidden = true }

// Show undoes Hide.
func (n *Node) Show() { n.hidden = false }

// Hidden reports whether n or any ancestor is hidden or displayed as none.
func (n *Node) Hidden() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.hidden || cur.display == ports.DisplayNone {
			return true
		}
	}
	return false
}

// OffsetSize returns the rendered box, zero when hidden or detached.
func (n *Node) OffsetSize() (float64, float64) {
	if n.Hidden() || !n.Connected() {
		return 0, 0
	}
	return n.width, n.height
}

// ClientRects returns the client rectangles, none when hidden or detached.
func (n *Node) ClientRects() []ports.Rect {
	if n.Hidden() || !n.Connected() {
		return nil
	}
	out := make([]ports.Rect, len(n.rects))
	copy(out, n.rects)
	return out
}

// Display returns the inline display style.
func (n *Node) Display() string { return n.display }

// SetDisplay writes the inline display style.
func (n *Node) SetDisplay(value string) { n.display = value }

// SetStyle sets a computed style property.
func (n *Node) SetStyle(property, value string) *Node {
	if value == "" {
		delete(n.style, property)
	} else {
		n.style[property] = value
	}
	return n
}

// ComputedStyle returns the computed style. animation-name defaults to "none".
func (n *Node) ComputedStyle(property string) string {
	if v, ok := n.style[property]; ok {
		return v
	}
	if property == ports.StyleAnimationName {
		return "none"
	}
	return ""
}

// StartTransition marks the element as transitioning with declaration decl.
func (n *Node) StartTransition(decl string) {
	if decl == "" {
		decl = "all 0.3s ease"
	}
	n.SetStyle(ports.StyleTransition, decl)
}

// StartAnimation marks the element as running the named keyframe animation.
func (n *Node) StartAnimation(name string) {
	n.SetStyle(ports.StyleAnimationName, name)
}

// Animating reports whether a transition or animation is in flight.
func (n *Node) Animating() bool {
	return n.ComputedStyle(ports.StyleAnimationName) != "none" || n.ComputedStyle(ports.StyleTransition) != ""
}

// FinishTransition clears in-flight transitions and animations and dispatches
// the document's completion event.
func (n *Node) FinishTransition() {
	delete(n.style, ports.StyleTransition)
	delete(n.style, ports.StyleAnimationName)
	n.Dispatch(n.doc.transitionEvent)
}

// Value returns the input value.
func (n *Node) Value() string { return n.value }

// SetValue replaces the value without dispatching input events.
func (n *Node) SetValue(v string) *Node {
	n.value = v
	return n
}

// Type appends text and dispatches one input event per character.
func (n *Node) Type(text string) {
	for _, r := range text {
		n.value += string(r)
		n.Dispatch(ports.EventInput)
	}
}

// Backspace removes the last character and dispatches an input event.
func (n *Node) Backspace() {
	if n.value == "" {
		return
	}
	r := []rune(n.value)
	n.value = string(r[:len(r)-1])
	n.Dispatch(ports.EventInput)
}

// Clear empties the value and dispatches an input event.
func (n *Node) Clear() {
	n.value = ""
	n.Dispatch(ports.EventInput)
}

// AddEventListener subscribes fn to event.
func (n *Node) AddEventListener(event string, fn func()) func() {
	l := &listener{fn: fn}
	n.listeners[event] = append(n.listeners[event], l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		list := n.listeners[event]
		for i, cur := range list {
			if cur == l {
				n.listeners[event] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// ListenerCount returns the number of live listeners for event.
func (n *Node) ListenerCount(event string) int {
	return len(n.listeners[event])
}

// ListenedEvents returns the events with live listeners, sorted.
func (n *Node) ListenedEvents() []string {
	var out []string
	for ev, list := range n.listeners {
		if len(list) > 0 {
			out = append(out, ev)
		}
	}
	sort.Strings(out)
	return out
}

// Dispatch invokes the listeners registered for event. Listeners removed
// during dispatch are skipped.
func (n *Node) Dispatch(event string) {
	snapshot := make([]*listener, len(n.listeners[event]))
	copy(snapshot, n.listeners[event])
	for _, l := range snapshot {
		if !l.removed {
			l.fn()
		}
	}
}

// QuerySelector returns the first descendant of n matching selector.
func (n *Node) QuerySelector(selector string) (ports.Element, bool) {
	found := n.Find(selector)
	if found == nil {
		return nil, false
	}
	return found, true
}

// Find is QuerySelector returning the concrete node, or nil.
func (n *Node) Find(selector string) *Node {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil
	}
	return n.first(sel, true)
}

func (n *Node) first(sel Selector, descendantsOnly bool) *Node {
	var found *Node
	n.walkUntil(func(cur *Node) bool {
		if descendantsOnly && cur == n {
			return false
		}
		if sel.Matches(cur) {
			found = cur
			return true
		}
		return false
	})
	return found
}

func (n *Node) walk(fn func(*Node)) {
	n.walkUntil(func(cur *Node) bool {
		fn(cur)
		return false
	})
}

// walkUntil visits n and its descendants in document order until fn returns true.
func (n *Node) walkUntil(fn func(*Node) bool) bool {
	if fn(n) {
		return true
	}
	for _, c := range n.children {
		if c.walkUntil(fn) {
			return true
		}
	}
	return false
}

var _ ports.Element = (*Node)(nil)
