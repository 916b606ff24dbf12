package rod

import (
	"github.com/felixgeelhaar/waypoint/internal/ports"
	"github.com/go-rod/rod"
)

// Element is a node of a browser page. Every accessor is one in-page
// evaluation; a failed evaluation reads as a detached, empty element.
type Element struct {
	doc *Document
	el  *rod.Element
}

// Connected reports whether the element is attached to the page.
func (e *Element) Connected() bool {
	v, ok := e.doc.eval(e.el, jsConnected)
	return ok && v.Bool()
}

// OffsetSize returns offsetWidth and offsetHeight.
func (e *Element) OffsetSize() (width, height float64) {
	v, ok := e.doc.eval(e.el, jsOffsetSize)
	if !ok {
		return 0, 0
	}
	size := v.Arr()
	if len(size) != 2 {
		return 0, 0
	}
	return size[0].Num(), size[1].Num()
}

// ClientRects returns getClientRects().
func (e *Element) ClientRects() []ports.Rect {
	v, ok := e.doc.eval(e.el, jsClientRects)
	if !ok {
		return nil
	}
	var rects []ports.Rect
	for _, r := range v.Arr() {
		rects = append(rects, ports.Rect{
			X:      r.Get("x").Num(),
			Y:      r.Get("y").Num(),
			Width:  r.Get("width").Num(),
			Height: r.Get("height").Num(),
		})
	}
	return rects
}

// ComputedStyle returns the computed value of property. A transition whose
// durations are all zero reads as "".
func (e *Element) ComputedStyle(property string) string {
	v, ok := e.doc.eval(e.el, jsComputedStyle, property)
	if !ok {
		return ""
	}
	return v.Str()
}

// Value returns the value of a form control, or "".
func (e *Element) Value() string {
	v, ok := e.doc.eval(e.el, jsValue)
	if !ok {
		return ""
	}
	return v.Str()
}

// SetDisplay writes the inline display style.
func (e *Element) SetDisplay(value string) {
	e.doc.eval(e.el, jsSetDisplay, value)
}

// Display returns the inline display style, or the computed one when unset.
func (e *Element) Display() string {
	v, ok := e.doc.eval(e.el, jsDisplay)
	if !ok {
		return ports.DisplayNone
	}
	return v.Str()
}

// QuerySelector returns the first descendant matching selector.
func (e *Element) QuerySelector(selector string) (ports.Element, bool) {
	has, el, err := e.el.Has(selector)
	if err != nil {
		e.doc.debug("query failed", ports.F("selector", selector), ports.F("error", err))
		return nil, false
	}
	if !has {
		return nil, false
	}
	return &Element{doc: e.doc, el: el}, true
}

// AddEventListener installs an in-page handler that calls fn back through
// the document's listener binding.
func (e *Element) AddEventListener(event string, fn func()) (remove func()) {
	id := e.doc.listeners.add(fn)
	if _, ok := e.doc.eval(e.el, jsAddListener, event, id, bindingName); !ok {
		e.doc.listeners.remove(id)
		return func() {}
	}
	return func() {
		if e.doc.listeners.remove(id) {
			e.doc.eval(e.el, jsRemoveListener, id)
		}
	}
}

var _ ports.Element = (*Element)(nil)
