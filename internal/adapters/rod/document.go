package rod

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/waypoint/internal/adapters/walkthrough"
	"github.com/felixgeelhaar/waypoint/internal/ports"
	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// bindingName is the page function in-page event handlers call.
const bindingName = "__waypointEvent"

// ClassCaption is the class of the step caption painted into the button bar.
const ClassCaption = "waypoint-caption"

// Document is a browser page seen through the engine's DOM boundary. Queries
// never wait: a selector that matches nothing right now is reported as
// missing, and the engine's polling retries it.
type Document struct {
	page      *rod.Page
	logger    ports.Logger
	listeners *listeners
	stop      func() error
	caption   *rod.Element
}

// NewDocument wraps page and exposes the listener binding on it.
func NewDocument(page *rod.Page, logger ports.Logger) (*Document, error) {
	d := &Document{
		page:      page,
		logger:    ports.OrNop(logger),
		listeners: newListeners(),
	}
	stop, err := page.Expose(bindingName, d.listeners.call)
	if err != nil {
		return nil, fmt.Errorf("expose listener binding: %w", err)
	}
	d.stop = stop
	return d, nil
}

// Bind routes event listener callbacks through post. Until Bind is called
// they run on the browser's event goroutine.
func (d *Document) Bind(post func(fn func()) bool) {
	d.listeners.setDispatch(post)
}

// QuerySelector returns the first element in the page matching selector.
func (d *Document) QuerySelector(selector string) (ports.Element, bool) {
	has, el, err := d.page.Has(selector)
	if err != nil {
		d.debug("query failed", ports.F("selector", selector), ports.F("error", err))
		return nil, false
	}
	if !has {
		return nil, false
	}
	return &Element{doc: d, el: el}, true
}

// CreateScratch creates a detached div for style probes.
func (d *Document) CreateScratch() ports.ScratchElement {
	el, err := d.page.ElementByJS(rod.Eval(jsCreateScratch))
	if err != nil {
		d.debug("scratch element failed", ports.F("error", err))
		return scratch{}
	}
	return scratch{doc: d, el: el}
}

// PaintButtons appends a fixed navigation bar to the page and returns its
// elements.
func (d *Document) PaintButtons() (ports.ButtonBar, error) {
	bar, err := d.page.ElementByJS(rod.Eval(jsPaintButtons,
		walkthrough.ClassButtons, walkthrough.ClassPrevious, walkthrough.ClassNext, ClassCaption))
	if err != nil {
		return ports.ButtonBar{}, fmt.Errorf("paint buttons: %w", err)
	}

	find := func(class string) (*rod.Element, error) {
		has, el, err := bar.Has("." + class)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, fmt.Errorf("painted bar has no .%s", class)
		}
		return el, nil
	}
	prev, err := find(walkthrough.ClassPrevious)
	if err != nil {
		return ports.ButtonBar{}, fmt.Errorf("paint buttons: %w", err)
	}
	next, err := find(walkthrough.ClassNext)
	if err != nil {
		return ports.ButtonBar{}, fmt.Errorf("paint buttons: %w", err)
	}
	if d.caption, err = find(ClassCaption); err != nil {
		return ports.ButtonBar{}, fmt.Errorf("paint buttons: %w", err)
	}

	return ports.ButtonBar{
		Previous: &Element{doc: d, el: prev},
		Next:     &Element{doc: d, el: next},
		Bar:      &Element{doc: d, el: bar},
	}, nil
}

// Caption shows text in the painted button bar. It does nothing before
// PaintButtons.
func (d *Document) Caption(text string) {
	if d.caption == nil {
		return
	}
	d.eval(d.caption, jsSetText, text)
}

// Close removes the listener binding and closes the tab.
func (d *Document) Close() error {
	if d.stop != nil {
		if err := d.stop(); err != nil {
			d.debug("remove listener binding failed", ports.F("error", err))
		}
	}
	return d.page.Close()
}

// eval runs js on el and reports false when the call failed, which happens
// for elements whose page has navigated away.
func (d *Document) eval(el *rod.Element, js string, args ...interface{}) (gson.JSON, bool) {
	res, err := el.Eval(js, args...)
	if err != nil {
		d.debug("element eval failed", ports.F("error", err))
		return gson.JSON{}, false
	}
	return res.Value, true
}

func (d *Document) debug(msg string, fields ...ports.Field) {
	d.logger.Debug(context.Background(), msg, fields...)
}

// scratch is a probe element. Its zero value supports nothing.
type scratch struct {
	doc *Document
	el  *rod.Element
}

func (s scratch) SupportsStyle(property string) bool {
	if s.el == nil {
		return false
	}
	v, ok := s.doc.eval(s.el, jsSupportsStyle, property)
	return ok && v.Bool()
}

func (s scratch) Remove() {
	if s.el == nil {
		return
	}
	if err := s.el.Remove(); err != nil {
		s.doc.debug("scratch remove failed", ports.F("error", err))
	}
}

var _ ports.Document = (*Document)(nil)
