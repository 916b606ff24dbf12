package ports

// Display values written to button-bar elements.
const (
	DisplayNone  = "none"
	DisplayBlock = "block"
)

// DOM event names the engine subscribes to.
const (
	// EventInput is dispatched by text-bearing elements on every keystroke.
	EventInput = "input"
	// EventClick is dispatched when a painted button is pressed.
	EventClick = "click"
)

// Computed style properties read by the animation oracle.
const (
	StyleAnimationName = "animation-name"
	StyleTransition    = "transition"
)

// Rect is a client rectangle in page coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Element is a concrete node of the observed document.
//
// Implementations are not required to be safe for concurrent use; the engine
// only touches elements from its scheduler's executor.
type Element interface {
	// Connected reports whether the element is attached to the document tree.
	Connected() bool

	// OffsetSize returns the rendered width and height of the layout box.
	OffsetSize() (width, height float64)

	// ClientRects returns the element's client rectangles.
	ClientRects() []Rect

	// ComputedStyle returns the computed value of a style property, or "" if unset.
	ComputedStyle(property string) string

	// Value returns the current value of a text-bearing element.
	Value() string

	// SetDisplay writes the element's inline display style.
	SetDisplay(value string)

	// QuerySelector returns the first descendant matching selector.
	QuerySelector(selector string) (Element, bool)

	// AddEventListener subscribes fn to the named event. The returned function
	// removes the subscription and may be called any number of times.
	AddEventListener(event string, fn func()) (remove func())
}

// Document is the root the engine resolves selectors against.
type Document interface {
	// QuerySelector returns the first element in document order matching selector.
	QuerySelector(selector string) (Element, bool)

	// CreateScratch creates a detached, offscreen element for feature probes.
	CreateScratch() ScratchElement
}

// ScratchElement is a throwaway element used to probe style support.
type ScratchElement interface {
	// SupportsStyle reports whether the style property is defined on the element.
	SupportsStyle(property string) bool

	// Remove discards the element.
	Remove()
}
