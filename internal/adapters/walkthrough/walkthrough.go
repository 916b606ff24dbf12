// Package walkthrough is a reference tour renderer. It keeps the current
// step index, paints the tooltip's navigation buttons into a memdom document
// and notifies listeners when the step changes or the tour ends.
package walkthrough

import (
	"errors"

	"github.com/felixgeelhaar/waypoint/internal/adapters/memdom"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// ErrNoSteps is returned by Start when no steps were set.
var ErrNoSteps = errors.New("walkthrough has no steps")

// Class names of the painted tooltip elements.
const (
	ClassTooltip  = "waypoint-tooltip"
	ClassButtons  = "waypoint-buttons"
	ClassPrevious = "waypoint-prev"
	ClassNext     = "waypoint-next"
)

// Walkthrough renders a tour one step at a time.
type Walkthrough struct {
	steps     []*tour.Step
	current   int
	running   bool
	completed bool
	buttons   ports.ButtonBar

	afterChange []func(index int)
	onExit      []func()
}

// New creates a walkthrough rendering into buttons.
func New(buttons ports.ButtonBar) *Walkthrough {
	return &Walkthrough{buttons: buttons, current: -1}
}

// SetSteps replaces the steps. It has no effect while running.
func (w *Walkthrough) SetSteps(steps []*tour.Step) {
	if w.running {
		return
	}
	w.steps = steps
}

// Steps returns the configured steps.
func (w *Walkthrough) Steps() []*tour.Step { return w.steps }

// OnAfterStepChange registers fn to run after each step becomes current.
func (w *Walkthrough) OnAfterStepChange(fn func(index int)) {
	w.afterChange = append(w.afterChange, fn)
}

// OnExit registers fn to run when the walkthrough ends.
func (w *Walkthrough) OnExit(fn func()) {
	w.onExit = append(w.onExit, fn)
}

// Start shows the first step.
func (w *Walkthrough) Start() error {
	if len(w.steps) == 0 {
		return ErrNoSteps
	}
	w.running = true
	w.completed = false
	w.goTo(0)
	return nil
}

// Next shows the following step. On the last step it completes the tour.
func (w *Walkthrough) Next() {
	if !w.running {
		return
	}
	if w.current >= len(w.steps)-1 {
		w.completed = true
		w.Exit()
		return
	}
	w.goTo(w.current + 1)
}

// Previous shows the preceding step. It does nothing on the first step.
func (w *Walkthrough) Previous() {
	if !w.running || w.current <= 0 {
		return
	}
	w.goTo(w.current - 1)
}

// GoTo shows the step at index. Out-of-range indexes are ignored.
func (w *Walkthrough) GoTo(index int) {
	if !w.running || index < 0 || index >= len(w.steps) {
		return
	}
	w.goTo(index)
}

// Exit ends the walkthrough. Calling it when not running does nothing.
func (w *Walkthrough) Exit() {
	if !w.running {
		return
	}
	w.running = false
	for _, fn := range w.onExit {
		fn()
	}
}

// Buttons returns the navigation elements.
func (w *Walkthrough) Buttons() ports.ButtonBar { return w.buttons }

// CurrentStep returns the current step index, -1 before Start.
func (w *Walkthrough) CurrentStep() int { return w.current }

// Running reports whether the walkthrough is showing a step.
func (w *Walkthrough) Running() bool { return w.running }

// Completed reports whether the walkthrough ended by advancing past its last
// step.
func (w *Walkthrough) Completed() bool { return w.completed }

func (w *Walkthrough) goTo(index int) {
	w.current = index
	for _, fn := range w.afterChange {
		// a listener may have moved or ended the walkthrough
		if !w.running || w.current != index {
			return
		}
		fn(index)
	}
}

// PaintButtons appends the tooltip's button bar to doc's body and returns
// the painted elements.
func PaintButtons(doc *memdom.Document) ports.ButtonBar {
	prev := doc.CreateElement("button").AddClass(ClassPrevious).SetBox(60, 24)
	next := doc.CreateElement("button").AddClass(ClassNext).SetBox(60, 24)
	bar := doc.CreateElement("div").AddClass(ClassButtons).SetBox(200, 32)
	bar.Append(prev).Append(next)

	tooltip := doc.CreateElement("div").AddClass(ClassTooltip).SetBox(240, 120)
	tooltip.Append(bar)
	doc.Body().Append(tooltip)

	return ports.ButtonBar{Previous: prev, Next: next, Bar: bar}
}
