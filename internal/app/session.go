package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// ErrNoElement is returned when an action names an element index outside the
// page.
var ErrNoElement = errors.New("no such page element")

// ErrLivePage is returned when an element action targets a live page, whose
// elements belong to the browser.
var ErrLivePage = errors.New("element actions are unavailable on a live page")

// LivePage is a document owned by a real browser. Its event listeners run
// through the function passed to Bind, and it paints its own navigation.
type LivePage interface {
	ports.Document
	Bind(post func(fn func()) bool)
	PaintButtons() (ports.ButtonBar, error)
	Caption(text string)
}

// Session is a live walkthrough over a page, driven on a real event loop.
// Its methods are safe for concurrent use; each one runs on the loop.
type Session struct {
	exec *loopExecutor
	r    *run
}

// ElementView describes one page element.
type ElementView struct {
	Label     string
	Attached  bool
	Hidden    bool
	Animating bool
	Value     string
}

// HintView describes a hint of the current step.
type HintView struct {
	Selector string
	Text     string
	Resolved bool
}

// Snapshot is a consistent view of a session taken on its event loop.
type Snapshot struct {
	TourName   string
	Steps      int
	Step       int
	Current    *tour.Step
	Hints      []HintView
	Running    bool
	Live       bool
	State      State
	Progress   tour.Progress
	Buttons    ButtonsView
	Generation *GenerationInfo
	Elements   []ElementView
	Events     []SimEvent
}

// ButtonsView reports which navigation elements are displayed.
type ButtonsView struct {
	Previous bool
	Next     bool
	Bar      bool
}

// StartSession starts a walkthrough of t over page. The page belongs to the
// session from then on. Close releases the event loop.
func StartSession(ctx context.Context, t *tour.Tour, page *Page, opts ControllerOptions) (*Session, error) {
	if err := t.Validate(); err != nil {
		return nil, config.NewUserError(config.ErrCodeTourInvalid, err.Error())
	}
	return launchSession(ctx, &run{page: page, tour: t.Clone()}, opts)
}

// StartLiveSession starts a walkthrough of t over a browser page. Page
// events are posted to the session's event loop. Close leaves the page
// open.
func StartLiveSession(ctx context.Context, t *tour.Tour, page LivePage, opts ControllerOptions) (*Session, error) {
	if err := t.Validate(); err != nil {
		return nil, config.NewUserError(config.ErrCodeTourInvalid, err.Error())
	}
	return launchSession(ctx, &run{live: page, tour: t.Clone()}, opts)
}

func launchSession(ctx context.Context, r *run, opts ControllerOptions) (*Session, error) {
	exec := startLoopExecutor(ctx)
	r.exec = exec
	if r.live != nil {
		r.live.Bind(exec.Post)
	}

	var startErr error
	if err := exec.Do(ctx, func() { startErr = r.start(opts) }); err != nil {
		exec.close()
		return nil, err
	}
	if startErr != nil {
		exec.close()
		return nil, startErr
	}
	return &Session{exec: exec, r: r}, nil
}

// Navigate applies a next, prev or exit action.
func (s *Session) Navigate(ctx context.Context, kind config.ActionKind) error {
	if kind.NeedsTarget() {
		return fmt.Errorf("action %q needs an element", kind)
	}
	return s.exec.Do(ctx, func() { s.r.apply(config.Action{Kind: kind}) })
}

// Act applies an element action to the page element at index, in the order
// elements were built.
func (s *Session) Act(ctx context.Context, index int, kind config.ActionKind, value string) error {
	if !kind.NeedsTarget() {
		return s.Navigate(ctx, kind)
	}

	var err error
	doErr := s.exec.Do(ctx, func() {
		if s.r.page == nil {
			err = ErrLivePage
			s.r.record(EventKindSkip, err.Error())
			return
		}
		if index < 0 || index >= len(s.r.page.nodes) {
			err = ErrNoElement
			return
		}
		n := s.r.page.nodes[index]
		a := config.Action{Kind: kind, Target: n.Label(), Value: value}
		s.r.record(EventKindAction, describeAction(a))
		applyToNode(n, a, func(reason string) { s.r.record(EventKindSkip, reason) })
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Snapshot captures the session state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.exec.Do(ctx, func() { snap = s.r.snapshot() })
	return snap, err
}

// Close stops the event loop. Pending watchers never fire afterwards.
func (s *Session) Close() {
	s.exec.close()
}

func (r *run) snapshot() Snapshot {
	snap := Snapshot{
		TourName: r.tour.Name,
		Steps:    r.tour.Len(),
		Step:     r.wt.CurrentStep(),
		Running:  r.wt.Running(),
		Live:     r.live != nil,
		State:    r.ctrl.State(),
		Progress: r.ctrl.Progress(),
		Events:   append([]SimEvent(nil), r.events...),
	}

	if step := r.tour.Step(snap.Step); step != nil {
		cp := *step
		cp.Hints = append([]tour.Hint(nil), step.Hints...)
		snap.Current = &cp
		for _, h := range step.Hints {
			snap.Hints = append(snap.Hints, HintView{
				Selector: h.Anchor.Selector,
				Text:     h.Text,
				Resolved: h.Anchor.Resolved(),
			})
		}
	}

	bar := r.wt.Buttons()
	snap.Buttons = ButtonsView{
		Previous: displayed(bar.Previous),
		Next:     displayed(bar.Next),
		Bar:      displayed(bar.Bar),
	}

	if gen, ok := r.ctrl.Generation(); ok {
		snap.Generation = &gen
	}

	if r.page == nil {
		return snap
	}
	for _, n := range r.page.nodes {
		snap.Elements = append(snap.Elements, ElementView{
			Label:     n.Label(),
			Attached:  n.Connected(),
			Hidden:    n.Hidden(),
			Animating: n.Animating(),
			Value:     n.Value(),
		})
	}
	return snap
}

func displayed(el ports.Element) bool {
	type displayer interface{ Display() string }
	if d, ok := el.(displayer); ok {
		return d.Display() != ports.DisplayNone
	}
	return el != nil
}
