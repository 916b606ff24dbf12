package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/adapters/clock"
	"github.com/felixgeelhaar/waypoint/internal/adapters/memdom"
	"github.com/felixgeelhaar/waypoint/internal/adapters/walkthrough"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/dom"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// SimulationEpoch is the virtual start time of every simulated run.
var SimulationEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// EventKind classifies simulation log entries.
type EventKind string

// Simulation log entry kinds.
const (
	EventKindStep   EventKind = "step"
	EventKindAction EventKind = "action"
	EventKindSkip   EventKind = "skip"
	EventKindExit   EventKind = "exit"
)

// SimEvent is one entry of a simulation log.
type SimEvent struct {
	At     time.Duration `json:"at"`
	Kind   EventKind     `json:"kind"`
	Step   int           `json:"step"`
	Detail string        `json:"detail,omitempty"`
}

// SimResult is the outcome of a simulated run.
type SimResult struct {
	Events   []SimEvent    `json:"events"`
	Progress tour.Progress `json:"progress"`
	State    State         `json:"state"`
	Elapsed  time.Duration `json:"elapsed"`
}

// SimulatorOptions configures a Simulator.
type SimulatorOptions struct {
	Controller ControllerOptions
	// Realtime runs the scenario on the wall clock instead of a virtual one.
	Realtime bool
}

// Simulator replays scenarios against tours.
type Simulator struct {
	opts SimulatorOptions
}

// NewSimulator creates a simulator.
func NewSimulator(opts SimulatorOptions) *Simulator {
	return &Simulator{opts: opts}
}

// Run builds the scenario's page, starts a walkthrough of t on it and
// applies the scenario timeline. Replay stops once the walkthrough has ended
// or the scenario's settle time after its last action has passed. The tour
// itself is not modified.
func (s *Simulator) Run(ctx context.Context, t *tour.Tour, sc *config.Scenario) (*SimResult, error) {
	if err := t.Validate(); err != nil {
		return nil, config.NewUserError(config.ErrCodeTourInvalid, err.Error())
	}
	page, err := BuildPage(sc)
	if err != nil {
		return nil, err
	}

	var exec executor
	if s.opts.Realtime {
		exec = startLoopExecutor(ctx)
	} else {
		exec = newVirtualExecutor()
	}
	defer exec.close()

	r := &run{page: page, exec: exec, tour: t.Clone()}
	var startErr error
	if err := exec.runAt(ctx, 0, func() { startErr = r.start(s.opts.Controller) }); err != nil {
		return nil, err
	}
	if startErr != nil {
		return nil, startErr
	}

	var last time.Duration
	for _, a := range sc.Timeline {
		if r.finished.Load() {
			break
		}
		a := a
		if err := exec.runAt(ctx, a.At.Std(), func() {
			if r.wt.Running() {
				r.apply(a)
			}
		}); err != nil {
			return nil, err
		}
		last = a.At.Std()
	}

	var result *SimResult
	if err := exec.runAt(ctx, last+sc.SettleFor(), func() { result = r.result() }); err != nil {
		return nil, err
	}
	return result, nil
}

// run is the state of one simulation. Its methods execute on the executor.
type run struct {
	page *Page
	live LivePage
	exec executor
	tour *tour.Tour
	wt   *walkthrough.Walkthrough
	ctrl *Controller

	events   []SimEvent
	finished atomic.Bool
}

func (r *run) start(opts ControllerOptions) error {
	buttons, err := r.paintButtons()
	if err != nil {
		return err
	}
	r.wt = walkthrough.New(buttons)
	r.wt.SetSteps(r.tour.Steps)

	if opts.Probe == nil {
		opts.Probe = &dom.TransitionProbe{}
	}
	opts.OnFinish = func(p tour.Progress) {
		r.record(EventKindExit, string(p.Outcome))
		r.finished.Store(true)
	}
	ctrl, err := NewController(r.document(), r.exec, r.wt, r.tour.Steps, opts)
	if err != nil {
		return err
	}
	r.ctrl = ctrl

	r.wt.OnAfterStepChange(func(index int) {
		r.record(EventKindStep, stepLabel(r.tour.Steps[index]))
	})
	if r.live != nil {
		r.listenToButtons(buttons)
		r.wt.OnAfterStepChange(func(index int) {
			r.live.Caption(fmt.Sprintf("%d/%d %s", index+1, r.tour.Len(), stepLabel(r.tour.Steps[index])))
		})
	}
	r.wt.OnAfterStepChange(ctrl.AfterStepChange)
	r.wt.OnExit(ctrl.OnExit)

	return r.wt.Start()
}

func (r *run) document() ports.Document {
	if r.live != nil {
		return r.live
	}
	return r.page.Doc
}

func (r *run) paintButtons() (ports.ButtonBar, error) {
	if r.live == nil {
		return walkthrough.PaintButtons(r.page.Doc), nil
	}
	return r.live.PaintButtons()
}

// listenToButtons drives the walkthrough from clicks on a live page's
// painted buttons.
func (r *run) listenToButtons(bar ports.ButtonBar) {
	click := func(el ports.Element, kind config.ActionKind, move func()) {
		if el == nil {
			return
		}
		el.AddEventListener(ports.EventClick, func() {
			if !r.wt.Running() {
				return
			}
			r.record(EventKindAction, string(kind)+" (click)")
			move()
		})
	}
	click(bar.Previous, config.ActionPrev, r.wt.Previous)
	click(bar.Next, config.ActionNext, r.wt.Next)
}

func stepLabel(s *tour.Step) string {
	if s.Title != "" {
		return fmt.Sprintf("%s (%s)", s.Title, s.Anchor)
	}
	return s.Anchor.String()
}

func (r *run) record(kind EventKind, detail string) {
	r.events = append(r.events, SimEvent{
		At:     r.exec.Now().Sub(r.exec.start()),
		Kind:   kind,
		Step:   r.wt.CurrentStep(),
		Detail: detail,
	})
}

func (r *run) apply(a config.Action) {
	r.record(EventKindAction, describeAction(a))

	switch a.Kind {
	case config.ActionNext:
		r.wt.Next()
		return
	case config.ActionPrev:
		r.wt.Previous()
		return
	case config.ActionExit:
		r.wt.Exit()
		return
	}

	if r.page == nil {
		r.record(EventKindSkip, ErrLivePage.Error())
		return
	}
	n := r.page.find(a.Target)
	if n == nil {
		r.record(EventKindSkip, fmt.Sprintf("no element matches %s", a.Target))
		return
	}
	applyToNode(n, a, func(reason string) { r.record(EventKindSkip, reason) })
}

func applyToNode(n *memdom.Node, a config.Action, skip func(string)) {
	switch a.Kind {
	case config.ActionShow:
		n.Show()
	case config.ActionHide:
		n.Hide()
	case config.ActionRemove:
		n.Remove()
	case config.ActionAttach:
		if !n.Reattach() {
			skip(fmt.Sprintf("%s is already attached", n.Label()))
		}
	case config.ActionType:
		n.Type(a.Value)
	case config.ActionClear:
		n.Clear()
	case config.ActionAnimate:
		if a.Value != "" {
			n.StartAnimation(a.Value)
		} else {
			n.StartTransition("")
		}
	case config.ActionFinishAnimation:
		n.FinishTransition()
	}
}

func describeAction(a config.Action) string {
	switch {
	case a.Target == "":
		return string(a.Kind)
	case a.Value != "":
		return fmt.Sprintf("%s %s %q", a.Kind, a.Target, a.Value)
	default:
		return fmt.Sprintf("%s %s", a.Kind, a.Target)
	}
}

func (r *run) result() *SimResult {
	events := make([]SimEvent, len(r.events))
	copy(events, r.events)
	return &SimResult{
		Events:   events,
		Progress: r.ctrl.Progress(),
		State:    r.ctrl.State(),
		Elapsed:  r.exec.Now().Sub(r.exec.start()),
	}
}

// executor is the scheduler a simulation runs on, plus a way to run code on
// it at an offset from the start.
type executor interface {
	ports.Scheduler
	start() time.Time
	runAt(ctx context.Context, offset time.Duration, fn func()) error
	close()
}

type virtualExecutor struct {
	*clock.Virtual
	begin time.Time
}

func newVirtualExecutor() *virtualExecutor {
	return &virtualExecutor{Virtual: clock.NewVirtual(SimulationEpoch), begin: SimulationEpoch}
}

func (v *virtualExecutor) start() time.Time { return v.begin }

func (v *virtualExecutor) runAt(ctx context.Context, offset time.Duration, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.AdvanceTo(v.begin.Add(offset))
	fn()
	return nil
}

func (v *virtualExecutor) close() {}

type loopExecutor struct {
	*clock.Loop
	begin  time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

func startLoopExecutor(ctx context.Context) *loopExecutor {
	runCtx, cancel := context.WithCancel(ctx)
	l := &loopExecutor{
		Loop:   clock.NewLoop(),
		begin:  time.Now(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(l.done)
		_ = l.Run(runCtx)
	}()
	return l
}

func (l *loopExecutor) start() time.Time { return l.begin }

func (l *loopExecutor) runAt(ctx context.Context, offset time.Duration, fn func()) error {
	if wait := time.Until(l.begin.Add(offset)); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return l.Do(ctx, fn)
}

func (l *loopExecutor) close() {
	l.Close()
	l.cancel()
	<-l.done
}
