// Package app orchestrates the walkthrough engine: the step lifecycle
// controller that owns each step's watcher generation, and the simulator that
// replays scenarios against it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/dom"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/domain/watch"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// State is the controller's lifecycle state.
type State string

const (
	// StateIdle means no step has been activated yet.
	StateIdle State = stateIdle
	// StateActive means a step is active and its watchers are installed.
	StateActive State = stateActive
	// StateExited is terminal; no watchers are installed again.
	StateExited State = stateExited
)

// Machine state IDs.
const (
	stateIdle   = "idle"
	stateActive = "active"
	stateExited = "exited"
)

// Event types for the lifecycle state machine.
const (
	EventStart = "START"
	EventExit  = "EXIT"
)

// ControllerOptions tunes the controller and the watchers it installs.
type ControllerOptions struct {
	PollInterval time.Duration
	TextDebounce time.Duration
	// DisappearGrace is how long the anchor may stay invisible before the
	// walkthrough is aborted. Detachment always aborts on the next poll.
	DisappearGrace time.Duration
	// RefreshDetachedHints re-resolves memoized hint elements that are no
	// longer attached when their step is revisited.
	RefreshDetachedHints bool
	Probe                *dom.TransitionProbe
	Logger               ports.Logger
	// OnFinish, when set, receives the final progress once the walkthrough
	// has exited and its watchers are torn down.
	OnFinish func(tour.Progress)
}

// lifecycleContext is the statekit context of the lifecycle machine.
type lifecycleContext struct {
	Exits int
}

// GenerationInfo describes the live watcher generation.
type GenerationInfo struct {
	ID       string
	Step     int
	Watchers []string
}

// Controller reacts to the renderer's step-change and exit notifications. It
// tears down the previous step's watchers before installing the next
// generation, resolves hint anchors, toggles the navigation buttons and wires
// the disappearance monitor and the next step's advance condition.
//
// All methods must be called on the scheduler's executor.
type Controller struct {
	doc      ports.Document
	sched    ports.Scheduler
	nav      ports.Navigator
	steps    []*tour.Step
	opts     ControllerOptions
	watchers *watch.Watchers
	logger   ports.Logger

	interp   *statekit.Interpreter[lifecycleContext]
	current  *watch.Generation
	progress *tour.Progress
	reason   tour.Outcome

	busy  bool
	queue []func()
}

// EngineOptions maps a tour file's engine block onto controller options.
func EngineOptions(engine config.Engine, logger ports.Logger) ControllerOptions {
	return ControllerOptions{
		PollInterval:         engine.PollInterval,
		TextDebounce:         engine.TextDebounce,
		DisappearGrace:       engine.DisappearGrace,
		RefreshDetachedHints: engine.RefreshDetachedHints,
		Logger:               logger,
	}
}

// NewController creates a controller for steps. It starts idle.
func NewController(doc ports.Document, sched ports.Scheduler, nav ports.Navigator, steps []*tour.Step, opts ControllerOptions) (*Controller, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}
	if sched == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if nav == nil {
		return nil, fmt.Errorf("navigator is required")
	}

	logger := ports.OrNop(opts.Logger)
	c := &Controller{
		doc:   doc,
		sched: sched,
		nav:   nav,
		steps: steps,
		opts:  opts,
		watchers: watch.New(doc, sched, watch.Options{
			PollInterval: opts.PollInterval,
			TextDebounce: opts.TextDebounce,
			Probe:        opts.Probe,
			Logger:       logger,
		}),
		logger:   logger,
		progress: tour.NewProgress(len(steps)),
	}

	interp, err := c.buildMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle machine: %w", err)
	}
	c.interp = interp
	c.interp.Start()

	return c, nil
}

func (c *Controller) buildMachine() (*statekit.Interpreter[lifecycleContext], error) {
	machine, err := statekit.NewMachine[lifecycleContext]("waypoint-lifecycle").
		WithInitial(stateIdle).
		WithContext(lifecycleContext{}).
		WithAction("recordExit", func(lc *lifecycleContext, _ statekit.Event) {
			lc.Exits++
		}).
		State(stateIdle).
		On(EventStart).Target(stateActive).
		On(EventExit).Target(stateExited).Done().
		State(stateActive).
		On(EventExit).Target(stateExited).Done().
		State(stateExited).
		OnEntry("recordExit").Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return State(c.interp.State().Value)
}

// Progress returns a snapshot of the run's progress.
func (c *Controller) Progress() tour.Progress {
	return c.progress.Clone()
}

// Generation describes the live watcher generation. It reports false when no
// generation is installed.
func (c *Controller) Generation() (GenerationInfo, bool) {
	if c.current == nil {
		return GenerationInfo{}, false
	}
	return GenerationInfo{
		ID:       c.current.ID(),
		Step:     c.current.Step(),
		Watchers: c.current.Kinds(),
	}, true
}

// AfterStepChange handles the renderer's notification that the step at index
// became current.
func (c *Controller) AfterStepChange(index int) {
	c.serialize(func() { c.enterStep(index) })
}

// OnExit handles the renderer's notification that the walkthrough ended.
func (c *Controller) OnExit() {
	c.serialize(c.exit)
}

// serialize runs fn now, or after the running notification when called from
// inside one. Watchers may fire synchronously while a generation is being
// installed; their navigation is handled once the install completes.
func (c *Controller) serialize(fn func()) {
	c.queue = append(c.queue, fn)
	if c.busy {
		return
	}

	c.busy = true
	defer func() { c.busy = false }()

	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		next()
	}
}

func (c *Controller) enterStep(index int) {
	if c.State() == StateExited || index < 0 || index >= len(c.steps) {
		return
	}
	if c.State() == StateIdle {
		c.interp.Send(statekit.Event{Type: EventStart})
	}

	c.teardown()

	step := c.steps[index]
	anchor, ok := dom.Resolve(c.doc, step.Anchor)
	if ok {
		c.resolveHints(step, anchor)
	}
	c.toggleButtons(step)

	gen := watch.NewGeneration(index)
	log := c.logger.With(ports.F(ports.FieldGeneration, gen.ID()), ports.F(ports.FieldStep, index))

	gen.Add(c.watchers.WatchDisappearance(step.Anchor, c.opts.DisappearGrace, func() {
		log.Info(context.Background(), "anchor disappeared; aborting walkthrough", ports.F(ports.FieldSelector, step.Anchor.String()))
		c.reason = tour.OutcomeAborted
		c.nav.Exit()
	}))

	if index+1 < len(c.steps) {
		if cond, ok := watch.ConditionFor(c.steps[index+1]); ok {
			gen.Add(c.watchers.Dispatch(cond, func() {
				log.Info(context.Background(), "advance condition met", ports.F("condition", cond.String()))
				c.nav.Next()
			}))
		} else if c.steps[index+1].Condition != "" {
			log.Debug(context.Background(), "unrecognized condition ignored", ports.F("condition", c.steps[index+1].Condition))
		}
	}

	c.current = gen
	c.progress.Visit(index, c.sched.Now())
	c.progress.RecordGeneration()
	log.Info(context.Background(), "step activated", ports.F(ports.FieldWatcher, gen.Kinds()))
}

func (c *Controller) exit() {
	if c.State() == StateExited {
		return
	}
	c.interp.Send(statekit.Event{Type: EventExit})
	c.teardown()

	outcome := c.reason
	if outcome == "" {
		outcome = tour.OutcomeExited
		if c.nav.Completed() {
			outcome = tour.OutcomeCompleted
		}
	}
	c.progress.Finish(outcome, c.sched.Now())
	c.logger.Info(context.Background(), "walkthrough ended", ports.F("outcome", string(outcome)))
	if c.opts.OnFinish != nil {
		c.opts.OnFinish(c.progress.Clone())
	}
}

// teardown cancels every handle of the live generation.
func (c *Controller) teardown() {
	gen := c.current
	if gen == nil {
		return
	}
	c.current = nil

	if err := gen.Cancel(); err != nil {
		c.logger.Warn(context.Background(), "watcher teardown failed",
			ports.F(ports.FieldGeneration, gen.ID()),
			ports.F(ports.FieldStep, gen.Step()),
			ports.F("error", err))
	}
}

// resolveHints memoizes each hint's element, resolved inside the step anchor.
// Hints that match nothing keep their selector and are retried next time.
func (c *Controller) resolveHints(step *tour.Step, anchor ports.Element) {
	for i := range step.Hints {
		h := &step.Hints[i]
		if h.Anchor.Element != nil {
			if !c.opts.RefreshDetachedHints || h.Anchor.Element.Connected() {
				continue
			}
			h.Anchor.Element = nil
		}
		if el, ok := dom.ResolveWithin(anchor, h.Anchor); ok {
			h.Anchor.Element = el
		} else {
			c.logger.Debug(context.Background(), "hint anchor not found", ports.F(ports.FieldSelector, h.Anchor.Selector))
		}
	}
}

func (c *Controller) toggleButtons(step *tour.Step) {
	bar := c.nav.Buttons()
	setDisplay(bar.Previous, !step.HidePrev)
	setDisplay(bar.Next, !step.HideNext)
	setDisplay(bar.Bar, !(step.HidePrev && step.HideNext))
}

func setDisplay(el ports.Element, shown bool) {
	if el == nil {
		return
	}
	if shown {
		el.SetDisplay(ports.DisplayBlock)
		return
	}
	el.SetDisplay(ports.DisplayNone)
}
