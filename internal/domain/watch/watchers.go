// Package watch implements the cancellable, polling watchers that decide when
// a walkthrough step advances or aborts, and the parsing of step conditions
// into those watchers.
package watch

import (
	"context"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/domain/dom"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// Default timings.
const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultTextDebounce = 1000 * time.Millisecond
)

// Watcher kinds, as reported by Handle.Kind.
const (
	KindDisappearance = "disappearance"
	KindVisibility    = "visibility"
	KindText          = "text"
)

// Options tunes the watchers.
type Options struct {
	// PollInterval is the polling cadence. Zero means DefaultPollInterval.
	PollInterval time.Duration
	// TextDebounce is the quiet period used when a text condition names none.
	// Zero means DefaultTextDebounce.
	TextDebounce time.Duration
	// Probe detects the transition-completion event. Nil uses the
	// process-wide probe.
	Probe *dom.TransitionProbe
	// Logger receives diagnostics at debug level. Nil discards them.
	Logger ports.Logger
}

// Watchers installs watchers against one document and scheduler. All methods
// and all callbacks run on the scheduler's executor.
type Watchers struct {
	doc      ports.Document
	sched    ports.Scheduler
	poll     time.Duration
	debounce time.Duration
	probe    *dom.TransitionProbe
	logger   ports.Logger
}

// New creates a watcher factory.
func New(doc ports.Document, sched ports.Scheduler, opts Options) *Watchers {
	w := &Watchers{
		doc:      doc,
		sched:    sched,
		poll:     opts.PollInterval,
		debounce: opts.TextDebounce,
		probe:    opts.Probe,
		logger:   ports.OrNop(opts.Logger),
	}
	if w.poll <= 0 {
		w.poll = DefaultPollInterval
	}
	if w.debounce <= 0 {
		w.debounce = DefaultTextDebounce
	}
	return w
}

// PollInterval returns the polling cadence in use.
func (w *Watchers) PollInterval() time.Duration { return w.poll }

// TextDebounce returns the default text debounce in use.
func (w *Watchers) TextDebounce() time.Duration { return w.debounce }

func (w *Watchers) transitionEvent() string {
	if w.probe != nil {
		return w.probe.EventName(w.doc)
	}
	return dom.TransitionEndEvent(w.doc)
}

func (w *Watchers) debug(msg string, fields ...ports.Field) {
	w.logger.Debug(context.Background(), msg, fields...)
}

// afterDelay invokes fn through h after delay, or right away when delay is
// not positive.
func (w *Watchers) afterDelay(h *Handle, delay time.Duration, fn func()) {
	if delay <= 0 {
		h.fire(fn)
		return
	}
	t := w.sched.AfterFunc(delay, func() { h.fire(fn) })
	h.onCancel(t.Stop)
}
