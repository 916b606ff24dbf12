package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// Loop is a wall-clock scheduler that runs every callback on the goroutine
// executing Run, one at a time. Code outside the loop hands work to it with
// Post or Do.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

// NewLoop creates a loop. Callbacks only execute once Run is called.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.stop:
			return nil
		case <-l.wake:
		}

		for {
			fn, ok := l.pop()
			if !ok {
				break
			}
			fn()
		}
	}
}

// Close stops the loop. Callbacks posted afterwards are dropped.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.stop)
	})
}

// Post queues fn to run on the loop. It never blocks and reports false when
// the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return context.Canceled
	}

	select {
	case <-done:
		return nil
	case <-l.stop:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) ports.Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.stopped.Store(true)
			fn()
		})
	})
	return t
}

// Every runs fn on the loop every d until stopped.
func (l *Loop) Every(d time.Duration, fn func()) ports.Timer {
	if d < minPeriod {
		d = minPeriod
	}

	t := &loopTimer{done: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-l.stop:
				return
			case <-ticker.C:
				l.Post(func() {
					if t.stopped.Load() {
						return
					}
					fn()
				})
			}
		}
	}()
	return t
}

// loopTimer checks stopped again on the loop, so stopping it also
// suppresses a callback that was already queued.
type loopTimer struct {
	timer   *time.Timer
	done    chan struct{}
	stopped atomic.Bool
	once    sync.Once
}

// Stop cancels the timer.
func (t *loopTimer) Stop() {
	t.stopped.Store(true)
	t.once.Do(func() {
		if t.timer != nil {
			t.timer.Stop()
		}
		if t.done != nil {
			close(t.done)
		}
	})
}

var _ ports.Scheduler = (*Loop)(nil)
