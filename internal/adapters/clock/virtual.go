// Package clock provides the schedulers the engine runs on: Loop, which
// serializes wall-clock callbacks onto one goroutine, and Virtual, a manually
// advanced clock used for deterministic replay and tests.
package clock

import (
	"container/heap"
	"sync"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// minPeriod bounds Every so a zero period cannot spin Advance forever.
const minPeriod = time.Millisecond

// Virtual is a scheduler whose time only moves when Advance is called.
// Callbacks run on the goroutine calling Advance, in due-time order; timers
// due at the same instant run in the order they were scheduled.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers timerQueue
}

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// AfterFunc schedules fn to run once when the clock reaches Now()+d.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) ports.Timer {
	return v.schedule(d, 0, fn)
}

// Every schedules fn to run every d.
func (v *Virtual) Every(d time.Duration, fn func()) ports.Timer {
	if d < minPeriod {
		d = minPeriod
	}
	return v.schedule(d, d, fn)
}

func (v *Virtual) schedule(d, period time.Duration, fn func()) *virtualTimer {
	if d < 0 {
		d = 0
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	t := &virtualTimer{
		clock:  v,
		at:     v.now.Add(d),
		period: period,
		fn:     fn,
		seq:    v.seq,
	}
	heap.Push(&v.timers, t)
	return t
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way. Callbacks may schedule or stop timers; newly scheduled
// timers that fall inside the window run too.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	v.AdvanceTo(target)
}

// AdvanceTo moves the clock forward to target. It never moves time back.
func (v *Virtual) AdvanceTo(target time.Time) {
	for {
		v.mu.Lock()
		if len(v.timers) == 0 || v.timers[0].at.After(target) {
			if target.After(v.now) {
				v.now = target
			}
			v.mu.Unlock()
			return
		}

		t := heap.Pop(&v.timers).(*virtualTimer)
		if t.at.After(v.now) {
			v.now = t.at
		}
		if t.period > 0 {
			v.seq++
			t.seq = v.seq
			t.at = t.at.Add(t.period)
			heap.Push(&v.timers, t)
		} else {
			t.stopped = true
		}
		fn := t.fn
		v.mu.Unlock()

		fn()
	}
}

// Pending returns the number of scheduled timers.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.timers)
}

// NextDue returns when the earliest timer fires, and false if none is pending.
func (v *Virtual) NextDue() (time.Time, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.timers) == 0 {
		return time.Time{}, false
	}
	return v.timers[0].at, true
}

type virtualTimer struct {
	clock   *Virtual
	at      time.Time
	period  time.Duration
	fn      func()
	seq     uint64
	index   int
	stopped bool
}

// Stop removes the timer from the queue.
func (t *virtualTimer) Stop() {
	v := t.clock
	v.mu.Lock()
	defer v.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	if t.index >= 0 && t.index < len(v.timers) && v.timers[t.index] == t {
		heap.Remove(&v.timers, t.index)
	}
}

type timerQueue []*virtualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x interface{}) {
	t := x.(*virtualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

var _ ports.Scheduler = (*Virtual)(nil)
