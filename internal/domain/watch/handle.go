package watch

import (
	"errors"
	"fmt"
	"sync"
)

// Handle cancels one watcher. Cancel is idempotent and safe on a nil Handle;
// calling it after the watcher fired is a no-op.
type Handle struct {
	kind string

	mu        sync.Mutex
	cancelled bool
	fired     bool
	cleanups  []func()
}

func newHandle(kind string) *Handle {
	return &Handle{kind: kind}
}

// Kind names the watcher the handle belongs to.
func (h *Handle) Kind() string {
	if h == nil {
		return ""
	}
	return h.kind
}

// Cancel stops all further polling and listening for the watcher. Every
// cleanup runs even when an earlier one panics; the panics are re-raised
// together once all of them have run.
func (h *Handle) Cancel() {
	if err := h.teardown(); err != nil {
		panic(err)
	}
}

// teardown marks the handle cancelled and runs its cleanups in reverse
// registration order, returning any panics as errors.
func (h *Handle) teardown() error {
	if h == nil {
		return nil
	}

	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return nil
	}
	h.cancelled = true
	cleanups := h.cleanups
	h.cleanups = nil
	h.mu.Unlock()

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		if err := runCleanup(cleanups[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runCleanup(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}

// Active reports whether the watcher can still fire.
func (h *Handle) Active() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.cancelled
}

// Fired reports whether the watcher completed by invoking its callback.
func (h *Handle) Fired() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fired
}

// onCancel registers cleanup to run on Cancel. If the handle is already
// cancelled, cleanup runs immediately.
func (h *Handle) onCancel(cleanup func()) {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		cleanup()
		return
	}
	h.cleanups = append(h.cleanups, cleanup)
	h.mu.Unlock()
}

// fire tears the watcher down and then invokes fn, at most once and never
// after an external Cancel.
func (h *Handle) fire(fn func()) {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.fired = true
	h.mu.Unlock()

	h.Cancel()
	if fn != nil {
		fn()
	}
}
