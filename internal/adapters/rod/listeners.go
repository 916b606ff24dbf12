package rod

import (
	"fmt"
	"sync"

	"github.com/ysmood/gson"
)

// listeners maps the ids handed to in-page event handlers to their Go
// callbacks. The exposed binding calls back with an id from the browser's
// event goroutine; the callback itself runs wherever dispatch sends it.
type listeners struct {
	mu       sync.Mutex
	next     int
	fns      map[int]func()
	dispatch func(fn func()) bool
}

func newListeners() *listeners {
	return &listeners{
		fns:      make(map[int]func()),
		dispatch: runInline,
	}
}

func runInline(fn func()) bool {
	fn()
	return true
}

// setDispatch routes later callbacks through dispatch.
func (l *listeners) setDispatch(dispatch func(fn func()) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if dispatch == nil {
		dispatch = runInline
	}
	l.dispatch = dispatch
}

func (l *listeners) add(fn func()) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.fns[l.next] = fn
	return l.next
}

// remove forgets id and reports whether it was registered.
func (l *listeners) remove(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.fns[id]; !ok {
		return false
	}
	delete(l.fns, id)
	return true
}

func (l *listeners) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

// call handles one binding invocation, whose payload is the listener id or
// an argument list starting with it. The id is looked up again when the
// dispatched callback runs, so an event queued before its listener was
// removed is dropped.
func (l *listeners) call(payload gson.JSON) (interface{}, error) {
	if args := payload.Arr(); len(args) > 0 {
		payload = args[0]
	}
	if payload.Nil() {
		return nil, fmt.Errorf("listener binding called without an id")
	}
	id := payload.Int()

	l.mu.Lock()
	_, ok := l.fns[id]
	dispatch := l.dispatch
	l.mu.Unlock()
	if !ok {
		return nil, nil
	}

	dispatch(func() {
		l.mu.Lock()
		fn, ok := l.fns[id]
		l.mu.Unlock()
		if ok {
			fn()
		}
	})
	return nil, nil
}
