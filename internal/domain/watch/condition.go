package watch

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// ConditionKind discriminates parsed advance conditions.
type ConditionKind int

// Condition kinds.
const (
	ConditionNone ConditionKind = iota
	ConditionText
	ConditionVisible
)

// String returns the condition kind name.
func (k ConditionKind) String() string {
	switch k {
	case ConditionText:
		return "text-wait"
	case ConditionVisible:
		return "visibility-wait"
	default:
		return "none"
	}
}

// Condition is the parsed form of a step's advance condition.
type Condition struct {
	Kind     ConditionKind
	Selector string
	// Debounce applies to text waits; zero means the watcher default.
	Debounce time.Duration
	// Delay applies to visibility waits.
	Delay time.Duration
}

// String renders the condition for reports.
func (c Condition) String() string {
	switch c.Kind {
	case ConditionText:
		if c.Debounce > 0 {
			return fmt.Sprintf("%s on %s (debounce %s)", c.Kind, c.Selector, c.Debounce)
		}
		return fmt.Sprintf("%s on %s (default debounce)", c.Kind, c.Selector)
	case ConditionVisible:
		if c.Delay > 0 {
			return fmt.Sprintf("%s on %s (delay %s)", c.Kind, c.Selector, c.Delay)
		}
		return fmt.Sprintf("%s on %s", c.Kind, c.Selector)
	default:
		return "none"
	}
}

// maxDebounceMillis is the largest debounce expressible as a time.Duration.
const maxDebounceMillis = math.MaxInt64 / int64(time.Millisecond)

var (
	hasTextPattern = regexp.MustCompile(`^(.+):has-text(?:\((\d+)\))?$`)
	visiblePattern = regexp.MustCompile(`^(.+):visible$`)
)

// ParseCondition parses "<selector>:has-text" optionally followed by
// "(<milliseconds>)", or "<selector>:visible". Patterns are tried in that
// order. Anything else parses to no condition.
func ParseCondition(s string) (Condition, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Condition{}, false
	}

	if m := hasTextPattern.FindStringSubmatch(s); m != nil {
		c := Condition{Kind: ConditionText, Selector: strings.TrimSpace(m[1])}
		if m[2] != "" {
			ms, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil || ms > maxDebounceMillis {
				return Condition{}, false
			}
			c.Debounce = time.Duration(ms) * time.Millisecond
		}
		return c, true
	}

	if m := visiblePattern.FindStringSubmatch(s); m != nil {
		return Condition{Kind: ConditionVisible, Selector: strings.TrimSpace(m[1])}, true
	}

	return Condition{}, false
}

// ConditionFor derives the advance condition authored on step: its parsed
// Condition string, or, when that is absent, a visibility wait on WaitFor
// with WaitDelay. A present but unrecognized Condition string yields no
// condition and does not fall back.
func ConditionFor(step *tour.Step) (Condition, bool) {
	if step == nil {
		return Condition{}, false
	}
	if strings.TrimSpace(step.Condition) != "" {
		return ParseCondition(step.Condition)
	}
	if step.WaitFor != "" {
		return Condition{Kind: ConditionVisible, Selector: step.WaitFor, Delay: step.WaitDelay}, true
	}
	return Condition{}, false
}

// Dispatch installs the watcher for c, calling onMet when it is satisfied.
// It returns nil for ConditionNone.
func (w *Watchers) Dispatch(c Condition, onMet func()) *Handle {
	switch c.Kind {
	case ConditionText:
		return w.WaitText(tour.Select(c.Selector), c.Debounce, onMet)
	case ConditionVisible:
		return w.WaitVisible(tour.Select(c.Selector), c.Delay, onMet)
	default:
		return nil
	}
}

// DispatchString parses s and installs the matching watcher. Malformed
// conditions install nothing.
func (w *Watchers) DispatchString(s string, onMet func()) *Handle {
	c, ok := ParseCondition(s)
	if !ok {
		if strings.TrimSpace(s) != "" {
			w.debug("unrecognized condition ignored", ports.F("condition", s))
		}
		return nil
	}
	return w.Dispatch(c, onMet)
}
