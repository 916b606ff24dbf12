package tour

import (
	"fmt"
	"time"
)

// Hint is an annotation shown alongside a step, anchored inside the step's
// anchor element.
type Hint struct {
	Anchor Anchor
	Text   string
}

// Step describes one walkthrough step.
//
// Condition is authored on the step it leads to: while step n is active,
// step n+1's Condition decides when the walkthrough advances on its own.
// WaitFor and WaitDelay are the fallback used when Condition is empty.
type Step struct {
	Anchor    Anchor
	Title     string
	Intro     string
	Hints     []Hint
	HidePrev  bool
	HideNext  bool
	Condition string
	WaitFor   string
	WaitDelay time.Duration
}

// Tour is the ordered list of steps of one walkthrough.
type Tour struct {
	Name  string
	Steps []*Step
}

// Len returns the number of steps.
func (t *Tour) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Steps)
}

// Step returns the step at index, or nil when out of range.
func (t *Tour) Step(index int) *Step {
	if t == nil || index < 0 || index >= len(t.Steps) {
		return nil
	}
	return t.Steps[index]
}

// Validate checks the structural requirements the engine relies on.
func (t *Tour) Validate() error {
	if t.Len() == 0 {
		return fmt.Errorf("tour has no steps")
	}
	for i, s := range t.Steps {
		if s == nil {
			return fmt.Errorf("step %d is empty", i+1)
		}
		if s.Anchor.IsZero() {
			return fmt.Errorf("step %d has no element", i+1)
		}
		for j, h := range s.Hints {
			if h.Anchor.IsZero() {
				return fmt.Errorf("step %d hint %d has no element", i+1, j+1)
			}
		}
		if s.WaitDelay < 0 {
			return fmt.Errorf("step %d has a negative wait delay", i+1)
		}
	}
	return nil
}

// Clone returns a copy whose steps and hints can be resolved independently
// of t's.
func (t *Tour) Clone() *Tour {
	if t == nil {
		return nil
	}
	c := &Tour{Name: t.Name, Steps: make([]*Step, len(t.Steps))}
	for i, s := range t.Steps {
		if s == nil {
			continue
		}
		step := *s
		step.Hints = append([]Hint(nil), s.Hints...)
		c.Steps[i] = &step
	}
	return c
}
