package tour

import (
	"sort"
	"time"
)

// Outcome describes how a walkthrough ended.
type Outcome string

// Walkthrough outcomes.
const (
	// OutcomeRunning means the walkthrough has not ended yet.
	OutcomeRunning Outcome = "running"
	// OutcomeCompleted means the user moved past the last step.
	OutcomeCompleted Outcome = "completed"
	// OutcomeAborted means the active step's anchor disappeared.
	OutcomeAborted Outcome = "aborted"
	// OutcomeExited means the renderer ended the walkthrough for any other reason.
	OutcomeExited Outcome = "exited"
)

// Progress records one walkthrough run: which steps were activated, how many
// watcher generations were installed and how it ended.
type Progress struct {
	TotalSteps  int       `json:"total_steps"`
	Visited     []int     `json:"visited"`
	Generations int       `json:"generations"`
	Outcome     Outcome   `json:"outcome"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	EndedAt     time.Time `json:"ended_at,omitempty"`
}

// NewProgress creates progress for a walkthrough of totalSteps steps.
func NewProgress(totalSteps int) *Progress {
	return &Progress{
		TotalSteps: totalSteps,
		Visited:    []int{},
		Outcome:    OutcomeRunning,
	}
}

// Visit records that step index became active at the given time.
func (p *Progress) Visit(index int, at time.Time) {
	if p.StartedAt.IsZero() {
		p.StartedAt = at
	}
	p.Visited = append(p.Visited, index)
}

// RecordGeneration counts an installed watcher generation.
func (p *Progress) RecordGeneration() {
	p.Generations++
}

// IsVisited reports whether step index was ever active.
func (p *Progress) IsVisited(index int) bool {
	for _, v := range p.Visited {
		if v == index {
			return true
		}
	}
	return false
}

// DistinctVisited returns the visited step indexes, sorted and deduplicated.
func (p *Progress) DistinctVisited() []int {
	seen := make(map[int]bool, len(p.Visited))
	out := make([]int, 0, len(p.Visited))
	for _, v := range p.Visited {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// CompletionPercent returns the share of steps that were ever active.
func (p *Progress) CompletionPercent() int {
	if p.TotalSteps == 0 {
		return 0
	}
	return len(p.DistinctVisited()) * 100 / p.TotalSteps
}

// Finish records the outcome. Only the first call has an effect.
func (p *Progress) Finish(outcome Outcome, at time.Time) {
	if p.Finished() {
		return
	}
	p.Outcome = outcome
	p.EndedAt = at
}

// Finished reports whether the walkthrough has ended.
func (p *Progress) Finished() bool {
	return p.Outcome != OutcomeRunning
}

// Duration returns how long the walkthrough ran, zero while it is running.
func (p *Progress) Duration() time.Duration {
	if !p.Finished() || p.StartedAt.IsZero() {
		return 0
	}
	return p.EndedAt.Sub(p.StartedAt)
}

// Clone returns a deep copy.
func (p *Progress) Clone() Progress {
	c := *p
	c.Visited = append([]int(nil), p.Visited...)
	return c
}
