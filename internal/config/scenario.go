package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ActionKind is a scenario timeline action.
type ActionKind string

// Timeline actions.
const (
	ActionShow            ActionKind = "show"
	ActionHide            ActionKind = "hide"
	ActionRemove          ActionKind = "remove"
	ActionAttach          ActionKind = "attach"
	ActionType            ActionKind = "type"
	ActionClear           ActionKind = "clear"
	ActionAnimate         ActionKind = "animate"
	ActionFinishAnimation ActionKind = "finish-animation"
	ActionNext            ActionKind = "next"
	ActionPrev            ActionKind = "prev"
	ActionExit            ActionKind = "exit"
)

// DefaultSettle is how long a scenario keeps running after its last action.
const DefaultSettle = 2 * time.Second

// NeedsTarget reports whether the action operates on a page element.
func (k ActionKind) NeedsTarget() bool {
	switch k {
	case ActionNext, ActionPrev, ActionExit:
		return false
	default:
		return true
	}
}

// Known reports whether k is one of the defined actions.
func (k ActionKind) Known() bool {
	switch k {
	case ActionShow, ActionHide, ActionRemove, ActionAttach, ActionType, ActionClear,
		ActionAnimate, ActionFinishAnimation, ActionNext, ActionPrev, ActionExit:
		return true
	default:
		return false
	}
}

// ElementSpec declares one page element of an inline scenario page.
type ElementSpec struct {
	Tag     string   `yaml:"tag"`
	ID      string   `yaml:"id"`
	Classes []string `yaml:"classes"`
	// Parent is a selector of an earlier element; empty means the body.
	Parent string   `yaml:"parent"`
	Width  *float64 `yaml:"width"`
	Height *float64 `yaml:"height"`
	Hidden bool     `yaml:"hidden"`
	// Detached elements are built and removed before the tour starts, so an
	// attach action can insert them later.
	Detached   bool   `yaml:"detached"`
	Value      string `yaml:"value"`
	Transition string `yaml:"transition"`
	Animation  string `yaml:"animation"`
}

// Action is one timeline entry.
type Action struct {
	At     Duration   `yaml:"at"`
	Kind   ActionKind `yaml:"action"`
	Target string     `yaml:"target"`
	Value  string     `yaml:"value"`
}

// Scenario is a page plus a timeline of user and page behaviour to replay
// against a tour.
type Scenario struct {
	Path string `yaml:"-"`
	// Tour is the tour file; relative paths resolve against the scenario.
	Tour string `yaml:"tour"`
	// Page is an HTML file; relative paths resolve against the scenario.
	Page     string        `yaml:"page"`
	Elements []ElementSpec `yaml:"elements"`
	Timeline []Action      `yaml:"timeline"`
	Settle   *Duration     `yaml:"settle"`
}

// SettleFor returns how long to keep running after the last action.
func (s *Scenario) SettleFor() time.Duration {
	if s.Settle == nil {
		return DefaultSettle
	}
	return s.Settle.Std()
}

// LoadScenario reads and validates the scenario file at path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewScenarioNotFoundError(path)
		}
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	sc, err := ParseScenario(data, path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if sc.Tour != "" && !filepath.IsAbs(sc.Tour) {
		sc.Tour = filepath.Join(dir, sc.Tour)
	}
	if sc.Page != "" && !filepath.IsAbs(sc.Page) {
		sc.Page = filepath.Join(dir, sc.Page)
	}
	return sc, nil
}

// LoadTour loads override when set, otherwise the tour the scenario names.
func (s *Scenario) LoadTour(override string) (*TourFile, error) {
	path := override
	if path == "" {
		path = s.Tour
	}
	if path == "" {
		return nil, NewUserError(ErrCodeScenarioInvalid, "scenario names no tour").
			WithContext(s.Path).
			WithSuggestion("Add a 'tour:' entry to the scenario or pass --tour.")
	}
	return LoadTour(path)
}

// ParseScenario decodes and validates a YAML scenario. The timeline is sorted
// by time, keeping the file order of simultaneous actions.
func ParseScenario(data []byte, source string) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, NewYAMLParseError(source, err)
	}
	sc.Path = source

	if err := sc.validate(); err != nil {
		return nil, err
	}

	sort.SliceStable(sc.Timeline, func(i, j int) bool {
		return sc.Timeline[i].At < sc.Timeline[j].At
	})
	return &sc, nil
}

func (s *Scenario) validate() error {
	errs := NewErrorList()

	if s.Page != "" && len(s.Elements) > 0 {
		errs.AddInvalid(ErrCodeScenarioInvalid, "page", "page and elements are mutually exclusive", "Describe the page either as an HTML file or as an element list.")
	}
	if s.Settle != nil && *s.Settle < 0 {
		errs.AddInvalid(ErrCodeScenarioInvalid, "settle", "must not be negative", "")
	}

	for i, el := range s.Elements {
		field := fmt.Sprintf("elements[%d]", i)
		if strings.TrimSpace(el.Tag) == "" {
			errs.AddInvalid(ErrCodeScenarioInvalid, field+".tag", "is required", "Use an HTML tag name such as div or input.")
		}
		if (el.Width != nil && *el.Width < 0) || (el.Height != nil && *el.Height < 0) {
			errs.AddInvalid(ErrCodeScenarioInvalid, field, "size must not be negative", "")
		}
	}

	for i, a := range s.Timeline {
		field := fmt.Sprintf("timeline[%d]", i)
		switch {
		case a.Kind == "":
			errs.AddInvalid(ErrCodeScenarioInvalid, field+".action", "is required", actionSuggestion)
		case !a.Kind.Known():
			errs.AddInvalid(ErrCodeScenarioInvalid, field+".action", fmt.Sprintf("unknown action %q", a.Kind), actionSuggestion)
		case a.Kind.NeedsTarget() && strings.TrimSpace(a.Target) == "":
			errs.AddInvalid(ErrCodeScenarioInvalid, field+".target", fmt.Sprintf("action %q needs a target selector", a.Kind), "")
		}
		if a.At < 0 {
			errs.AddInvalid(ErrCodeScenarioInvalid, field+".at", "must not be negative", "")
		}
	}

	return errs.AsError()
}

const actionSuggestion = "Valid actions: show, hide, remove, attach, type, clear, animate, finish-animation, next, prev, exit."
