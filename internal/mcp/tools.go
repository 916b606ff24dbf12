// Package mcp exposes a live walkthrough to AI agents over the Model Context
// Protocol: agents read the session, navigate the tour, mutate the page and
// replay scenarios.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/waypoint/internal/app"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// Session is the live walkthrough the tools drive.
type Session interface {
	Navigate(ctx context.Context, kind config.ActionKind) error
	Act(ctx context.Context, index int, kind config.ActionKind, value string) error
	Snapshot(ctx context.Context) (app.Snapshot, error)
}

// SnapshotInput is the input for the waypoint_snapshot tool.
type SnapshotInput struct {
	Events int `json:"events,omitempty" jsonschema:"description=Number of most recent events to include (default: all)"`
}

// SnapshotOutput describes the session state.
type SnapshotOutput struct {
	Tour       string          `json:"tour"`
	Steps      int             `json:"steps"`
	Step       int             `json:"step"`
	Running    bool            `json:"running"`
	Live       bool            `json:"live,omitempty"`
	State      string          `json:"state"`
	Outcome    string          `json:"outcome"`
	Visited    []int           `json:"visited"`
	Current    *StepOutput     `json:"current,omitempty"`
	Buttons    ButtonsOutput   `json:"buttons"`
	Generation string          `json:"generation,omitempty"`
	Watchers   []string        `json:"watchers,omitempty"`
	Elements   []ElementOutput `json:"elements,omitempty"`
	Events     []EventOutput   `json:"events,omitempty"`
}

// StepOutput describes the current step.
type StepOutput struct {
	Element string       `json:"element"`
	Title   string       `json:"title,omitempty"`
	Intro   string       `json:"intro,omitempty"`
	Hints   []HintOutput `json:"hints,omitempty"`
}

// HintOutput describes one hint of the current step.
type HintOutput struct {
	Element  string `json:"element"`
	Text     string `json:"text,omitempty"`
	Resolved bool   `json:"resolved"`
}

// ButtonsOutput reports which navigation buttons are displayed.
type ButtonsOutput struct {
	Previous bool `json:"previous"`
	Next     bool `json:"next"`
	Bar      bool `json:"bar"`
}

// ElementOutput describes one page element.
type ElementOutput struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	Attached  bool   `json:"attached"`
	Hidden    bool   `json:"hidden,omitempty"`
	Animating bool   `json:"animating,omitempty"`
	Value     string `json:"value,omitempty"`
}

// EventOutput is one entry of the session or replay log.
type EventOutput struct {
	At     string `json:"at"`
	Kind   string `json:"kind"`
	Step   int    `json:"step"`
	Detail string `json:"detail,omitempty"`
}

// NavigateInput is the input for the waypoint_navigate tool.
type NavigateInput struct {
	Action string `json:"action" jsonschema:"required,description=Navigation action: next, prev or exit"`
}

// ActInput is the input for the waypoint_act tool.
type ActInput struct {
	Action  string `json:"action" jsonschema:"required,description=Page action: show, hide, remove, attach, type, clear, animate or finish-animation"`
	Element string `json:"element,omitempty" jsonschema:"description=Label of the element to act on, as listed by waypoint_snapshot"`
	Index   *int   `json:"index,omitempty" jsonschema:"description=Index of the element to act on, as listed by waypoint_snapshot"`
	Value   string `json:"value,omitempty" jsonschema:"description=Text to type for the type action"`
}

// ReplayInput is the input for the waypoint_replay tool.
type ReplayInput struct {
	ScenarioPath string `json:"scenario_path" jsonschema:"required,description=Path to the scenario YAML file"`
	TourPath     string `json:"tour_path,omitempty" jsonschema:"description=Tour file overriding the one the scenario names"`
}

// ReplayOutput is the outcome of a replayed scenario.
type ReplayOutput struct {
	Tour        string        `json:"tour"`
	Outcome     string        `json:"outcome"`
	State       string        `json:"state"`
	Visited     []int         `json:"visited"`
	Percent     int           `json:"percent"`
	Generations int           `json:"generations"`
	Elapsed     string        `json:"elapsed"`
	Events      []EventOutput `json:"events"`
}

// StatusInput is the input for the waypoint_status tool.
type StatusInput struct{}

// StatusOutput reports the server build.
type StatusOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Tour      string `json:"tour,omitempty"`
	Running   bool   `json:"running"`
}

// VersionInfo contains version metadata for the MCP server.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// RegisterAll registers all MCP tools with the server.
func RegisterAll(srv *mcp.Server, session Session, logger ports.Logger, versionInfo VersionInfo) {
	logger = ports.OrNop(logger)

	registerSnapshotTool(srv, session)
	registerNavigateTool(srv, session, logger)
	registerActTool(srv, session, logger)
	registerReplayTool(srv, logger)
	registerStatusTool(srv, session, versionInfo)
}

func registerSnapshotTool(srv *mcp.Server, session Session) {
	srv.Tool("waypoint_snapshot").
		Description("Show the live walkthrough: current step, hints, navigation buttons, installed watchers, page elements and the event log.").
		ReadOnly().
		Handler(func(ctx context.Context, in SnapshotInput) (*SnapshotOutput, error) {
			if err := ValidateSnapshotInput(&in); err != nil {
				return nil, err
			}
			snap, err := session.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			return toSnapshotOutput(snap, in.Events), nil
		})
}

func registerNavigateTool(srv *mcp.Server, session Session, logger ports.Logger) {
	srv.Tool("waypoint_navigate").
		Description("Move the walkthrough: next advances (completing the tour on its last step), prev goes back, exit ends it.").
		Handler(func(ctx context.Context, in NavigateInput) (*SnapshotOutput, error) {
			if err := ValidateNavigateInput(&in); err != nil {
				return nil, err
			}
			kind := config.ActionKind(in.Action)
			if err := session.Navigate(ctx, kind); err != nil {
				return nil, err
			}
			logger.Info(ctx, "navigated", ports.F("action", in.Action))

			snap, err := session.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			return toSnapshotOutput(snap, 0), nil
		})
}

func registerActTool(srv *mcp.Server, session Session, logger ports.Logger) {
	srv.Tool("waypoint_act").
		Description("Mutate a page element under the running walkthrough (show, hide, remove, attach, type, clear, animate, finish-animation) and return the resulting state.").
		Destructive().
		Handler(func(ctx context.Context, in ActInput) (*SnapshotOutput, error) {
			if err := ValidateActInput(&in); err != nil {
				return nil, err
			}

			snap, err := session.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			index, err := elementIndex(snap, in)
			if err != nil {
				return nil, err
			}

			if err := session.Act(ctx, index, config.ActionKind(in.Action), in.Value); err != nil {
				return nil, err
			}
			logger.Info(ctx, "page changed", ports.F("action", in.Action), ports.F("element", snap.Elements[index].Label))

			snap, err = session.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			return toSnapshotOutput(snap, 0), nil
		})
}

func registerReplayTool(srv *mcp.Server, logger ports.Logger) {
	srv.Tool("waypoint_replay").
		Description("Replay a scenario timeline against its tour on a virtual clock and report the event log and outcome.").
		ReadOnly().
		Handler(func(ctx context.Context, in ReplayInput) (*ReplayOutput, error) {
			if err := ValidateReplayInput(&in); err != nil {
				return nil, err
			}

			sc, err := config.LoadScenario(in.ScenarioPath)
			if err != nil {
				return nil, err
			}
			tf, err := sc.LoadTour(in.TourPath)
			if err != nil {
				return nil, err
			}

			sim := app.NewSimulator(app.SimulatorOptions{Controller: app.EngineOptions(tf.Engine, logger)})
			res, err := sim.Run(ctx, tf.Tour, sc)
			if err != nil {
				return nil, err
			}

			return &ReplayOutput{
				Tour:        tf.Tour.Name,
				Outcome:     string(res.Progress.Outcome),
				State:       string(res.State),
				Visited:     res.Progress.DistinctVisited(),
				Percent:     res.Progress.CompletionPercent(),
				Generations: res.Progress.Generations,
				Elapsed:     formatOffset(res.Elapsed),
				Events:      toEventOutputs(res.Events, 0),
			}, nil
		})
}

func registerStatusTool(srv *mcp.Server, session Session, versionInfo VersionInfo) {
	srv.Tool("waypoint_status").
		Description("Report the waypoint build and whether the served walkthrough is still running.").
		ReadOnly().
		Handler(func(ctx context.Context, _ StatusInput) (*StatusOutput, error) {
			snap, err := session.Snapshot(ctx)
			if err != nil {
				return nil, err
			}
			return &StatusOutput{
				Version:   versionInfo.Version,
				Commit:    versionInfo.Commit,
				BuildDate: versionInfo.BuildDate,
				Tour:      snap.TourName,
				Running:   snap.Running,
			}, nil
		})
}

// elementIndex picks the element an act request names, by index or label.
func elementIndex(snap app.Snapshot, in ActInput) (int, error) {
	if in.Index != nil {
		if *in.Index < 0 || *in.Index >= len(snap.Elements) {
			return 0, fmt.Errorf("%w: index %d of %d", app.ErrNoElement, *in.Index, len(snap.Elements))
		}
		return *in.Index, nil
	}
	for i, el := range snap.Elements {
		if el.Label == in.Element {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", app.ErrNoElement, in.Element)
}

func toSnapshotOutput(snap app.Snapshot, lastEvents int) *SnapshotOutput {
	out := &SnapshotOutput{
		Tour:    snap.TourName,
		Steps:   snap.Steps,
		Step:    snap.Step,
		Running: snap.Running,
		Live:    snap.Live,
		State:   string(snap.State),
		Outcome: string(snap.Progress.Outcome),
		Visited: snap.Progress.DistinctVisited(),
		Buttons: ButtonsOutput{
			Previous: snap.Buttons.Previous,
			Next:     snap.Buttons.Next,
			Bar:      snap.Buttons.Bar,
		},
		Events: toEventOutputs(snap.Events, lastEvents),
	}

	if step := snap.Current; step != nil && snap.Running {
		cur := &StepOutput{
			Element: step.Anchor.Selector,
			Title:   step.Title,
			Intro:   step.Intro,
		}
		for _, h := range snap.Hints {
			cur.Hints = append(cur.Hints, HintOutput{Element: h.Selector, Text: h.Text, Resolved: h.Resolved})
		}
		out.Current = cur
	}

	if gen := snap.Generation; gen != nil {
		out.Generation = gen.ID
		out.Watchers = gen.Watchers
	}

	for i, el := range snap.Elements {
		out.Elements = append(out.Elements, ElementOutput{
			Index:     i,
			Label:     el.Label,
			Attached:  el.Attached,
			Hidden:    el.Hidden,
			Animating: el.Animating,
			Value:     el.Value,
		})
	}
	return out
}

func toEventOutputs(events []app.SimEvent, last int) []EventOutput {
	if last > 0 && len(events) > last {
		events = events[len(events)-last:]
	}
	out := make([]EventOutput, 0, len(events))
	for _, e := range events {
		out = append(out, EventOutput{
			At:     formatOffset(e.At),
			Kind:   string(e.Kind),
			Step:   e.Step,
			Detail: e.Detail,
		})
	}
	return out
}

func formatOffset(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
