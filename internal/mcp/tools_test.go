package mcp

import (
	"testing"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/waypoint/internal/app"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVersionInfo() VersionInfo {
	return VersionInfo{Version: "1.2.3", Commit: "abc123", BuildDate: "2026-01-01"}
}

func TestRegisterAll(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "waypoint-test",
		Version: "1.0.0",
	})

	RegisterAll(srv, newStubSession(), nil, testVersionInfo())

	toolNames := make(map[string]bool)
	for _, tool := range srv.Tools() {
		toolNames[tool.Name] = true
	}

	for _, name := range []string{"waypoint_snapshot", "waypoint_navigate", "waypoint_act", "waypoint_replay", "waypoint_status"} {
		assert.True(t, toolNames[name], "%s should be registered", name)
	}
}

func TestNavigateTool_Description(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerInfo{Name: "waypoint-test", Version: "1.0.0"})
	RegisterAll(srv, newStubSession(), nil, testVersionInfo())

	var description string
	for _, tool := range srv.Tools() {
		if tool.Name == "waypoint_navigate" {
			description = tool.Description
			break
		}
	}
	require.NotEmpty(t, description, "waypoint_navigate tool should exist")
	assert.Contains(t, description, "Move the walkthrough")
}

func TestToSnapshotOutput(t *testing.T) {
	t.Parallel()

	step := &tour.Step{Anchor: tour.Select("#name"), Title: "Your name", Intro: "Type it"}
	snap := app.Snapshot{
		TourName: "signup",
		Steps:    3,
		Step:     1,
		Current:  step,
		Hints:    []app.HintView{{Selector: "label", Text: "help", Resolved: false}},
		Running:  true,
		State:    app.StateActive,
		Progress: tour.Progress{TotalSteps: 3, Visited: []int{0, 1, 0, 1}, Outcome: tour.OutcomeRunning},
		Buttons:  app.ButtonsView{Previous: true, Next: false, Bar: true},
		Generation: &app.GenerationInfo{
			ID:       "gen-1",
			Step:     1,
			Watchers: []string{"disappearance", "text"},
		},
		Elements: []app.ElementView{{Label: "input#name", Attached: true, Value: "Ada"}},
	}

	out := toSnapshotOutput(snap, 0)
	assert.Equal(t, []int{0, 1}, out.Visited)
	assert.Equal(t, &StepOutput{
		Element: "#name",
		Title:   "Your name",
		Intro:   "Type it",
		Hints:   []HintOutput{{Element: "label", Text: "help"}},
	}, out.Current)
	assert.Equal(t, ButtonsOutput{Previous: true, Bar: true}, out.Buttons)
	assert.Equal(t, "gen-1", out.Generation)
	assert.Equal(t, []string{"disappearance", "text"}, out.Watchers)
	assert.Equal(t, []ElementOutput{{Index: 0, Label: "input#name", Attached: true, Value: "Ada"}}, out.Elements)
	assert.Empty(t, out.Events)
	assert.False(t, out.Live)

	snap.Live = true
	assert.True(t, toSnapshotOutput(snap, 0).Live)

	snap.Running = false
	assert.Nil(t, toSnapshotOutput(snap, 0).Current, "an ended walkthrough has no current step")
}
