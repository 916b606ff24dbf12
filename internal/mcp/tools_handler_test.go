package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/waypoint/internal/app"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signupScenario = "../../examples/signup/scenario.yaml"

// --- helpers ---

// newTestServer creates an MCP server with all tools registered over session.
func newTestServer(t *testing.T, session Session) *mcp.Server {
	t.Helper()
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	RegisterAll(srv, session, nil, testVersionInfo())
	return srv
}

// executeTool is a helper that retrieves and executes a registered tool by name.
func executeTool(t *testing.T, srv *mcp.Server, toolName string, input interface{}) (interface{}, error) {
	t.Helper()
	tool, ok := srv.GetTool(toolName)
	require.True(t, ok, "tool %q should be registered", toolName)

	data, err := json.Marshal(input)
	require.NoError(t, err)

	return tool.Execute(context.Background(), data)
}

// startSignupSession starts a live walkthrough of the signup example.
func startSignupSession(t *testing.T) *app.Session {
	t.Helper()

	sc, err := config.LoadScenario(signupScenario)
	require.NoError(t, err)
	tf, err := sc.LoadTour("")
	require.NoError(t, err)
	page, err := app.BuildPage(sc)
	require.NoError(t, err)

	session, err := app.StartSession(context.Background(), tf.Tour, page, app.EngineOptions(tf.Engine, nil))
	require.NoError(t, err)
	t.Cleanup(session.Close)
	return session
}

func elementByLabel(t *testing.T, out *SnapshotOutput, label string) ElementOutput {
	t.Helper()
	for _, el := range out.Elements {
		if el.Label == label {
			return el
		}
	}
	require.Failf(t, "element not found", "no element labelled %s", label)
	return ElementOutput{}
}

// stubSession records the calls made to it.
type stubSession struct {
	snap      app.Snapshot
	snapErr   error
	actErr    error
	navigated []config.ActionKind
	acted     []string
}

func (s *stubSession) Navigate(_ context.Context, kind config.ActionKind) error {
	s.navigated = append(s.navigated, kind)
	return nil
}

func (s *stubSession) Act(_ context.Context, index int, kind config.ActionKind, value string) error {
	if s.actErr != nil {
		return s.actErr
	}
	s.acted = append(s.acted, string(kind)+" "+s.snap.Elements[index].Label+" "+value)
	return nil
}

func (s *stubSession) Snapshot(context.Context) (app.Snapshot, error) {
	return s.snap, s.snapErr
}

func newStubSession() *stubSession {
	return &stubSession{snap: app.Snapshot{
		TourName: "signup",
		Steps:    2,
		Running:  true,
		State:    app.StateActive,
		Progress: tour.Progress{TotalSteps: 2, Visited: []int{0}, Outcome: tour.OutcomeRunning},
		Elements: []app.ElementView{
			{Label: "form#signup", Attached: true},
			{Label: "input#name", Attached: true},
		},
	}}
}

// --- Snapshot tool handler tests ---

func TestSnapshotToolHandler_LiveSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, startSignupSession(t))

	result, err := executeTool(t, srv, "waypoint_snapshot", SnapshotInput{})
	require.NoError(t, err)

	output, ok := result.(*SnapshotOutput)
	require.True(t, ok, "result should be *SnapshotOutput")
	assert.Equal(t, "signup", output.Tour)
	assert.Equal(t, 4, output.Steps)
	assert.Equal(t, 0, output.Step)
	assert.True(t, output.Running)
	assert.Equal(t, string(app.StateActive), output.State)
	assert.Equal(t, string(tour.OutcomeRunning), output.Outcome)
	assert.Equal(t, []int{0}, output.Visited)
	assert.NotEmpty(t, output.Generation)

	require.NotNil(t, output.Current)
	assert.Equal(t, "#signup", output.Current.Element)
	require.Len(t, output.Current.Hints, 1)
	assert.Equal(t, ".help", output.Current.Hints[0].Element)
	assert.True(t, output.Current.Hints[0].Resolved)

	assert.False(t, output.Buttons.Previous, "the first step hides the back button")
	assert.True(t, output.Buttons.Next)

	welcome := elementByLabel(t, output, "div#welcome")
	assert.False(t, welcome.Attached)
}

func TestSnapshotToolHandler_EventTail(t *testing.T) {
	t.Parallel()

	session := newStubSession()
	session.snap.Events = []app.SimEvent{
		{Kind: app.EventKindStep, Detail: "first"},
		{Kind: app.EventKindAction, Detail: "next"},
		{Kind: app.EventKindStep, Step: 1, Detail: "second"},
	}
	srv := newTestServer(t, session)

	result, err := executeTool(t, srv, "waypoint_snapshot", SnapshotInput{Events: 2})
	require.NoError(t, err)

	output := result.(*SnapshotOutput)
	require.Len(t, output.Events, 2)
	assert.Equal(t, "next", output.Events[0].Detail)
	assert.Equal(t, "second", output.Events[1].Detail)
	assert.Equal(t, "0s", output.Events[1].At)
}

func TestSnapshotToolHandler_SessionError(t *testing.T) {
	t.Parallel()

	session := newStubSession()
	session.snapErr = errors.New("loop closed")
	srv := newTestServer(t, session)

	_, err := executeTool(t, srv, "waypoint_snapshot", SnapshotInput{})
	assert.ErrorContains(t, err, "loop closed")
}

func TestSnapshotToolHandler_InvalidInput(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubSession())

	_, err := executeTool(t, srv, "waypoint_snapshot", SnapshotInput{Events: -1})
	assert.ErrorContains(t, err, "invalid events")
}

// --- Navigate tool handler tests ---

func TestNavigateToolHandler_NextAndExit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, startSignupSession(t))

	result, err := executeTool(t, srv, "waypoint_navigate", NavigateInput{Action: "next"})
	require.NoError(t, err)
	output := result.(*SnapshotOutput)
	assert.Equal(t, 1, output.Step)
	require.NotNil(t, output.Current)
	assert.Equal(t, "#name", output.Current.Element)
	assert.False(t, output.Buttons.Next, "the second step hides the next button")

	result, err = executeTool(t, srv, "waypoint_navigate", NavigateInput{Action: "exit"})
	require.NoError(t, err)
	output = result.(*SnapshotOutput)
	assert.False(t, output.Running)
	assert.Equal(t, string(app.StateExited), output.State)
	assert.Equal(t, string(tour.OutcomeExited), output.Outcome)
	assert.Nil(t, output.Current)
	assert.Equal(t, []int{0, 1}, output.Visited)
}

func TestNavigateToolHandler_RejectsPageActions(t *testing.T) {
	t.Parallel()

	session := newStubSession()
	srv := newTestServer(t, session)

	for _, action := range []string{"", "hide", "jump"} {
		_, err := executeTool(t, srv, "waypoint_navigate", NavigateInput{Action: action})
		assert.ErrorContains(t, err, "invalid action", "action %q", action)
	}
	assert.Empty(t, session.navigated)
}

// --- Act tool handler tests ---

func TestActToolHandler_TypeIntoLiveSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, startSignupSession(t))

	result, err := executeTool(t, srv, "waypoint_act", ActInput{Action: "type", Element: "input#name", Value: "Ada"})
	require.NoError(t, err)

	output := result.(*SnapshotOutput)
	assert.Equal(t, "Ada", elementByLabel(t, output, "input#name").Value)
	require.NotEmpty(t, output.Events)
	assert.Equal(t, `type input#name "Ada"`, output.Events[len(output.Events)-1].Detail)
}

func TestActToolHandler_RemoveDetachesElement(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, startSignupSession(t))

	result, err := executeTool(t, srv, "waypoint_act", ActInput{Action: "remove", Element: "form#signup"})
	require.NoError(t, err)
	output := result.(*SnapshotOutput)
	assert.False(t, elementByLabel(t, output, "form#signup").Attached)
}

func TestActToolHandler_ByIndex(t *testing.T) {
	t.Parallel()

	session := newStubSession()
	srv := newTestServer(t, session)

	index := 1
	_, err := executeTool(t, srv, "waypoint_act", ActInput{Action: "hide", Index: &index})
	require.NoError(t, err)
	assert.Equal(t, []string{"hide input#name "}, session.acted)
}

func TestActToolHandler_UnknownElement(t *testing.T) {
	t.Parallel()

	session := newStubSession()
	srv := newTestServer(t, session)

	_, err := executeTool(t, srv, "waypoint_act", ActInput{Action: "show", Element: "div#missing"})
	assert.ErrorContains(t, err, app.ErrNoElement.Error())

	index := 7
	_, err = executeTool(t, srv, "waypoint_act", ActInput{Action: "show", Index: &index})
	assert.ErrorContains(t, err, "index 7 of 2")
	assert.Empty(t, session.acted)
}

func TestActToolHandler_SessionError(t *testing.T) {
	t.Parallel()

	session := newStubSession()
	session.actErr = errors.New("loop closed")
	srv := newTestServer(t, session)

	_, err := executeTool(t, srv, "waypoint_act", ActInput{Action: "show", Element: "form#signup"})
	assert.ErrorContains(t, err, "loop closed")
}

func TestActToolHandler_InvalidInput(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubSession())

	_, err := executeTool(t, srv, "waypoint_act", ActInput{Action: "next", Element: "form#signup"})
	assert.ErrorContains(t, err, "invalid action")
}

// --- Replay tool handler tests ---

func TestReplayToolHandler_Example(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubSession())

	result, err := executeTool(t, srv, "waypoint_replay", ReplayInput{ScenarioPath: signupScenario})
	require.NoError(t, err)

	output, ok := result.(*ReplayOutput)
	require.True(t, ok, "result should be *ReplayOutput")
	assert.Equal(t, "signup", output.Tour)
	assert.Equal(t, string(tour.OutcomeCompleted), output.Outcome)
	assert.Equal(t, []int{0, 1, 2, 3}, output.Visited)
	assert.Equal(t, 100, output.Percent)
	assert.Equal(t, "3.5s", output.Elapsed)
	assert.NotEmpty(t, output.Events)
}

func TestReplayToolHandler_TourOverride(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubSession())

	result, err := executeTool(t, srv, "waypoint_replay", ReplayInput{
		ScenarioPath: signupScenario,
		TourPath:     "../../examples/signup/tour.toml",
	})
	require.NoError(t, err)
	assert.Equal(t, string(tour.OutcomeCompleted), result.(*ReplayOutput).Outcome)
}

func TestReplayToolHandler_MissingScenario(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubSession())

	_, err := executeTool(t, srv, "waypoint_replay", ReplayInput{ScenarioPath: "missing.yaml"})
	assert.ErrorContains(t, err, "scenario file not found")
}

func TestReplayToolHandler_InvalidInput(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubSession())

	_, err := executeTool(t, srv, "waypoint_replay", ReplayInput{ScenarioPath: "scenario.json"})
	assert.ErrorContains(t, err, "invalid scenario_path")
}

// --- Status tool handler tests ---

func TestStatusToolHandler(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newStubSession())

	result, err := executeTool(t, srv, "waypoint_status", StatusInput{})
	require.NoError(t, err)

	output := result.(*StatusOutput)
	assert.Equal(t, "1.2.3", output.Version)
	assert.Equal(t, "abc123", output.Commit)
	assert.Equal(t, "2026-01-01", output.BuildDate)
	assert.Equal(t, "signup", output.Tour)
	assert.True(t, output.Running)
}
