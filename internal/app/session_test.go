package app

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSession(t *testing.T, tr *tour.Tour) *Session {
	t.Helper()

	page, err := BuildPage(parseScenario(t, signupPage))
	require.NoError(t, err)

	s, err := StartSession(context.Background(), tr, page, ControllerOptions{PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSession_SnapshotAfterStart(t *testing.T) {
	t.Parallel()

	tr := signupTour()
	tr.Steps[0].HidePrev = true
	tr.Steps[0].Hints = []tour.Hint{{Anchor: tour.Select("input"), Text: "type here"}}
	tr.Steps[0].Anchor = tour.Select("#signup")

	s := startSession(t, tr)
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "signup", snap.TourName)
	assert.Equal(t, 3, snap.Steps)
	assert.Equal(t, 0, snap.Step)
	assert.True(t, snap.Running)
	assert.Equal(t, StateActive, snap.State)
	require.NotNil(t, snap.Current)
	assert.Equal(t, "Your name", snap.Current.Title)
	assert.Equal(t, []HintView{{Selector: "input", Text: "type here", Resolved: true}}, snap.Hints)
	assert.Equal(t, ButtonsView{Previous: false, Next: true, Bar: true}, snap.Buttons)
	require.NotNil(t, snap.Generation)
	assert.Equal(t, 0, snap.Generation.Step)

	labels := make([]string, len(snap.Elements))
	for i, e := range snap.Elements {
		labels[i] = e.Label
	}
	assert.Equal(t, []string{"form#signup", "input#name", "button#submit", "div#panel"}, labels)
	assert.False(t, snap.Elements[3].Attached)
}

func TestSession_NavigateAndAct(t *testing.T) {
	t.Parallel()

	s := startSession(t, signupTour())
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, config.ActionNext))
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Step)

	require.NoError(t, s.Act(ctx, 2, config.ActionHide, ""))
	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Elements[2].Hidden)

	last := snap.Events[len(snap.Events)-1]
	assert.Equal(t, EventKindAction, last.Kind)
	assert.Equal(t, "hide button#submit", last.Detail)

	require.Eventually(t, func() bool {
		snap, err := s.Snapshot(ctx)
		return err == nil && snap.State == StateExited
	}, 2*time.Second, 10*time.Millisecond, "hiding the anchor aborts the walkthrough")

	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, tour.OutcomeAborted, snap.Progress.Outcome)
}

func TestSession_ActErrors(t *testing.T) {
	t.Parallel()

	s := startSession(t, signupTour())
	ctx := context.Background()

	assert.ErrorIs(t, s.Act(ctx, 99, config.ActionShow, ""), ErrNoElement)
	assert.Error(t, s.Navigate(ctx, config.ActionShow))

	require.NoError(t, s.Act(ctx, 0, config.ActionExit, ""))
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateExited, snap.State)
	assert.Equal(t, tour.OutcomeExited, snap.Progress.Outcome)
}

func TestSession_ClosedLoop(t *testing.T) {
	t.Parallel()

	page, err := BuildPage(parseScenario(t, signupPage))
	require.NoError(t, err)
	s, err := StartSession(context.Background(), signupTour(), page, ControllerOptions{})
	require.NoError(t, err)

	s.Close()
	_, err = s.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestStartSession_InvalidTour(t *testing.T) {
	t.Parallel()

	page, err := BuildPage(&config.Scenario{})
	require.NoError(t, err)

	_, err = StartSession(context.Background(), &tour.Tour{}, page, ControllerOptions{})
	assert.True(t, config.IsUserError(err, config.ErrCodeTourInvalid))
}
