package walkthrough

import (
	"testing"

	"github.com/felixgeelhaar/waypoint/internal/adapters/memdom"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeSteps() []*tour.Step {
	return []*tour.Step{
		{Anchor: tour.Select("#a")},
		{Anchor: tour.Select("#b")},
		{Anchor: tour.Select("#c")},
	}
}

func TestWalkthrough_StartRequiresSteps(t *testing.T) {
	t.Parallel()

	w := New(PaintButtons(memdom.NewDocument()))
	assert.ErrorIs(t, w.Start(), ErrNoSteps)
	assert.False(t, w.Running())
	assert.Equal(t, -1, w.CurrentStep())
}

func TestWalkthrough_Navigation(t *testing.T) {
	t.Parallel()

	w := New(PaintButtons(memdom.NewDocument()))
	w.SetSteps(threeSteps())

	var seen []int
	w.OnAfterStepChange(func(i int) { seen = append(seen, i) })
	exits := 0
	w.OnExit(func() { exits++ })

	require.NoError(t, w.Start())
	w.Previous()
	w.Next()
	w.Next()
	w.Previous()
	w.GoTo(2)
	w.GoTo(7)

	assert.Equal(t, []int{0, 1, 2, 1, 2}, seen)
	assert.True(t, w.Running())
	assert.False(t, w.Completed())

	w.Next()
	assert.Equal(t, 1, exits)
	assert.True(t, w.Completed())
	assert.False(t, w.Running())

	w.Exit()
	w.Next()
	assert.Equal(t, 1, exits)
	assert.Len(t, seen, 5)
}

func TestWalkthrough_ExitBeforeLastStepIsNotCompleted(t *testing.T) {
	t.Parallel()

	w := New(PaintButtons(memdom.NewDocument()))
	w.SetSteps(threeSteps())
	require.NoError(t, w.Start())

	w.Exit()
	assert.False(t, w.Completed())
	assert.False(t, w.Running())
}

func TestWalkthrough_SetStepsIgnoredWhileRunning(t *testing.T) {
	t.Parallel()

	w := New(ports.ButtonBar{})
	w.SetSteps(threeSteps())
	require.NoError(t, w.Start())

	w.SetSteps(nil)
	assert.Len(t, w.Steps(), 3)
}

func TestWalkthrough_ReentrantNextDropsStaleNotification(t *testing.T) {
	t.Parallel()

	w := New(ports.ButtonBar{})
	w.SetSteps(threeSteps())

	var first, second []int
	w.OnAfterStepChange(func(i int) {
		first = append(first, i)
		if i == 0 {
			w.Next()
		}
	})
	w.OnAfterStepChange(func(i int) { second = append(second, i) })

	require.NoError(t, w.Start())
	assert.Equal(t, []int{0, 1}, first)
	assert.Equal(t, []int{1}, second)
	assert.Equal(t, 1, w.CurrentStep())
}

func TestPaintButtons(t *testing.T) {
	t.Parallel()

	doc := memdom.NewDocument()
	bar := PaintButtons(doc)

	require.NotNil(t, bar.Previous)
	require.NotNil(t, bar.Next)
	require.NotNil(t, bar.Bar)

	prev := doc.Find(".waypoint-tooltip > .waypoint-buttons > .waypoint-prev")
	require.NotNil(t, prev)
	assert.Same(t, prev, bar.Previous)
	assert.Same(t, doc.Find(".waypoint-next"), bar.Next)
	assert.True(t, bar.Bar.Connected())
}
