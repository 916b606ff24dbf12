package tour

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchor(t *testing.T) {
	t.Parallel()

	assert.True(t, Anchor{}.IsZero())
	assert.Equal(t, "<none>", Anchor{}.String())

	a := Select("#box")
	assert.False(t, a.IsZero())
	assert.False(t, a.Resolved())
	assert.Equal(t, "#box", a.String())
}

func TestTour_StepLookup(t *testing.T) {
	t.Parallel()

	tr := &Tour{Steps: []*Step{{Anchor: Select("#a")}, {Anchor: Select("#b")}}}
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, "#b", tr.Step(1).Anchor.Selector)
	assert.Nil(t, tr.Step(2))
	assert.Nil(t, tr.Step(-1))

	var nilTour *Tour
	assert.Zero(t, nilTour.Len())
	assert.Nil(t, nilTour.Step(0))
}

func TestTour_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tour    *Tour
		wantErr string
	}{
		{"empty", &Tour{}, "no steps"},
		{"nil step", &Tour{Steps: []*Step{nil}}, "step 1 is empty"},
		{"no anchor", &Tour{Steps: []*Step{{Title: "x"}}}, "step 1 has no element"},
		{"hint without anchor", &Tour{Steps: []*Step{{Anchor: Select("#a"), Hints: []Hint{{Text: "t"}}}}}, "step 1 hint 1"},
		{"negative delay", &Tour{Steps: []*Step{{Anchor: Select("#a"), WaitDelay: -time.Second}}}, "negative wait delay"},
		{"valid", &Tour{Steps: []*Step{{Anchor: Select("#a"), Hints: []Hint{{Anchor: Select(".h")}}}}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.tour.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTour_Clone(t *testing.T) {
	t.Parallel()

	orig := &Tour{Name: "t", Steps: []*Step{
		{Anchor: Select("#a"), Hints: []Hint{{Anchor: Select(".h"), Text: "x"}}},
		nil,
	}}

	c := orig.Clone()
	require.Len(t, c.Steps, 2)
	assert.Nil(t, c.Steps[1])
	assert.Equal(t, orig.Steps[0].Hints, c.Steps[0].Hints)

	c.Steps[0].Hints[0].Anchor.Selector = ".other"
	c.Steps[0].Title = "changed"
	assert.Equal(t, ".h", orig.Steps[0].Hints[0].Anchor.Selector)
	assert.Empty(t, orig.Steps[0].Title)

	var none *Tour
	assert.Nil(t, none.Clone())
}
