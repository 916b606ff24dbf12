package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/waypoint/internal/app"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplesDir = "../../examples/signup"

func example(name string) string {
	return filepath.Join(examplesDir, name)
}

func TestRunCommand_Example(t *testing.T) {
	out, err := executeCommand(t, "run", example("scenario.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "Signup (4 steps)")
	assert.Contains(t, out, "TIME")
	assert.Contains(t, out, `type #name "Ada"`)
	assert.Contains(t, out, "attach #welcome")
	assert.Contains(t, out, "finish-animation #welcome")
	assert.Contains(t, out, "Completed after 3.5s")
	assert.Contains(t, out, "visited 4/4 steps (100%)")
}

func TestRunCommand_TourFormats(t *testing.T) {
	for _, name := range []string{"tour.yaml", "tour.toml", "tour.ini"} {
		t.Run(name, func(t *testing.T) {
			out, err := executeCommand(t, "run", example("scenario.yaml"), "--tour", example(name))
			require.NoError(t, err)
			assert.Contains(t, out, "Completed after 3.5s")
		})
	}
}

func TestRunCommand_Abort(t *testing.T) {
	out, err := executeCommand(t, "run", example("abort.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "remove #signup")
	assert.Contains(t, out, "Aborted after 1s")
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := executeCommand(t, "run", example("scenario.yaml"), "--json")
	require.NoError(t, err)

	var res app.SimResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, tour.OutcomeCompleted, res.Progress.Outcome)
	assert.Equal(t, []int{0, 1, 2, 3}, res.Progress.Visited)
	require.NotEmpty(t, res.Events)
	assert.Equal(t, app.EventKindStep, res.Events[0].Kind)
	assert.Equal(t, app.EventKindExit, res.Events[len(res.Events)-1].Kind)
}

func TestRunCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	noTour := filepath.Join(dir, "no-tour.yaml")
	require.NoError(t, os.WriteFile(noTour, []byte("elements:\n  - tag: div\n    id: x\n"), 0o644))

	tests := []struct {
		name string
		args []string
		code string
	}{
		{name: "missing scenario", args: []string{"run", filepath.Join(dir, "nope.yaml")}, code: config.ErrCodeScenarioNotFound},
		{name: "scenario without tour", args: []string{"run", noTour}, code: config.ErrCodeScenarioInvalid},
		{name: "missing tour", args: []string{"run", noTour, "--tour", filepath.Join(dir, "nope.yaml")}, code: config.ErrCodeTourNotFound},
		{name: "unsupported tour format", args: []string{"run", noTour, "--tour", filepath.Join(dir, "tour.json")}, code: config.ErrCodeFormatUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.True(t, config.IsUserError(err, tt.code), "got %v", err)
		})
	}
}

func TestRunCommand_RequiresScenario(t *testing.T) {
	_, err := executeCommand(t, "run")
	assert.Error(t, err)
}

func TestRunCommand_InvalidLogLevel(t *testing.T) {
	_, err := executeCommand(t, "run", example("scenario.yaml"), "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid --log-level")
}

func TestWatchedPaths(t *testing.T) {
	t.Parallel()

	paths := watchedPaths(example("scenario.yaml"), "")
	assert.Equal(t, []string{example("scenario.yaml"), example("tour.yaml"), example("page.html")}, paths)

	paths = watchedPaths(example("abort.yaml"), "other.toml")
	assert.Equal(t, []string{example("abort.yaml"), "other.toml", ""}, paths)

	missing := filepath.Join(t.TempDir(), "nope.yaml")
	assert.Equal(t, []string{missing, ""}, watchedPaths(missing, ""))
}
