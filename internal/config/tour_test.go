package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signupYAML = `
name: signup
engine:
  pollInterval: 100ms
  textDebounce: 500
  disappearGrace: 300ms
  refreshDetachedHints: true
steps:
  - element: "#signup"
    title: Create an account
    intro: Start here.
    hidePrev: true
    hints:
      - element: ".help"
        hint: Need help?
  - element: "#name"
    condition: "#name:has-text(250)"
  - element: "#panel"
    waitFor: "#panel"
    waitDelay: 300
`

const signupTOML = `
name = "signup"

[engine]
pollInterval = "100ms"
textDebounce = "500"
disappearGrace = "300ms"
refreshDetachedHints = true

[[steps]]
element = "#signup"
title = "Create an account"
intro = "Start here."
hidePrev = true

[[steps.hints]]
element = ".help"
hint = "Need help?"

[[steps]]
element = "#name"
condition = "#name:has-text(250)"

[[steps]]
element = "#panel"
waitFor = "#panel"
waitDelay = "300ms"
`

const signupINI = `
name = signup

[engine]
pollInterval = 100ms
textDebounce = 500
disappearGrace = 300ms
refreshDetachedHints = true

[step 3]
element = #panel
waitFor = #panel
waitDelay = 300

[step 1]
element = #signup
title = Create an account
intro = Start here.
hidePrev = true
hints = .help

[step 2]
element = #name
condition = #name:has-text(250)
`

func TestParseTour_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   Format
		data     string
		hintText string
	}{
		{name: "yaml", format: FormatYAML, data: signupYAML, hintText: "Need help?"},
		{name: "toml", format: FormatTOML, data: signupTOML, hintText: "Need help?"},
		{name: "ini", format: FormatINI, data: signupINI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tf, err := ParseTour([]byte(tt.data), tt.format, "signup."+string(tt.format))
			require.NoError(t, err)

			assert.Equal(t, tt.format, tf.Format)
			assert.Equal(t, Engine{
				PollInterval:         100 * time.Millisecond,
				TextDebounce:         500 * time.Millisecond,
				DisappearGrace:       300 * time.Millisecond,
				RefreshDetachedHints: true,
			}, tf.Engine)

			tr := tf.Tour
			assert.Equal(t, "signup", tr.Name)
			require.Equal(t, 3, tr.Len())

			first := tr.Step(0)
			assert.Equal(t, tour.Select("#signup"), first.Anchor)
			assert.Equal(t, "Create an account", first.Title)
			assert.Equal(t, "Start here.", first.Intro)
			assert.True(t, first.HidePrev)
			assert.False(t, first.HideNext)
			assert.Equal(t, []tour.Hint{{Anchor: tour.Select(".help"), Text: tt.hintText}}, first.Hints)

			assert.Equal(t, "#name:has-text(250)", tr.Step(1).Condition)

			third := tr.Step(2)
			assert.Equal(t, "#panel", third.WaitFor)
			assert.Equal(t, 300*time.Millisecond, third.WaitDelay)
			assert.NoError(t, tr.Validate())
		})
	}
}

func TestParseTour_Defaults(t *testing.T) {
	t.Parallel()

	tf, err := ParseTour([]byte("steps:\n  - element: \"#a\"\n"), FormatYAML, "tours/welcome.yaml")
	require.NoError(t, err)

	assert.Equal(t, DefaultEngine(), tf.Engine)
	assert.Equal(t, "welcome", tf.Tour.Name, "name falls back to the file name")
}

func TestParseTour_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		format    Format
		data      string
		code      string
		wantField string
	}{
		{
			name:   "empty",
			format: FormatYAML,
			data:   "",
			code:   ErrCodeTourInvalid, wantField: "steps",
		},
		{
			name:   "missing element",
			format: FormatYAML,
			data:   "steps:\n  - title: x\n",
			code:   ErrCodeTourInvalid, wantField: "steps[0].element",
		},
		{
			name:   "missing hint element",
			format: FormatYAML,
			data:   "steps:\n  - element: \"#a\"\n    hints:\n      - hint: x\n",
			code:   ErrCodeTourInvalid, wantField: "steps[0].hints[0].element",
		},
		{
			name:   "negative wait delay",
			format: FormatYAML,
			data:   "steps:\n  - element: \"#a\"\n    waitDelay: -5\n",
			code:   ErrCodeTourInvalid, wantField: "steps[0].waitDelay",
		},
		{
			name:   "zero poll interval",
			format: FormatYAML,
			data:   "engine:\n  pollInterval: 0\nsteps:\n  - element: \"#a\"\n",
			code:   ErrCodeTourInvalid, wantField: "engine.pollInterval",
		},
		{
			name:   "unknown yaml field",
			format: FormatYAML,
			data:   "steps:\n  - element: \"#a\"\n    colour: red\n",
			code:   ErrCodeTourParse,
		},
		{
			name:   "bad yaml duration",
			format: FormatYAML,
			data:   "steps:\n  - element: \"#a\"\n    waitDelay: soon\n",
			code:   ErrCodeTourParse,
		},
		{
			name:   "bad toml",
			format: FormatTOML,
			data:   "[[steps]\n",
			code:   ErrCodeTourParse,
		},
		{
			name:   "bad ini step number",
			format: FormatINI,
			data:   "[step one]\nelement = #a\n",
			code:   ErrCodeTourParse,
		},
		{
			name:   "bad ini duration",
			format: FormatINI,
			data:   "[step 1]\nelement = #a\nwaitDelay = soon\n",
			code:   ErrCodeTourParse,
		},
		{
			name:   "unsupported format",
			format: Format("json"),
			data:   "{}",
			code:   ErrCodeFormatUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseTour([]byte(tt.data), tt.format, "tour."+string(tt.format))
			require.Error(t, err)
			assert.True(t, IsUserError(err, tt.code), "got %v", err)
			if tt.wantField != "" {
				assert.Contains(t, err.Error(), tt.wantField)
			}
		})
	}
}

func TestParseTour_CollectsAllProblems(t *testing.T) {
	t.Parallel()

	data := "steps:\n  - title: a\n  - title: b\n"
	_, err := ParseTour([]byte(data), FormatYAML, "tour.yaml")
	require.Error(t, err)

	var list *ErrorList
	require.ErrorAs(t, err, &list)
	assert.Equal(t, 2, list.Len())
}

func TestParseTour_INISelectorsWithHashes(t *testing.T) {
	t.Parallel()

	data := "[step 1]\nelement = form #name ; not a comment\nhints = .a, .b > span\n"
	tf, err := ParseTour([]byte(data), FormatINI, "tour.ini")
	require.NoError(t, err)

	step := tf.Tour.Step(0)
	assert.Equal(t, "form #name ; not a comment", step.Anchor.Selector)
	assert.Equal(t, []tour.Hint{
		{Anchor: tour.Select(".a")},
		{Anchor: tour.Select(".b > span")},
	}, step.Hints)
}

func TestLoadTour(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("by extension", func(t *testing.T) {
		t.Parallel()

		for name, data := range map[string]string{
			"a.yaml": signupYAML,
			"b.yml":  signupYAML,
			"c.toml": signupTOML,
			"d.ini":  signupINI,
		} {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

			tf, err := LoadTour(path)
			require.NoError(t, err, name)
			assert.Equal(t, path, tf.Path)
			assert.Equal(t, 3, tf.Tour.Len())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadTour(filepath.Join(dir, "missing.yaml"))
		assert.True(t, IsUserError(err, ErrCodeTourNotFound))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		_, err := LoadTour(filepath.Join(dir, "tour.json"))
		assert.True(t, IsUserError(err, ErrCodeFormatUnsupported))
	})
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]Format{
		"t.yaml": FormatYAML,
		"T.YML":  FormatYAML,
		"t.toml": FormatTOML,
		"t.ini":  FormatINI,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("t")
	assert.Error(t, err)
}
