package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseScenario(t *testing.T, src string) *config.Scenario {
	t.Helper()
	sc, err := config.ParseScenario([]byte(src), "scenario.yaml")
	require.NoError(t, err)
	return sc
}

func TestBuildPage_InlineElements(t *testing.T) {
	t.Parallel()

	sc := parseScenario(t, `
elements:
  - tag: form
    id: signup
  - tag: input
    id: name
    parent: "#signup"
    value: Ada
    width: 0
  - tag: div
    classes: [panel, wide]
    hidden: true
  - tag: div
    id: later
    detached: true
  - tag: span
    id: inner
    parent: "#later"
`)

	page, err := BuildPage(sc)
	require.NoError(t, err)

	name := page.Doc.Find("#signup #name")
	require.NotNil(t, name)
	assert.Equal(t, "Ada", name.Value())
	w, h := name.OffsetSize()
	assert.Zero(t, w)
	assert.InDelta(t, 20, h, 0)

	panel := page.Doc.Find(".panel.wide")
	require.NotNil(t, panel)
	assert.True(t, panel.Hidden())

	assert.Nil(t, page.Doc.Find("#later"), "detached element starts outside the document")
	assert.Nil(t, page.Doc.Find("#inner"))

	later := page.find("#later")
	require.NotNil(t, later, "detached elements remain addressable")
	assert.False(t, later.Connected())
	assert.True(t, later.Reattach())
	assert.NotNil(t, page.Doc.Find("#inner"), "children come along on attach")

	assert.Len(t, page.Nodes(), 5)
}

func TestBuildPage_UnknownParent(t *testing.T) {
	t.Parallel()

	sc := parseScenario(t, `
elements:
  - tag: input
    id: name
    parent: "#missing"
`)

	_, err := BuildPage(sc)
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeScenarioInvalid))
	assert.Contains(t, err.Error(), "#missing")
}

func TestBuildPage_HTML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<!doctype html>
<html><body>
  <form id="signup">
    <input id="name" value="Grace">
    <button id="submit" hidden>Sign up</button>
  </form>
  <div id="welcome" data-detached data-transition="opacity 1s">Hi</div>
</body></html>`), 0o644))

	page, err := BuildPage(&config.Scenario{Page: path})
	require.NoError(t, err)

	name := page.Doc.Find("#name")
	require.NotNil(t, name)
	assert.Equal(t, "Grace", name.Value())
	assert.True(t, page.Doc.Find("#submit").Hidden())

	assert.Nil(t, page.Doc.Find("#welcome"))
	welcome := page.find("#welcome")
	require.NotNil(t, welcome)
	assert.True(t, welcome.Animating())
}

func TestBuildPage_MissingHTML(t *testing.T) {
	t.Parallel()

	_, err := BuildPage(&config.Scenario{Page: filepath.Join(t.TempDir(), "nope.html")})
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodePageParse))
}

func TestPage_FindInvalidSelector(t *testing.T) {
	t.Parallel()

	page, err := BuildPage(&config.Scenario{})
	require.NoError(t, err)
	assert.Nil(t, page.find("[[["))
}
