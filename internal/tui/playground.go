package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/waypoint/internal/app"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/tui/components"
	"github.com/felixgeelhaar/waypoint/internal/tui/ui"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Session is the live walkthrough the playground drives.
type Session interface {
	Navigate(ctx context.Context, kind config.ActionKind) error
	Act(ctx context.Context, index int, kind config.ActionKind, value string) error
	Snapshot(ctx context.Context) (app.Snapshot, error)
}

// snapshotMsg carries a fresh view of the session.
type snapshotMsg struct {
	snap app.Snapshot
}

// playgroundModel lets a user mutate the page under a running walkthrough
// and watch the engine react.
type playgroundModel struct {
	ctx     context.Context
	session Session

	styles   ui.Styles
	keys     ui.KeyMap
	help     help.Model
	input    textinput.Model
	progress components.Progress
	title    cases.Caser

	width    int
	height   int
	selected int
	editing  bool
	loaded   bool
	quitting bool
	snap     app.Snapshot
	err      error
}

func newPlaygroundModel(ctx context.Context, session Session) playgroundModel {
	input := textinput.New()
	input.Placeholder = "text to type into the element"
	input.CharLimit = ui.DefaultInputCharLimit
	input.Prompt = "type> "

	return playgroundModel{
		ctx:      ctx,
		session:  session,
		styles:   ui.DefaultStyles().WithWidth(ui.DefaultWidth),
		keys:     ui.DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		progress: components.NewProgress(),
		title:    cases.Title(language.English),
		width:    ui.DefaultWidth,
		height:   ui.DefaultHeight,
	}
}

func (m playgroundModel) Init() tea.Cmd {
	return tea.Batch(m.refresh(), ui.Tick(ui.RefreshInterval))
}

func (m playgroundModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.styles = m.styles.WithWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case ui.TickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tea.Batch(m.refresh(), ui.Tick(ui.RefreshInterval))

	case snapshotMsg:
		m.snap = msg.snap
		m.loaded = true
		if n := len(m.snap.Elements); m.selected >= n {
			m.selected = max(n-1, 0)
		}
		return m, nil

	case ui.ErrorMsg:
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m playgroundModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		value := m.input.Value()
		m.stopEditing()
		if value == "" {
			return m, nil
		}
		return m, m.act(config.ActionType, value)

	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *playgroundModel) stopEditing() {
	m.editing = false
	m.input.Reset()
	m.input.Blur()
}

func (m playgroundModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case m.keys.IsUp(msg):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case m.keys.IsDown(msg):
		if m.selected < len(m.snap.Elements)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.navigate(config.ActionNext)
	case key.Matches(msg, m.keys.Prev):
		return m, m.navigate(config.ActionPrev)
	case key.Matches(msg, m.keys.Exit):
		return m, m.navigate(config.ActionExit)
	}

	el, ok := m.selectedElement()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if el.Hidden {
			return m, m.act(config.ActionShow, "")
		}
		return m, m.act(config.ActionHide, "")

	case key.Matches(msg, m.keys.Detach):
		if el.Attached {
			return m, m.act(config.ActionRemove, "")
		}
		return m, m.act(config.ActionAttach, "")

	case key.Matches(msg, m.keys.Type):
		m.editing = true
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Clear):
		return m, m.act(config.ActionClear, "")
	case key.Matches(msg, m.keys.Animate):
		return m, m.act(config.ActionAnimate, "")
	case key.Matches(msg, m.keys.Finish):
		return m, m.act(config.ActionFinishAnimation, "")
	}

	return m, nil
}

func (m playgroundModel) selectedElement() (app.ElementView, bool) {
	if m.selected < 0 || m.selected >= len(m.snap.Elements) {
		return app.ElementView{}, false
	}
	return m.snap.Elements[m.selected], true
}

func (m playgroundModel) refresh() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		snap, err := session.Snapshot(ctx)
		if err != nil {
			return ui.NewErrorMsg(err)
		}
		return snapshotMsg{snap: snap}
	}
}

func (m playgroundModel) navigate(kind config.ActionKind) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		if err := session.Navigate(ctx, kind); err != nil {
			return ui.NewErrorMsg(err)
		}
		snap, err := session.Snapshot(ctx)
		if err != nil {
			return ui.NewErrorMsg(err)
		}
		return snapshotMsg{snap: snap}
	}
}

func (m playgroundModel) act(kind config.ActionKind, value string) tea.Cmd {
	ctx, session, index := m.ctx, m.session, m.selected
	return func() tea.Msg {
		if err := session.Act(ctx, index, kind, value); err != nil {
			return ui.NewErrorMsg(err)
		}
		snap, err := session.Snapshot(ctx)
		if err != nil {
			return ui.NewErrorMsg(err)
		}
		return snapshotMsg{snap: snap}
	}
}

func (m playgroundModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.loaded {
		return m.styles.App.Render(m.styles.Help.Render("Starting walkthrough..."))
	}

	var b strings.Builder

	name := m.snap.TourName
	if name == "" {
		name = "walkthrough"
	}
	b.WriteString(m.styles.Title.Render("Waypoint · " + m.title.String(name)))
	b.WriteString("\n")
	b.WriteString(m.progressView())
	b.WriteString("\n\n")

	inner := m.width - 4
	half := inner / 2
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.pageView(half),
		m.tooltipView(inner-half),
	))
	b.WriteString("\n")
	b.WriteString(m.eventsView())

	if m.editing {
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return m.styles.App.Render(b.String())
}

func (m playgroundModel) progressView() string {
	reached := m.snap.Step + 1
	if m.snap.Progress.Outcome == tour.OutcomeCompleted {
		reached = m.snap.Steps
	}
	return m.progress.
		SetSteps(reached, m.snap.Steps).
		SetMessage(m.title.String(string(m.snap.State))).
		View()
}

func (m playgroundModel) pageView(width int) string {
	p := components.NewPanel("Page").WithWidth(width).WithStyles(m.styles)
	if m.snap.Live {
		return p.AddLine(m.styles.Help.Render("live browser page: use its buttons or n/p/x")).View()
	}
	for i, el := range m.snap.Elements {
		p = p.AddLine(m.elementLine(i, el))
	}
	return p.View()
}

func (m playgroundModel) elementLine(i int, el app.ElementView) string {
	label := el.Label
	var tags []string
	if !el.Attached {
		tags = append(tags, "detached")
		label = m.styles.ElementGone.Render(label)
	}
	if el.Hidden {
		tags = append(tags, "hidden")
	}
	if el.Animating {
		tags = append(tags, "animating")
	}
	if el.Value != "" {
		tags = append(tags, fmt.Sprintf("value=%q", el.Value))
	}

	line := label
	if len(tags) > 0 {
		line += " " + m.styles.Help.Render("["+strings.Join(tags, ", ")+"]")
	}
	if i == m.selected {
		return m.styles.ElementSelected.Render("> " + line)
	}
	return m.styles.Element.Render("  " + line)
}

func (m playgroundModel) tooltipView(width int) string {
	if !m.snap.Running {
		msg := fmt.Sprintf("Walkthrough %s after %s.", m.snap.Progress.Outcome, m.snap.Progress.Duration().Round(time.Millisecond))
		return components.NewPanel("Tour ended").WithWidth(width).WithStyles(m.styles).AddLine(msg).View()
	}

	step := m.snap.Current
	if step == nil {
		return components.NewPanel("No step").WithWidth(width).WithStyles(m.styles).View()
	}

	title := step.Title
	if title == "" {
		title = fmt.Sprintf("Step %d", m.snap.Step+1)
	}
	p := components.NewPanel(title).WithWidth(width).WithStyles(m.styles).WithStyle(m.styles.Tooltip)
	p = p.AddLine(m.styles.ElementAnchor.Render("on " + step.Anchor.Selector))
	if step.Intro != "" {
		p = p.AddLine(m.styles.Paragraph.Render(step.Intro))
	}
	for _, h := range m.snap.Hints {
		state := m.styles.Warning.Render("pending")
		if h.Resolved {
			state = m.styles.Success.Render("resolved")
		}
		line := "• " + h.Selector
		if h.Text != "" {
			line += ": " + h.Text
		}
		p = p.AddLine(line + " " + state)
	}
	p = p.AddLine(m.buttonsView())
	if gen := m.snap.Generation; gen != nil {
		p = p.AddLine(m.styles.Help.Render("watching: " + strings.Join(gen.Watchers, ", ")))
	}
	return p.View()
}

func (m playgroundModel) buttonsView() string {
	bar := m.snap.Buttons
	if !bar.Bar {
		return m.styles.Help.Render("(navigation hidden)")
	}
	button := func(label string, shown bool) string {
		if shown {
			return m.styles.ButtonActive.Render(label)
		}
		return m.styles.ButtonDisabled.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		button("Back", bar.Previous), " ", button("Next", bar.Next))
}

func (m playgroundModel) eventsView() string {
	events := m.snap.Events
	if len(events) > ui.DefaultEventRows {
		events = events[len(events)-ui.DefaultEventRows:]
	}

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("Events"))
	for _, e := range events {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %8s  %-6s step %d  %s", e.At.Round(time.Millisecond), e.Kind, e.Step+1, e.Detail)
	}
	return b.String()
}
