// Package tui provides the interactive playground: a terminal view of a page
// under a running walkthrough, where keys mutate the page and navigate the
// tour while the engine reacts in real time.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/waypoint/internal/app"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
)

// PlaygroundOptions configures the playground.
type PlaygroundOptions struct {
	Tour       *tour.Tour
	Page       *app.Page
	Controller app.ControllerOptions
	// Live is a browser page to run the tour over instead of Page.
	Live app.LivePage
	// AltScreen renders the playground on the terminal's alternate screen.
	AltScreen bool
}

// NewPlaygroundOptions creates default playground options.
func NewPlaygroundOptions(t *tour.Tour, page *app.Page) PlaygroundOptions {
	return PlaygroundOptions{Tour: t, Page: page, AltScreen: true}
}

// WithController sets the engine options.
func (o PlaygroundOptions) WithController(opts app.ControllerOptions) PlaygroundOptions {
	o.Controller = opts
	return o
}

// WithLivePage runs the tour over a browser page instead of the in-memory
// one.
func (o PlaygroundOptions) WithLivePage(page app.LivePage) PlaygroundOptions {
	o.Live = page
	return o
}

// WithAltScreen enables or disables the alternate screen.
func (o PlaygroundOptions) WithAltScreen(enabled bool) PlaygroundOptions {
	o.AltScreen = enabled
	return o
}

// PlaygroundResult holds the state of the walkthrough when the playground
// was closed.
type PlaygroundResult struct {
	Progress tour.Progress
	State    app.State
	Events   []app.SimEvent
}

// RunPlayground runs the interactive playground until the user quits.
func RunPlayground(ctx context.Context, opts PlaygroundOptions) (*PlaygroundResult, error) {
	session, err := startSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	model := newPlaygroundModel(ctx, session)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(model, programOpts...)
	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("playground failed: %w", err)
	}

	snap, err := session.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	return &PlaygroundResult{
		Progress: snap.Progress,
		State:    snap.State,
		Events:   snap.Events,
	}, nil
}

func startSession(ctx context.Context, opts PlaygroundOptions) (*app.Session, error) {
	if opts.Live != nil {
		return app.StartLiveSession(ctx, opts.Tour, opts.Live, opts.Controller)
	}
	return app.StartSession(ctx, opts.Tour, opts.Page, opts.Controller)
}
