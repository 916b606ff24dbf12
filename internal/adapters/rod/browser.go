// Package rod implements the engine's DOM boundary over a real browser page
// driven through the Chrome DevTools Protocol with go-rod. Element queries,
// layout and computed style are read with in-page evaluation; event
// listeners report back through a binding exposed on the page.
package rod

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/waypoint/internal/ports"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures how the browser is reached.
type Options struct {
	// ControlURL is the DevTools websocket of a running browser. Empty
	// launches a new one.
	ControlURL string
	// Bin is the browser executable to launch. Empty lets the launcher
	// find or download one.
	Bin string
	// Headless launches the browser without a window.
	Headless bool
	// Logger receives adapter diagnostics. Nil discards them.
	Logger ports.Logger
}

// Browser is a connected browser.
type Browser struct {
	browser *rod.Browser
	launch  *launcher.Launcher
	logger  ports.Logger
}

// Launch connects to opts.ControlURL, or launches a browser when it is empty.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	b := &Browser{logger: ports.OrNop(opts.Logger)}

	controlURL := opts.ControlURL
	if controlURL == "" {
		b.launch = launcher.New().Headless(opts.Headless)
		if opts.Bin != "" {
			b.launch = b.launch.Bin(opts.Bin)
		}
		u, err := b.launch.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		b.kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	b.browser = browser
	b.logger.Debug(ctx, "browser connected", ports.F("control_url", controlURL))
	return b, nil
}

// Open navigates a new tab to url, waits for it to load and returns its
// document.
func (b *Browser) Open(ctx context.Context, url string) (*Document, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}
	return NewDocument(page, b.logger)
}

// Close disconnects from the browser and stops it when Launch started it.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.kill()
	return err
}

func (b *Browser) kill() {
	if b.launch == nil {
		return
	}
	b.launch.Kill()
	b.launch.Cleanup()
}
