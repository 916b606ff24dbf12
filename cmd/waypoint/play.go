package main

import (
	"context"
	"fmt"

	rodadapter "github.com/felixgeelhaar/waypoint/internal/adapters/rod"
	"github.com/felixgeelhaar/waypoint/internal/app"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/ports"
	"github.com/felixgeelhaar/waypoint/internal/tui"
	"github.com/spf13/cobra"
)

var (
	playPagePath     string
	playScenarioPath string
	playNoAltScreen  bool
	playURL          string
	playBrowser      string
	playHeadless     bool
)

var playCmd = &cobra.Command{
	Use:   "play [tour]",
	Short: "Run a tour interactively over a page",
	Long: `Play starts the tour over a page in the terminal. Select page elements and
hide, detach, type into or animate them while the walkthrough reacts in real
time; navigate with next, back and exit.

The page comes from an HTML file (--page) or from a scenario (--scenario),
whose timeline is ignored. Without a tour argument the scenario's tour is used.

With --url the tour runs over a real page in Chrome or Chromium. The browser
paints the navigation bar into the page, and the playground drives the
walkthrough while you interact with the page in the browser window.`,
	Example: `  waypoint play tour.yaml --page page.html
  waypoint play --scenario examples/signup/scenario.yaml
  waypoint play tour.yaml --url http://localhost:3000/signup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playPagePath, "page", "", "HTML page to run the tour over")
	playCmd.Flags().StringVar(&playScenarioPath, "scenario", "", "scenario whose page (and tour) to use")
	playCmd.Flags().BoolVar(&playNoAltScreen, "no-alt-screen", false, "render inline instead of on the alternate screen")
	playCmd.Flags().StringVar(&playURL, "url", "", "page to open in a browser and run the tour over")
	playCmd.Flags().StringVar(&playBrowser, "browser", "", "browser executable for --url (default: find Chrome or Chromium)")
	playCmd.Flags().BoolVar(&playHeadless, "headless", false, "run the --url browser without a window")
	playCmd.MarkFlagsMutuallyExclusive("page", "scenario", "url")
	playCmd.MarkFlagsOneRequired("page", "scenario", "url")

	_ = playCmd.RegisterFlagCompletionFunc("page", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"html", "htm"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = playCmd.RegisterFlagCompletionFunc("scenario", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

func runPlay(cmd *cobra.Command, args []string) error {
	var tourPath string
	if len(args) == 1 {
		tourPath = args[0]
	}

	// the playground owns the terminal; engine logs only with --verbose
	var logger ports.Logger = ports.NewNopLogger()
	if verbose {
		var err error
		if logger, err = newLogger(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	var (
		tf   *config.TourFile
		opts tui.PlaygroundOptions
	)
	if playURL != "" {
		if tourPath == "" {
			return config.NewUserError(config.ErrCodeTourNotFound, "no tour given").
				WithSuggestion("Pass the tour file to run over the page: waypoint play tour.yaml --url " + playURL)
		}
		var err error
		if tf, err = config.LoadTour(tourPath); err != nil {
			return err
		}
		browser, doc, err := openLivePage(cmd.Context(), playURL, logger)
		if err != nil {
			return err
		}
		defer func() { _ = browser.Close() }()
		defer func() { _ = doc.Close() }()
		opts = tui.NewPlaygroundOptions(tf.Tour, nil).WithLivePage(doc)
	} else {
		sc, err := playScenario(playPagePath, playScenarioPath)
		if err != nil {
			return err
		}
		if tf, err = sc.LoadTour(tourPath); err != nil {
			return err
		}
		page, err := app.BuildPage(sc)
		if err != nil {
			return err
		}
		opts = tui.NewPlaygroundOptions(tf.Tour, page)
	}

	opts = opts.
		WithController(app.EngineOptions(tf.Engine, logger)).
		WithAltScreen(!playNoAltScreen)
	res, err := tui.RunPlayground(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Walkthrough %s: visited %d/%d steps\n",
		res.Progress.Outcome, len(res.Progress.DistinctVisited()), res.Progress.TotalSteps)
	return nil
}

// openLivePage launches the browser and loads url in a new tab.
func openLivePage(ctx context.Context, url string, logger ports.Logger) (*rodadapter.Browser, *rodadapter.Document, error) {
	browser, err := rodadapter.Launch(ctx, rodadapter.Options{
		Bin:      playBrowser,
		Headless: playHeadless,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, config.NewBrowserError(url, err)
	}
	doc, err := browser.Open(ctx, url)
	if err != nil {
		_ = browser.Close()
		return nil, nil, config.NewBrowserError(url, err)
	}
	return browser, doc, nil
}

// playScenario returns the scenario that supplies the playground page. A
// bare page file is wrapped in an empty scenario.
func playScenario(pagePath, scenarioPath string) (*config.Scenario, error) {
	if scenarioPath != "" {
		return config.LoadScenario(scenarioPath)
	}
	return &config.Scenario{Page: pagePath}, nil
}
