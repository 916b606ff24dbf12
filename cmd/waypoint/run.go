package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/app"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/tui/ui"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	runTourPath string
	runRealtime bool
	runWatch    bool
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Replay a scenario against a tour",
	Long: `Run builds the scenario's page, starts the tour on it and replays the
scenario timeline, printing every step change, action and exit with the time
it happened.

Replay uses a virtual clock, so a scenario spanning minutes finishes at once
and produces the same log every time. Use --realtime to run on the wall clock.

With --watch the scenario is replayed again whenever the scenario, its tour or
its page changes on disk.`,
	Example: `  waypoint run examples/signup/scenario.yaml
  waypoint run scenario.yaml --tour other-tour.toml
  waypoint run scenario.yaml --json
  waypoint run scenario.yaml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runTourPath, "tour", "t", "", "tour file (default: the scenario's tour entry)")
	runCmd.Flags().BoolVar(&runRealtime, "realtime", false, "replay on the wall clock instead of a virtual one")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "replay again whenever the scenario, tour or page changes")
}

func runRun(cmd *cobra.Command, args []string) error {
	if !runWatch {
		return replayScenario(cmd.Context(), cmd, args[0])
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	watch := app.NewFileWatch(app.FileWatchOptions{
		Paths:      watchedPaths(args[0], runTourPath),
		Debounce:   app.DefaultWatchDebounce,
		RunOnStart: true,
		Logger:     logger,
	}, func(ctx context.Context, _ []app.FileChange) error {
		err := replayScenario(ctx, cmd, args[0])
		if err != nil {
			printErrorTo(cmd.ErrOrStderr(), err)
		}
		return err
	})
	return watch.Run(ctx)
}

// watchedPaths lists the files a replay reads. A scenario that fails to load
// is still watched so fixing it triggers a replay.
func watchedPaths(scenarioPath, tourOverride string) []string {
	paths := []string{scenarioPath}
	sc, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return append(paths, tourOverride)
	}
	tourPath := tourOverride
	if tourPath == "" {
		tourPath = sc.Tour
	}
	return append(paths, tourPath, sc.Page)
}

func replayScenario(ctx context.Context, cmd *cobra.Command, scenarioPath string) error {
	sc, err := config.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	tf, err := sc.LoadTour(runTourPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sim := app.NewSimulator(app.SimulatorOptions{
		Controller: app.EngineOptions(tf.Engine, logger),
		Realtime:   runRealtime,
	})
	res, err := sim.Run(ctx, tf.Tour, sc)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	printRunReport(cmd.OutOrStdout(), tf, res)
	return nil
}

func printRunReport(w io.Writer, tf *config.TourFile, res *app.SimResult) {
	styles := ui.DefaultStyles()
	title := cases.Title(language.English)

	name := tf.Tour.Name
	if name == "" {
		name = tf.Path
	}
	_, _ = fmt.Fprintln(w, styles.Title.Render(fmt.Sprintf("%s (%d steps)", title.String(name), tf.Tour.Len())))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tEVENT\tSTEP\tDETAIL")
	for _, e := range res.Events {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", formatOffset(e.At), e.Kind, e.Step+1, e.Detail)
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, outcomeLine(styles, res))
}

func outcomeLine(styles ui.Styles, res *app.SimResult) string {
	p := res.Progress
	summary := fmt.Sprintf("visited %d/%d steps (%d%%), %d watcher generations, replay took %s",
		len(p.DistinctVisited()), p.TotalSteps, p.CompletionPercent(), p.Generations, formatOffset(res.Elapsed))

	switch p.Outcome {
	case tour.OutcomeCompleted:
		return styles.Success.Render(fmt.Sprintf("Completed after %s", formatOffset(p.Duration()))) + "; " + summary
	case tour.OutcomeAborted:
		return styles.Error.Render(fmt.Sprintf("Aborted after %s", formatOffset(p.Duration()))) + "; " + summary
	case tour.OutcomeExited:
		return styles.Warning.Render(fmt.Sprintf("Exited after %s", formatOffset(p.Duration()))) + "; " + summary
	default:
		return styles.Info.Render("Still running") + "; " + summary
	}
}

func formatOffset(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
