package main

import (
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/waypoint/internal/app"
	mcptools "github.com/felixgeelhaar/waypoint/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [tour]",
	Short: "Serve a live walkthrough to AI agents over MCP",
	Long: `Start a Model Context Protocol (MCP) server over a live walkthrough.

The walkthrough runs on a real clock over a page from an HTML file (--page)
or a scenario (--scenario), exactly as in play. Agents drive it through tools:

Available tools:
  - waypoint_snapshot  Show the current step, watchers, page and event log
  - waypoint_navigate  Go to the next or previous step, or exit
  - waypoint_act       Show, hide, remove, attach, type into or animate an element
  - waypoint_replay    Replay a scenario file on a virtual clock
  - waypoint_status    Report the build and whether the walkthrough runs

Logs go to stderr; stdout carries the protocol.`,
	Example: `  waypoint mcp --scenario examples/signup/scenario.yaml
  waypoint mcp tour.yaml --page page.html --http :8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

var (
	mcpHTTP         string
	mcpPagePath     string
	mcpScenarioPath string
)

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Start HTTP server on address (e.g., :8080)")
	mcpCmd.Flags().StringVar(&mcpPagePath, "page", "", "HTML page to run the tour over")
	mcpCmd.Flags().StringVar(&mcpScenarioPath, "scenario", "", "scenario whose page (and tour) to use")
	mcpCmd.MarkFlagsMutuallyExclusive("page", "scenario")
	mcpCmd.MarkFlagsOneRequired("page", "scenario")
}

func runMCP(cmd *cobra.Command, args []string) error {
	var tourPath string
	if len(args) == 1 {
		tourPath = args[0]
	}

	sc, err := playScenario(mcpPagePath, mcpScenarioPath)
	if err != nil {
		return err
	}
	tf, err := sc.LoadTour(tourPath)
	if err != nil {
		return err
	}
	page, err := app.BuildPage(sc)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := app.StartSession(ctx, tf.Tour, page, app.EngineOptions(tf.Engine, logger))
	if err != nil {
		return err
	}
	defer session.Close()

	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "waypoint",
		Version: version,
	})
	mcptools.RegisterAll(srv, session, logger, mcptools.VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
	})

	if mcpHTTP != "" {
		return mcp.ServeHTTP(ctx, srv, mcpHTTP)
	}
	return mcp.ServeStdio(ctx, srv)
}
