package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/waypoint/internal/adapters/logging"
	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "A step engine for guided UI walkthroughs",
	Long: `Waypoint drives guided walkthroughs over a page: it anchors each step to an
element, advances on its own when a step's condition is met and ends the
walkthrough when the anchored element goes away.

Tours are written in YAML, TOML or INI. Scenarios replay page and user
behaviour against a tour on a virtual clock:
  waypoint check tour.yaml
  waypoint run scenario.yaml
  waypoint play tour.yaml --page page.html
  waypoint play tour.yaml --url http://localhost:3000
  waypoint mcp --scenario scenario.yaml`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging and technical error details)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "engine log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results and logs as JSON")

	// Register flag completions
	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(playCmd)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var list *config.ErrorList
	if errors.As(err, &list) {
		return list.Format()
	}

	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// newLogger builds the engine logger from the global flags. Logs go to
// stderr so they never interleave with command output.
func newLogger(w io.Writer) (ports.Logger, error) {
	level, err := ports.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	if verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonOutput),
	), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"debug\tEngine diagnostics such as unresolved anchors",
			"info\tStep transitions and outcomes",
			"warn\tRecovered teardown failures",
			"error\tErrors only",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
