package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/config"
	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/felixgeelhaar/waypoint/internal/domain/watch"
	"github.com/felixgeelhaar/waypoint/internal/tui/ui"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var checkStrict bool

var checkCmd = &cobra.Command{
	Use:   "check <tour>",
	Short: "Validate a tour and show how each step advances",
	Long: `Check loads a tour file and prints, for every step, its anchor and the
condition that moves the walkthrough onto it: a text wait, a visibility wait or
manual navigation only.

Conditions the engine does not recognize are reported as warnings; at runtime
such a step simply has no automatic advance.`,
	Example: `  waypoint check tour.yaml
  waypoint check tour.ini --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "fail when a condition is not recognized")
}

// stepReport is the check result for one step.
type stepReport struct {
	Index     int           `json:"index"`
	Element   string        `json:"element"`
	Title     string        `json:"title,omitempty"`
	Hints     int           `json:"hints"`
	Advance   string        `json:"advance"`
	Selector  string        `json:"selector,omitempty"`
	Debounce  time.Duration `json:"debounce,omitempty"`
	Delay     time.Duration `json:"delay,omitempty"`
	Condition string        `json:"condition,omitempty"`
	Warning   string        `json:"warning,omitempty"`

	cond watch.Condition
}

// checkReport is the check result for a tour file.
type checkReport struct {
	Path   string        `json:"path"`
	Format config.Format `json:"format"`
	Name   string        `json:"name"`
	Engine engineReport  `json:"engine"`
	Steps  []stepReport  `json:"steps"`
}

type engineReport struct {
	PollInterval         time.Duration `json:"poll_interval"`
	TextDebounce         time.Duration `json:"text_debounce"`
	DisappearGrace       time.Duration `json:"disappear_grace"`
	RefreshDetachedHints bool          `json:"refresh_detached_hints"`
}

func (r checkReport) warnings() int {
	n := 0
	for _, s := range r.Steps {
		if s.Warning != "" {
			n++
		}
	}
	return n
}

func runCheck(cmd *cobra.Command, args []string) error {
	tf, err := config.LoadTour(args[0])
	if err != nil {
		return err
	}

	report := buildCheckReport(tf)
	if jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printCheckReport(cmd.OutOrStdout(), report)
	}

	if n := report.warnings(); checkStrict && n > 0 {
		return config.NewUserError(config.ErrCodeTourInvalid, fmt.Sprintf("%d unrecognized condition(s)", n)).
			WithContext(tf.Path).
			WithSuggestion(`Use "<selector>:has-text", "<selector>:has-text(<ms>)" or "<selector>:visible".`)
	}
	return nil
}

func buildCheckReport(tf *config.TourFile) checkReport {
	report := checkReport{
		Path:   tf.Path,
		Format: tf.Format,
		Name:   tf.Tour.Name,
		Engine: engineReport{
			PollInterval:         tf.Engine.PollInterval,
			TextDebounce:         tf.Engine.TextDebounce,
			DisappearGrace:       tf.Engine.DisappearGrace,
			RefreshDetachedHints: tf.Engine.RefreshDetachedHints,
		},
	}
	for i, step := range tf.Tour.Steps {
		report.Steps = append(report.Steps, reportStep(i, step))
	}
	return report
}

func reportStep(index int, step *tour.Step) stepReport {
	r := stepReport{
		Index:     index,
		Element:   step.Anchor.String(),
		Title:     step.Title,
		Hints:     len(step.Hints),
		Condition: strings.TrimSpace(step.Condition),
	}

	c, ok := watch.ConditionFor(step)
	switch {
	case index == 0 && (ok || r.Condition != ""):
		r.Advance = watch.ConditionNone.String()
		r.Warning = "the first step's condition is never evaluated; conditions lead into their own step"
	case ok:
		r.cond = c
		r.Advance = c.Kind.String()
		r.Selector = c.Selector
		r.Debounce = c.Debounce
		r.Delay = c.Delay
	case r.Condition != "":
		r.Advance = watch.ConditionNone.String()
		r.Warning = fmt.Sprintf("unrecognized condition %q; the step only advances manually", r.Condition)
	default:
		r.Advance = watch.ConditionNone.String()
	}
	return r
}

func describeAdvance(r stepReport) string {
	switch {
	case r.Index == 0:
		return "first step"
	case r.cond.Kind == watch.ConditionNone:
		return "manual"
	default:
		return r.cond.String()
	}
}

func printCheckReport(w io.Writer, r checkReport) {
	styles := ui.DefaultStyles()
	title := cases.Title(language.English)

	name := r.Name
	if name == "" {
		name = r.Path
	}
	_, _ = fmt.Fprintln(w, styles.Title.Render(fmt.Sprintf("%s (%s, %d steps)", title.String(name), r.Format, len(r.Steps))))
	_, _ = fmt.Fprintf(w, "poll %s, text debounce %s, disappear grace %s\n\n",
		r.Engine.PollInterval, r.Engine.TextDebounce, r.Engine.DisappearGrace)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STEP\tELEMENT\tTITLE\tHINTS\tADVANCES WHEN")
	for _, s := range r.Steps {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.Index+1, s.Element, s.Title, s.Hints, describeAdvance(s))
	}
	_ = tw.Flush()

	warnings := r.warnings()
	_, _ = fmt.Fprintln(w)
	if warnings == 0 {
		_, _ = fmt.Fprintln(w, styles.Success.Render("All conditions recognized"))
		return
	}
	for _, s := range r.Steps {
		if s.Warning != "" {
			_, _ = fmt.Fprintln(w, styles.Warning.Render(fmt.Sprintf("step %d: %s", s.Index+1, s.Warning)))
		}
	}
}
