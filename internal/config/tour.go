// Package config loads tour and scenario files and reports problems with
// them as user-facing errors.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/domain/tour"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Format is a tour file encoding.
type Format string

// Supported tour formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
)

// Engine defaults.
const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultTextDebounce = 1000 * time.Millisecond
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch extOf(path) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".ini":
		return FormatINI, nil
	default:
		return "", NewFormatUnsupportedError(path)
	}
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Engine holds the engine tuning block of a tour file.
type Engine struct {
	PollInterval         time.Duration
	TextDebounce         time.Duration
	DisappearGrace       time.Duration
	RefreshDetachedHints bool
}

// DefaultEngine returns the engine settings used when a tour file has none.
func DefaultEngine() Engine {
	return Engine{
		PollInterval: DefaultPollInterval,
		TextDebounce: DefaultTextDebounce,
	}
}

// TourFile is a loaded tour with its engine settings.
type TourFile struct {
	Path   string
	Format Format
	Tour   *tour.Tour
	Engine Engine
}

// rawTour is the on-disk shape shared by the YAML and TOML encodings.
type rawTour struct {
	Name   string    `yaml:"name" toml:"name"`
	Engine rawEngine `yaml:"engine" toml:"engine"`
	Steps  []rawStep `yaml:"steps" toml:"steps"`
}

type rawEngine struct {
	PollInterval         *Duration `yaml:"pollInterval" toml:"pollInterval"`
	TextDebounce         *Duration `yaml:"textDebounce" toml:"textDebounce"`
	DisappearGrace       Duration  `yaml:"disappearGrace" toml:"disappearGrace"`
	RefreshDetachedHints bool      `yaml:"refreshDetachedHints" toml:"refreshDetachedHints"`
}

type rawStep struct {
	Element   string    `yaml:"element" toml:"element"`
	Title     string    `yaml:"title" toml:"title"`
	Intro     string    `yaml:"intro" toml:"intro"`
	Hints     []rawHint `yaml:"hints" toml:"hints"`
	HidePrev  bool      `yaml:"hidePrev" toml:"hidePrev"`
	HideNext  bool      `yaml:"hideNext" toml:"hideNext"`
	Condition string    `yaml:"condition" toml:"condition"`
	WaitFor   string    `yaml:"waitFor" toml:"waitFor"`
	WaitDelay Duration  `yaml:"waitDelay" toml:"waitDelay"`
}

type rawHint struct {
	Element string `yaml:"element" toml:"element"`
	Hint    string `yaml:"hint" toml:"hint"`
}

// LoadTour reads and validates the tour file at path. The format follows the
// file extension.
func LoadTour(path string) (*TourFile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewTourNotFoundError(path)
		}
		return nil, fmt.Errorf("failed to read tour: %w", err)
	}

	return ParseTour(data, format, path)
}

// ParseTour decodes and validates a tour. source names the input in errors;
// it also provides the tour name when the file declares none.
func ParseTour(data []byte, format Format, source string) (*TourFile, error) {
	var (
		raw *rawTour
		err error
	)
	switch format {
	case FormatYAML:
		raw, err = decodeYAML(data)
	case FormatTOML:
		raw, err = decodeTOML(data)
	case FormatINI:
		raw, err = decodeINI(data)
	default:
		return nil, NewFormatUnsupportedError(source)
	}
	if err != nil {
		return nil, NewTourParseError(source, format, err)
	}

	if raw.Name == "" && source != "" {
		raw.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	t, engine, err := raw.build()
	if err != nil {
		return nil, err
	}

	return &TourFile{
		Path:   source,
		Format: format,
		Tour:   t,
		Engine: engine,
	}, nil
}

func decodeYAML(data []byte) (*rawTour, error) {
	var raw rawTour
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &raw, nil
}

func decodeTOML(data []byte) (*rawTour, error) {
	var raw rawTour
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// decodeINI reads the INI layout: optional top-level name, an [engine]
// section, and one [step N] section per step ordered by N. Hints are a
// comma-separated selector list without hint text.
func decodeINI(data []byte) (*rawTour, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return nil, err
	}

	raw := &rawTour{Name: cfg.Section(ini.DefaultSection).Key("name").String()}

	if sec, err := cfg.GetSection("engine"); err == nil {
		if raw.Engine, err = iniEngine(sec); err != nil {
			return nil, err
		}
	}

	type numbered struct {
		n    int
		step rawStep
	}
	var steps []numbered
	for _, sec := range cfg.Sections() {
		rest, ok := strings.CutPrefix(sec.Name(), "step ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("section [%s]: step number must be an integer", sec.Name())
		}
		step, err := iniStep(sec)
		if err != nil {
			return nil, fmt.Errorf("section [%s]: %w", sec.Name(), err)
		}
		steps = append(steps, numbered{n: n, step: step})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].n < steps[j].n })

	for _, s := range steps {
		raw.Steps = append(raw.Steps, s.step)
	}
	return raw, nil
}

func iniEngine(sec *ini.Section) (rawEngine, error) {
	var e rawEngine
	for _, k := range []struct {
		key string
		dst **Duration
	}{
		{"pollInterval", &e.PollInterval},
		{"textDebounce", &e.TextDebounce},
	} {
		if !sec.HasKey(k.key) {
			continue
		}
		d, err := ParseDuration(sec.Key(k.key).String())
		if err != nil {
			return e, fmt.Errorf("engine %s: %w", k.key, err)
		}
		v := Duration(d)
		*k.dst = &v
	}

	grace, err := ParseDuration(sec.Key("disappearGrace").String())
	if err != nil {
		return e, fmt.Errorf("engine disappearGrace: %w", err)
	}
	e.DisappearGrace = Duration(grace)
	e.RefreshDetachedHints = sec.Key("refreshDetachedHints").MustBool(false)
	return e, nil
}

func iniStep(sec *ini.Section) (rawStep, error) {
	delay, err := ParseDuration(sec.Key("waitDelay").String())
	if err != nil {
		return rawStep{}, fmt.Errorf("waitDelay: %w", err)
	}

	step := rawStep{
		Element:   sec.Key("element").String(),
		Title:     sec.Key("title").String(),
		Intro:     sec.Key("intro").String(),
		HidePrev:  sec.Key("hidePrev").MustBool(false),
		HideNext:  sec.Key("hideNext").MustBool(false),
		Condition: sec.Key("condition").String(),
		WaitFor:   sec.Key("waitFor").String(),
		WaitDelay: Duration(delay),
	}
	for _, sel := range strings.Split(sec.Key("hints").String(), ",") {
		if sel = strings.TrimSpace(sel); sel != "" {
			step.Hints = append(step.Hints, rawHint{Element: sel})
		}
	}
	return step, nil
}

// build converts the raw file into domain values, collecting every problem.
func (r *rawTour) build() (*tour.Tour, Engine, error) {
	errs := NewErrorList()

	engine := DefaultEngine()
	if r.Engine.PollInterval != nil {
		engine.PollInterval = r.Engine.PollInterval.Std()
	}
	if r.Engine.TextDebounce != nil {
		engine.TextDebounce = r.Engine.TextDebounce.Std()
	}
	engine.DisappearGrace = r.Engine.DisappearGrace.Std()
	engine.RefreshDetachedHints = r.Engine.RefreshDetachedHints

	if engine.PollInterval <= 0 {
		errs.AddInvalid(ErrCodeTourInvalid, "engine.pollInterval", "must be positive", "Omit it to use the 200ms default.")
	}
	if engine.TextDebounce <= 0 {
		errs.AddInvalid(ErrCodeTourInvalid, "engine.textDebounce", "must be positive", "Omit it to use the 1s default.")
	}
	if engine.DisappearGrace < 0 {
		errs.AddInvalid(ErrCodeTourInvalid, "engine.disappearGrace", "must not be negative", "Use 0 to abort as soon as the anchor disappears.")
	}

	if len(r.Steps) == 0 {
		errs.AddInvalid(ErrCodeTourInvalid, "steps", "tour has no steps", "Add at least one step with an element selector.")
	}

	t := &tour.Tour{Name: r.Name, Steps: make([]*tour.Step, 0, len(r.Steps))}
	for i, rs := range r.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		if strings.TrimSpace(rs.Element) == "" {
			errs.AddInvalid(ErrCodeTourInvalid, field+".element", "is required", "Set element to the CSS selector the step points at.")
		}
		if rs.WaitDelay < 0 {
			errs.AddInvalid(ErrCodeTourInvalid, field+".waitDelay", "must not be negative", "")
		}

		step := &tour.Step{
			Anchor:    tour.Select(strings.TrimSpace(rs.Element)),
			Title:     rs.Title,
			Intro:     rs.Intro,
			HidePrev:  rs.HidePrev,
			HideNext:  rs.HideNext,
			Condition: strings.TrimSpace(rs.Condition),
			WaitFor:   strings.TrimSpace(rs.WaitFor),
			WaitDelay: rs.WaitDelay.Std(),
		}
		for j, rh := range rs.Hints {
			if strings.TrimSpace(rh.Element) == "" {
				errs.AddInvalid(ErrCodeTourInvalid, fmt.Sprintf("%s.hints[%d].element", field, j), "is required", "Hints are resolved inside the step's element.")
				continue
			}
			step.Hints = append(step.Hints, tour.Hint{Anchor: tour.Select(strings.TrimSpace(rh.Element)), Text: rh.Hint})
		}
		t.Steps = append(t.Steps, step)
	}

	if err := errs.AsError(); err != nil {
		return nil, Engine{}, err
	}
	return t, engine, nil
}
