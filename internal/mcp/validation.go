package mcp

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/waypoint/internal/config"
)

// maxSnapshotEvents bounds the event tail a snapshot request may ask for.
const maxSnapshotEvents = 1000

// ValidateSnapshotInput validates SnapshotInput fields.
func ValidateSnapshotInput(in *SnapshotInput) error {
	if in.Events < 0 || in.Events > maxSnapshotEvents {
		return fmt.Errorf("invalid events: must be between 0 and %d", maxSnapshotEvents)
	}
	return nil
}

// ValidateNavigateInput validates NavigateInput fields.
func ValidateNavigateInput(in *NavigateInput) error {
	kind := config.ActionKind(in.Action)
	if !kind.Known() || kind.NeedsTarget() {
		return fmt.Errorf("invalid action %q: must be next, prev or exit", in.Action)
	}
	return nil
}

// ValidateActInput validates ActInput fields.
func ValidateActInput(in *ActInput) error {
	kind := config.ActionKind(in.Action)
	if !kind.Known() || !kind.NeedsTarget() {
		return fmt.Errorf("invalid action %q: use waypoint_navigate for next, prev and exit", in.Action)
	}
	if in.Index == nil && strings.TrimSpace(in.Element) == "" {
		return errors.New("invalid element: element or index is required")
	}
	if in.Index != nil && in.Element != "" {
		return errors.New("invalid element: give element or index, not both")
	}
	if kind == config.ActionType && in.Value == "" {
		return errors.New("invalid value: the type action needs text")
	}
	return nil
}

// ValidateReplayInput validates ReplayInput fields.
func ValidateReplayInput(in *ReplayInput) error {
	if err := validatePath(in.ScenarioPath, ".yaml", ".yml"); err != nil {
		return fmt.Errorf("invalid scenario_path: %w", err)
	}
	if in.TourPath != "" {
		if err := validatePath(in.TourPath); err != nil {
			return fmt.Errorf("invalid tour_path: %w", err)
		}
		if _, err := config.FormatFromPath(in.TourPath); err != nil {
			return fmt.Errorf("invalid tour_path: %w", err)
		}
	}
	return nil
}

func validatePath(path string, exts ...string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	if strings.ContainsRune(path, 0) {
		return errors.New("path contains a NUL byte")
	}
	if len(exts) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return nil
		}
	}
	return fmt.Errorf("unsupported extension %q (want one of %s)", ext, strings.Join(exts, ", "))
}
