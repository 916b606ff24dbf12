package app

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/felixgeelhaar/waypoint/internal/ports"
)

// Default file watch cadence.
const (
	DefaultWatchInterval = time.Second
	DefaultWatchDebounce = 500 * time.Millisecond
)

// FileOperation is the kind of change seen on a watched file.
type FileOperation string

// File operations.
const (
	FileOpCreate FileOperation = "create"
	FileOpModify FileOperation = "modify"
	FileOpDelete FileOperation = "delete"
)

// FileChange is one change to a watched file.
type FileChange struct {
	Path      string
	Operation FileOperation
}

// FileWatchOptions configures a FileWatch.
type FileWatchOptions struct {
	Paths []string
	// Interval is how often modification times are compared.
	Interval time.Duration
	// Debounce is how long the files must stay unchanged before OnChange runs.
	Debounce time.Duration
	// RunOnStart calls OnChange once, with no changes, before watching.
	RunOnStart bool
	Logger     ports.Logger
}

// FileWatch reruns a function when any of a fixed set of files changes:
// a scenario, its tour and its page, so edits replay immediately.
type FileWatch struct {
	opts     FileWatchOptions
	onChange func(ctx context.Context, changes []FileChange) error
	logger   ports.Logger
}

// NewFileWatch creates a file watch that calls onChange with the changes
// collected since the previous call.
func NewFileWatch(opts FileWatchOptions, onChange func(ctx context.Context, changes []FileChange) error) *FileWatch {
	if opts.Interval <= 0 {
		opts.Interval = DefaultWatchInterval
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	return &FileWatch{
		opts:     opts,
		onChange: onChange,
		logger:   ports.OrNop(opts.Logger),
	}
}

// Run watches until ctx is done. Errors from onChange are logged and
// watching continues.
func (w *FileWatch) Run(ctx context.Context) error {
	last := modTimes(w.opts.Paths)
	if w.opts.RunOnStart {
		w.trigger(ctx, nil)
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	var (
		pending     map[string]FileOperation
		lastChanged time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			current := modTimes(w.opts.Paths)
			for _, c := range diffModTimes(last, current) {
				if pending == nil {
					pending = make(map[string]FileOperation)
				}
				pending[c.Path] = mergeOperation(pending[c.Path], c.Operation)
				lastChanged = now
			}
			last = current

			if len(pending) > 0 && now.Sub(lastChanged) >= w.opts.Debounce {
				w.trigger(ctx, flatten(pending))
				pending = nil
			}
		}
	}
}

func (w *FileWatch) trigger(ctx context.Context, changes []FileChange) {
	for _, c := range changes {
		w.logger.Info(ctx, "file changed", ports.F("path", c.Path), ports.F("operation", string(c.Operation)))
	}
	if err := w.onChange(ctx, changes); err != nil {
		w.logger.Warn(ctx, "rerun failed", ports.F("error", err.Error()))
	}
}

// modTimes stats each path; missing files are left out.
func modTimes(paths []string) map[string]time.Time {
	times := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		times[p] = info.ModTime()
	}
	return times
}

// diffModTimes lists the changes between two scans, sorted by path.
func diffModTimes(before, after map[string]time.Time) []FileChange {
	var changes []FileChange
	for path, mod := range after {
		prev, ok := before[path]
		switch {
		case !ok:
			changes = append(changes, FileChange{Path: path, Operation: FileOpCreate})
		case !mod.Equal(prev):
			changes = append(changes, FileChange{Path: path, Operation: FileOpModify})
		}
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			changes = append(changes, FileChange{Path: path, Operation: FileOpDelete})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// mergeOperation folds a new change into one already pending for the same
// file. A file that ends up present after a delete was recreated.
func mergeOperation(prev, next FileOperation) FileOperation {
	switch {
	case prev == "":
		return next
	case prev == FileOpCreate && next == FileOpModify:
		return FileOpCreate
	case prev == FileOpDelete && next == FileOpCreate:
		return FileOpModify
	default:
		return next
	}
}

func flatten(pending map[string]FileOperation) []FileChange {
	changes := make([]FileChange, 0, len(pending))
	for path, op := range pending {
		changes = append(changes, FileChange{Path: path, Operation: op})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}
