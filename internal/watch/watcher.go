// SPDX-License-Identifier: MPL-2.0

// Package watch provides file-watching with debounced re-execution.
//
// It monitors an explicit, replaceable set of directories and invokes a
// callback after a debounce period when a file matching the watch patterns
// changes in one of them. Events within the debounce window are coalesced so
// the callback fires once with the full set of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the delay before firing the onChange callback after the
// last filesystem event. This allows rapid successive events (e.g., an editor
// writing then renaming a temp file) to coalesce into a single callback.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores lists path patterns that are always excluded, regardless of
// user-supplied ignore patterns. node_modules is deliberately absent: installs
// and upgrades there are what invalidate a resolution.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")

	// ErrWatcherBroken is wrapped by Run when the operating system stops
	// delivering events, typically after exhausting watch resources.
	ErrWatcherBroken = errors.New("watch: file watcher broken")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dirs are the directories to watch, non-recursively. Missing
		// directories are skipped; SetDirs replaces the set at runtime.
		Dirs []string

		// Patterns are doublestar-compatible glob patterns matched against
		// the slash-separated absolute path of a changed file, without its
		// leading slash (e.g. "**/package.json"). An empty slice accepts
		// every non-ignored file.
		Patterns []string

		// Ignore are additional patterns for paths that never trigger
		// callbacks. These are merged with the built-in default ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before the callback
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// ClearScreen controls whether the terminal is cleared before each
		// callback invocation by writing ANSI escape sequences to Stdout.
		ClearScreen bool

		// OnChange is called after the debounce window closes with the
		// deduplicated, sorted list of changed file paths. A nil callback is
		// a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout receives the clear-screen sequence; nil means os.Stdout.
		Stdout io.Writer

		// Logger receives watcher diagnostics; nil means a stderr logger.
		Logger *log.Logger
	}

	// Watcher monitors directories and fires a debounced callback when
	// matching files change. Run must be called exactly once; calling it a
	// second time returns ErrAlreadyRunning.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		stdout   io.Writer
		logger   *log.Logger
		debounce time.Duration
		started  atomic.Bool

		dirsMu sync.Mutex
		dirs   map[string]struct{}
	}
)

// New creates a Watcher from the given Config, validates its patterns and
// registers Dirs for monitoring.
func New(cfg Config) (*Watcher, error) {
	// Validate all patterns eagerly so invalid globs fail at construction
	// time rather than silently failing to match at runtime.
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "watch"})
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  ignores,
		stdout:   stdout,
		logger:   logger,
		debounce: debounce,
		dirs:     make(map[string]struct{}),
	}

	if err := w.SetDirs(cfg.Dirs); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close after init failure", "err", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// SetDirs replaces the watched directory set. Directories that do not exist
// are skipped. It returns the first error from registering an existing
// directory.
func (w *Watcher) SetDirs(dirs []string) error {
	want := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return fmt.Errorf("watch: resolve directory %q: %w", d, err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			w.logger.Debug("skipping missing directory", "dir", abs)
			continue
		}
		if w.isIgnored(abs) {
			continue
		}
		want[abs] = struct{}{}
	}

	w.dirsMu.Lock()
	defer w.dirsMu.Unlock()

	for d := range w.dirs {
		if _, keep := want[d]; keep {
			continue
		}
		if err := w.fsw.Remove(d); err != nil {
			w.logger.Debug("remove directory", "dir", d, "err", err)
		}
		delete(w.dirs, d)
	}
	for d := range want {
		if _, have := w.dirs[d]; have {
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", d, err)
		}
		w.dirs[d] = struct{}{}
	}
	return nil
}

// Dirs returns the watched directories, sorted.
func (w *Watcher) Dirs() []string {
	w.dirsMu.Lock()
	defer w.dirsMu.Unlock()
	return slices.Sorted(maps.Keys(w.dirs))
}

// Run blocks until ctx is cancelled, processing filesystem events and
// dispatching debounced callbacks. It returns nil on clean context
// cancellation and propagates any fatal watcher errors.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains the pending set and invokes OnChange. It may be scheduled
	// by time.AfterFunc after the context is cancelled, so ctx is checked
	// first. The skip-if-busy guard prevents overlapping callbacks when a
	// callback outlasts the debounce period.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Warn("skipping re-resolution (previous run still in progress)")
			// Retry so pending events are not dropped when no further
			// events arrive.
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.ClearScreen {
			// ANSI escape: clear screen and move cursor to top-left.
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("callback failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify", "err", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if w.isIgnored(evt.Name) || !w.matchesPatterns(evt.Name) {
				continue
			}
			w.logger.Debug("change", "path", evt.Name, "op", evt.Op.String())

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("%w: %w", ErrWatcherBroken, err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// isFatal reports whether err leaves the watcher unable to recover.
// fatalErrnos is platform-specific.
func isFatal(err error) bool {
	for _, errno := range fatalErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// matchPath normalises an absolute path for glob matching: forward slashes,
// no volume name, no leading slash.
func matchPath(path string) string {
	p := filepath.ToSlash(strings.TrimPrefix(path, filepath.VolumeName(path)))
	return strings.TrimPrefix(p, "/")
}

func (w *Watcher) isIgnored(path string) bool {
	return matchAny(w.ignores, matchPath(path))
}

// matchesPatterns returns true if path matches at least one of the
// configured watch patterns. When no patterns are configured, all paths match.
func (w *Watcher) matchesPatterns(path string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	return matchAny(w.cfg.Patterns, matchPath(path))
}

func matchAny(patterns []string, normalized string) bool {
	for _, pat := range patterns {
		if matched, matchErr := doublestar.Match(pat, normalized); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// validatePatterns checks that every pattern in the slice is a valid doublestar
// glob. The label (e.g., "watch" or "ignore") is used in error messages.
func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
