// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs detection when detection-relevant files change.
//
// It monitors a project directory (and its node_modules, where install
// metadata lives) for the filenames detection strategies consult: lockfiles,
// package.json, and install-metadata markers. Events within a debounce
// window coalesce so the callback fires once per burst.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"pmdetect/pkg/agent"
	"pmdetect/pkg/detect"
)

// defaultDebounce is the delay before firing the onChange callback after the
// last filesystem event. Package managers rewrite lockfiles in bursts; the
// window coalesces a whole install into a single re-detection.
const defaultDebounce = 500 * time.Millisecond

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dir is the project directory to watch. Empty defaults to the
		// current working directory.
		Dir string

		// Debounce is the quiet period after the last event before the
		// callback fires. Zero or negative falls back to defaultDebounce.
		Debounce time.Duration

		// OnChange is called after the debounce window closes with the
		// deduplicated list of changed paths (relative to Dir). A nil
		// callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stderr receives informational and error messages. nil defaults to
		// os.Stderr.
		Stderr io.Writer
	}

	// Watcher monitors a project directory and fires a debounced callback
	// when detection signals change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		patterns []string
		stderr   io.Writer
		debounce time.Duration
		dir      string
		started  atomic.Bool
	}
)

// DetectionPatterns returns the doublestar patterns for every file detection
// can react to: the lockfile table, the manifest, and the install-metadata
// markers (directory markers match on any change beneath them).
func DetectionPatterns() []string {
	var patterns []string
	for _, lf := range agent.Lockfiles() {
		patterns = append(patterns, lf.File)
	}
	patterns = append(patterns, "package.json")
	for _, mk := range agent.InstallMetadata() {
		p := strings.TrimSuffix(mk.Path, "/")
		patterns = append(patterns, p, p+"/**")
	}
	return patterns
}

// New creates a Watcher for the given Config. It resolves Dir to an absolute
// path, initializes the underlying fsnotify watcher, and registers the
// project directory plus its node_modules when present.
func New(cfg Config) (*Watcher, error) {
	dir := cfg.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		dir = wd
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve project directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		patterns: DetectionPatterns(),
		stderr:   stderr,
		debounce: debounce,
		dir:      absDir,
	}

	if err := fsw.Add(absDir); err != nil {
		fsw.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("watch: add project directory %q: %w", absDir, err)
	}
	// node_modules is where install-metadata markers appear. It may not
	// exist yet; a create event for it extends the watch (see maybeAddDir).
	nm := filepath.Join(absDir, "node_modules")
	if info, statErr := os.Stat(nm); statErr == nil && info.IsDir() {
		if addErr := fsw.Add(nm); addErr != nil {
			fmt.Fprintf(stderr, "watch: add node_modules %q: %v\n", nm, addErr)
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled, processing filesystem events and
// dispatching debounced callbacks. It returns nil on clean context
// cancellation and propagates fatal watcher errors. Run must be called
// exactly once; a second call returns an error immediately.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains the pending set and invokes the OnChange callback. It may
	// be scheduled by time.AfterFunc after the context is cancelled, so
	// ctx.Err() is checked as a best-effort guard. The skip-if-busy guard
	// reschedules instead of dropping the pending set.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
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
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				fmt.Fprintf(w.stderr, "watch: callback error: %v\n", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil && !localTimer.Stop() {
			select {
			case <-localTimer.C:
			default:
			}
		}
		if closeErr := w.fsw.Close(); closeErr != nil {
			fmt.Fprintf(w.stderr, "watch: close fsnotify: %v\n", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}

			rel, err := filepath.Rel(w.dir, evt.Name)
			if err != nil {
				rel = evt.Name
			}

			// Extend the watch when node_modules or a directory marker
			// appears after startup.
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			if !w.isRelevant(rel) {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			fmt.Fprintf(w.stderr, "watch: fsnotify error: %v\n", err)
		}
	}
}

// maybeAddDir registers path with the fsnotify watcher when it is
// node_modules or a directory-shaped install-metadata marker.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return
	}

	normalized := filepath.ToSlash(rel)
	watchable := normalized == "node_modules"
	for _, mk := range agent.InstallMetadata() {
		if mk.IsDir() && normalized == strings.TrimSuffix(mk.Path, "/") {
			watchable = true
			break
		}
	}
	if !watchable {
		return
	}

	if addErr := w.fsw.Add(path); addErr != nil {
		fmt.Fprintf(w.stderr, "watch: add new directory %q: %v\n", path, addErr)
	}
}

// isRelevant reports whether the path (relative to Dir) matches any
// detection pattern.
func (w *Watcher) isRelevant(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.patterns {
		if matched, matchErr := doublestar.Match(pat, normalized); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// Redetect is the canonical OnChange payload: it re-runs detection with the
// given options and hands the outcome to report. It exists so the CLI and
// tests share one callback shape.
func Redetect(opts detect.Options, report func(*detect.Result)) func(ctx context.Context, changed []string) error {
	return func(ctx context.Context, _ []string) error {
		r, err := detect.Detect(ctx, opts)
		if err != nil {
			return err
		}
		report(r)
		return nil
	}
}
