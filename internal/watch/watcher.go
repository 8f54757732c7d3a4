// Package watch recompiles pages when their source files change.
//
// A Watcher monitors one or more root directories, filters events through
// doublestar include/ignore globs and invokes its callback once per quiet
// period with the set of changed files.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/amoebajs/builder-sub000/internal/ctxlog"
)

const DefaultDebounce = 300 * time.Millisecond

// DefaultPatterns selects the files that can change a compiled page.
var DefaultPatterns = []string{"**/*.hcl"}

var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// Config holds the parameters for a Watcher.
type Config struct {
	// Roots are the directories (or single files) to watch. A file root
	// watches its parent directory and only reports that file.
	Roots    []string
	Patterns []string
	Ignore   []string
	Debounce time.Duration

	// OnChange receives absolute paths. Errors are logged, not returned.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher fires a debounced callback when matching files change.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	patterns []string
	ignores  []string
	files    map[string]struct{}
	dirs     []string
	started  atomic.Bool
}

// New validates the configuration and registers every non-ignored directory
// under the roots.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, errors.New("watch: at least one root is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		patterns: patterns,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		files:    make(map[string]struct{}),
	}
	for _, root := range cfg.Roots {
		if err := w.addRoot(root); err != nil {
			fsw.Close() //nolint:errcheck
			return nil, err
		}
	}
	return w, nil
}

// Run blocks until ctx is cancelled and any running callback has returned.
// It may be called only once.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	logger := ctxlog.FromContext(ctx)

	var (
		mu       sync.Mutex
		pending  = make(map[string]struct{})
		timer    *time.Timer
		closing  bool
		busy     atomic.Bool
		inflight sync.WaitGroup
	)

	fire := func() {
		mu.Lock()
		if closing || ctx.Err() != nil {
			mu.Unlock()
			return
		}
		if !busy.CompareAndSwap(false, true) {
			logger.Debug("Previous rebuild still running, deferring.")
			if timer != nil {
				timer.Reset(w.cfg.Debounce)
			}
			mu.Unlock()
			return
		}
		inflight.Add(1)
		defer inflight.Done()
		defer busy.Store(false)

		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		logger.Info("Change detected.", "files", changed)
		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			logger.Error("Rebuild failed.", "error", err)
		}
	}

	// Run returns only after a rebuild already in progress has finished.
	defer func() {
		mu.Lock()
		closing = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		inflight.Wait()
		if err := w.fsw.Close(); err != nil {
			logger.Warn("Failed to close fsnotify watcher.", "error", err)
		}
	}()

	logger.Debug("Watcher started.", "roots", w.cfg.Roots, "patterns", w.patterns)
	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(ctx, evt.Name)
			}
			if !w.accepts(evt.Name) {
				continue
			}
			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.cfg.Debounce, fire)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed unexpectedly")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("Event queue overflowed, some changes may be missed.")
				continue
			}
			logger.Warn("fsnotify error.", "error", err)
		}
	}
}

func (w *Watcher) addRoot(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("watch: resolve %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch: stat %q: %w", root, err)
	}
	if !info.IsDir() {
		w.files[abs] = struct{}{}
		if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch: add %q: %w", filepath.Dir(abs), err)
		}
		return nil
	}

	w.dirs = append(w.dirs, abs)
	return filepath.WalkDir(abs, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil //nolint:nilerr
		}
		if rel, ok := w.relative(path); ok && rel != "." && w.isIgnored(rel+"/") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) maybeAddDir(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if rel, ok := w.relative(path); !ok || w.isIgnored(rel+"/") {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to watch new directory.", "path", path, "error", err)
	}
}

// accepts reports whether an event on path should schedule a rebuild.
// Globs are matched against the path relative to its directory root.
func (w *Watcher) accepts(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	rel, ok := w.relative(path)
	if !ok || w.isIgnored(rel) {
		return false
	}
	for _, pat := range w.patterns {
		if matched, _ := doublestar.Match(pat, rel); matched {
			return true
		}
	}
	return false
}

func (w *Watcher) relative(path string) (string, bool) {
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func (w *Watcher) isIgnored(slashed string) bool {
	for _, pat := range w.ignores {
		if ok, _ := doublestar.Match(pat, slashed); ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
