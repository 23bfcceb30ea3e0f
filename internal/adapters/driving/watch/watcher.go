// Package watch imports content files dropped into a directory.
//
// The watcher monitors one directory (not recursively) and invokes a
// callback for each matching file once events for it have settled, so a
// file still being copied is not picked up half-written.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/contentsync/internal/logger"
)

// defaultSettle is the quiet period after the last event on a file before
// it is handed to the callback.
const defaultSettle = 500 * time.Millisecond

// DefaultPatterns selects documents and archives.
var DefaultPatterns = []string{"*.yml", "*.yaml", "*.zip"}

// Config holds the parameters for a Watcher.
type Config struct {
	// Dir is the drop directory.
	Dir string

	// Patterns are filepath.Match patterns on the file name. Empty uses
	// DefaultPatterns.
	Patterns []string

	// Settle is the quiet period per file. Zero or negative values fall
	// back to defaultSettle.
	Settle time.Duration

	// ImportExisting hands files already present at startup to OnFile.
	ImportExisting bool

	// OnFile is called once per settled file with its absolute path.
	// Calls are serialised.
	OnFile func(ctx context.Context, path string) error
}

// Watcher monitors a drop directory. Run must be called exactly once.
type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	dir     string
	settle  time.Duration
	started atomic.Bool

	mu       sync.Mutex
	pending  map[string]*time.Timer
	closed   bool
	inflight sync.WaitGroup
	runMu    sync.Mutex
}

// New creates a Watcher for cfg.Dir. The directory must exist.
func New(cfg Config) (*Watcher, error) {
	if cfg.OnFile == nil {
		return nil, errors.New("watch: OnFile callback is required")
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", dir)
	}

	if len(cfg.Patterns) == 0 {
		cfg.Patterns = DefaultPatterns
	}
	for _, pat := range cfg.Patterns {
		if _, err := filepath.Match(pat, ""); err != nil {
			return nil, fmt.Errorf("watch: invalid pattern %q: %w", pat, err)
		}
	}

	settle := cfg.Settle
	if settle <= 0 {
		settle = defaultSettle
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", dir, err)
	}

	return &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		dir:     dir,
		settle:  settle,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run blocks until ctx is cancelled, dispatching settled files to OnFile.
// It returns nil on cancellation, once every OnFile call already started
// has returned.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	defer func() {
		w.mu.Lock()
		w.closed = true
		for path, timer := range w.pending {
			timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()
		w.inflight.Wait()
		if err := w.fsw.Close(); err != nil {
			logger.Warn("watch: close fsnotify: %v", err)
		}
	}()

	if w.cfg.ImportExisting {
		if err := w.queueExisting(ctx); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
				continue
			}
			if !w.matches(evt.Name) {
				continue
			}
			w.queue(ctx, evt.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			logger.Warn("watch: fsnotify error: %v", err)
		}
	}
}

// queueExisting schedules matching files already in the directory, in
// name order.
func (w *Watcher) queueExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("watch: read %s: %w", w.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(w.dir, name)
		if w.matches(path) {
			w.queue(ctx, path)
		}
	}
	return nil
}

// queue (re)starts the settle timer of path.
func (w *Watcher) queue(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() { w.fire(ctx, path) })
}

func (w *Watcher) fire(ctx context.Context, path string) {
	w.mu.Lock()
	delete(w.pending, path)
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	if ctx.Err() != nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()
	if err := w.cfg.OnFile(ctx, path); err != nil {
		logger.Error("import %s: %v", filepath.Base(path), err)
	}
}

// matches reports whether the base name of path matches a pattern.
// Hidden and partial-download files are ignored.
func (w *Watcher) matches(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".part") {
		return false
	}
	for _, pat := range w.cfg.Patterns {
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
	}
	return false
}
