package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/importfix/core/cache"
	"github.com/tristendillon/importfix/core/fixer"
	"github.com/tristendillon/importfix/core/logger"
	"github.com/tristendillon/importfix/core/runner"
)

const DefaultDebounce = 500 * time.Millisecond

// FileWatcher reruns the fixers over source files as they change. Events
// caused by the watcher's own writes are recognised through the content
// cache and ignored.
type FileWatcher struct {
	Watcher  *fsnotify.Watcher
	Runner   *runner.Runner
	Fixers   []fixer.Fixer
	Root     string
	Debounce time.Duration

	cache   *cache.ContentCache
	mutex   sync.Mutex
	runMu   sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	ready   chan struct{}
	// flushes counts scheduled and running reruns so Close can wait them out.
	flushes sync.WaitGroup
	closed  bool
}

func NewFileWatcher(r *runner.Runner, root string, fixers []fixer.Fixer) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if r.Cache == nil {
		r.Cache = cache.NewContentCache()
	}

	return &FileWatcher{
		Watcher:  w,
		Runner:   r,
		Fixers:   fixers,
		Root:     root,
		Debounce: DefaultDebounce,
		cache:    r.Cache,
		pending:  make(map[string]struct{}),
		ready:    make(chan struct{}),
	}, nil
}

// Ready is closed once the initial pass has run and every directory is
// being watched.
func (fw *FileWatcher) Ready() <-chan struct{} {
	return fw.ready
}

// Watch runs the full pipeline once, then reacts to file events until ctx
// is cancelled.
func (fw *FileWatcher) Watch(ctx context.Context) error {
	rootAbs := filepath.Join(fw.Runner.ProjectDir, filepath.FromSlash(fw.Root))
	if err := fw.addWatchersRecursively(rootAbs); err != nil {
		return fmt.Errorf("failed to add watchers: %w", err)
	}

	fw.runMu.Lock()
	if _, err := fw.Runner.RunPipeline(fw.Fixers); err != nil {
		logger.Warn("Initial pass: %v", err)
	}
	fw.runMu.Unlock()
	close(fw.ready)
	logger.Info("Watching %s for changes", fw.Root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			fw.handleEvent(event)

		case err, ok := <-fw.Watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	rel, ok := fw.relative(event.Name)
	if !ok || fw.Runner.Walker.Excluded(rel) {
		return
	}

	logger.Debug("File event: %s %s", event.Op, rel)

	if event.Has(fsnotify.Create) {
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			if err := fw.addWatchersRecursively(event.Name); err != nil {
				logger.Error("Failed to watch new directory %s: %v", rel, err)
				return
			}
			// Files may land in the directory before its watch exists.
			files, err := fw.Runner.Walker.Walk(rel)
			if err != nil {
				logger.Error("Failed to list new directory %s: %v", rel, err)
				return
			}
			fw.enqueue(files...)
			return
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		fw.cache.Remove(event.Name)
		return
	}

	if !fw.Runner.Walker.Matches(fw.Root, rel) {
		return
	}

	changed, err := fw.cache.Changed(event.Name)
	if err != nil {
		logger.Error("Content check failed for %s: %v", rel, err)
		return
	}
	if !changed {
		logger.Debug("Ignoring own write: %s", rel)
		return
	}

	fw.enqueue(rel)
}

func (fw *FileWatcher) enqueue(paths ...string) {
	if len(paths) == 0 {
		return
	}
	fw.mutex.Lock()
	for _, p := range paths {
		fw.pending[p] = struct{}{}
	}
	fw.mutex.Unlock()
	fw.debounceRun()
}

func (fw *FileWatcher) debounceRun() {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if fw.closed {
		return
	}
	if fw.timer != nil && fw.timer.Stop() {
		fw.flushes.Done()
	}

	fw.flushes.Add(1)
	fw.timer = time.AfterFunc(fw.Debounce, func() {
		defer fw.flushes.Done()
		if err := fw.flush(); err != nil {
			logger.Error("Rerun failed: %v", err)
		}
	})
}

func (fw *FileWatcher) flush() error {
	fw.mutex.Lock()
	paths := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		paths = append(paths, p)
	}
	fw.pending = make(map[string]struct{})
	fw.mutex.Unlock()

	if len(paths) == 0 {
		return nil
	}
	sort.Strings(paths)

	fw.runMu.Lock()
	defer fw.runMu.Unlock()

	logger.Debug("File changes detected, rerunning on %d files", len(paths))
	for _, f := range fw.Fixers {
		if _, err := fw.Runner.RunFiles(f, paths); err != nil {
			return fmt.Errorf("%s: %w", f.Name(), err)
		}
	}
	fw.cache.LogStats()
	return nil
}

// Close cancels any pending rerun and waits for one already in progress
// before closing the underlying watcher.
func (fw *FileWatcher) Close() error {
	fw.mutex.Lock()
	fw.closed = true
	if fw.timer != nil && fw.timer.Stop() {
		fw.flushes.Done()
	}
	fw.mutex.Unlock()

	fw.flushes.Wait()
	return fw.Watcher.Close()
}

func (fw *FileWatcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(fw.Runner.ProjectDir, name)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (fw *FileWatcher) addWatchersRecursively(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if rel, ok := fw.relative(path); ok && fw.Runner.Walker.Excluded(rel) {
			logger.Debug("Excluding directory: %s", rel)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.Watcher.Add(path); err != nil {
			return fmt.Errorf("failed to add watcher for %s: %w", path, err)
		}

		return nil
	})
}
