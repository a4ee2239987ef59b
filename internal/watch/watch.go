// Package watch implements the `watch` command's rebuild loop: an
// fsnotify watcher over every target's root directory plus the resolved
// config file, debounced so a burst of filesystem events coalesces into
// one rebuild, driving a caller-supplied build function.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"warp/internal/platform/logx"
)

// debounceWindow is how long the watcher waits after the last observed
// event before triggering a rebuild, so a burst of filesystem events
// coalesces into one rebuild.
const debounceWindow = 250 * time.Millisecond

// BuildFunc runs one build; ctx is cancelled if the watch loop is asked to
// stop mid-build.
type BuildFunc func(ctx context.Context) error

// Loop watches roots and configPath for changes, running build once up
// front and again after every debounced burst of changes, until ctx is
// cancelled.
type Loop struct {
	watcher *fsnotify.Watcher
	logger  logx.Logger
	build   BuildFunc
}

// New creates a Loop watching roots (each target's root_dir) and
// configPath (the resolved build configuration file) recursively.
func New(roots []string, configPath string, build BuildFunc, logger logx.Logger) (*Loop, error) {
	if logger == nil {
		logger = logx.New()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	l := &Loop{watcher: w, logger: logger.With("component", "watch"), build: build}

	for _, root := range roots {
		if err := l.addRecursive(root); err != nil {
			w.Close()
			return nil, err
		}
	}
	if configPath != "" {
		if err := w.Add(configPath); err != nil {
			l.logger.Warn("could not watch config file", "path", configPath, "error", err.Error())
		}
	}

	return l, nil
}

// addRecursive registers root and every subdirectory beneath it; fsnotify
// does not watch subtrees automatically.
func (l *Loop) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// An unreadable subdirectory just isn't watched; it doesn't
			// abort the whole watch setup.
			return nil
		}
		if d.IsDir() {
			if addErr := l.watcher.Add(path); addErr != nil {
				l.logger.Warn("could not watch directory", "path", path, "error", addErr.Error())
			}
		}
		return nil
	})
}

// Run builds once, then rebuilds after every debounced burst of change
// events, until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.watcher.Close()

	if err := l.build(ctx); err != nil {
		l.logger.Err(err, "phase", "initial build")
	}

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-l.watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			l.logger.Info("change detected, rebuilding")
			if err := l.build(ctx); err != nil {
				l.logger.Err(err, "phase", "rebuild")
			}

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("watch error", "error", err.Error())
		}
	}
}

// isRelevant filters out events this loop doesn't care about rebuilding
// for (permission-bit-only chmod events are the main source of noise).
func isRelevant(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
