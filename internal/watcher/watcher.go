// Package watcher re-triggers work when topology or config files change
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"labsync/internal/logger"
)

// DefaultDebounce collapses the burst of events editors emit on save
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of files for changes
type Watcher struct {
	paths    []string
	debounce time.Duration
	log      logger.Logger
}

// New creates a watcher for the given files
func New(log logger.Logger, paths ...string) *Watcher {
	return &Watcher{
		paths:    paths,
		debounce: DefaultDebounce,
		log:      log.WithComponent("watcher"),
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch calls onChange with the absolute path of each changed file, at most
// once per debounce window per file. onChange never runs concurrently with
// itself. Watch blocks until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Directories are watched so files replaced by editors keep firing
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := fw.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
		files[abs] = true
		w.log.Info().Str("path", abs).Msg("Watching for changes")
	}

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	fire := make(chan string, len(files))
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !files[abs] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			mu.Lock()
			if t, ok := timers[abs]; ok {
				t.Stop()
			}
			timers[abs] = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- abs:
				default:
				}
			})
			mu.Unlock()

		case path := <-fire:
			w.log.Info().Str("path", path).Msg("File changed")
			onChange(path)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("Watcher error")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
