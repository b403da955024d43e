package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"scrolly/internal/logger"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
)

var watchLog = logger.With("dataset.watch")

// Reloader coalesces concurrent reload requests into one call of fn.
type Reloader struct {
	group singleflight.Group
	fn    func(ctx context.Context) error
}

func NewReloader(fn func(ctx context.Context) error) *Reloader {
	return &Reloader{fn: fn}
}

// Reload runs fn, or waits for the reload already in flight and shares its result.
func (r *Reloader) Reload(ctx context.Context) error {
	if r == nil || r.fn == nil {
		return fmt.Errorf("reloader not configured")
	}
	_, err, _ := r.group.Do("reload", func() (any, error) {
		return nil, r.fn(ctx)
	})
	return err
}

// Watcher triggers a reload when the watched file is written, created, or
// renamed into place. Bursts within the debounce window collapse into one.
type Watcher struct {
	path     string
	debounce time.Duration
	reloader *Reloader
}

func NewWatcher(path string, debounce time.Duration, reloader *Reloader) *Watcher {
	return &Watcher{path: path, debounce: debounce, reloader: reloader}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	// Watch the directory so atomic replace-by-rename is still seen.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	watchLog.Infof("watching %s (debounce %s)", abs, w.debounce)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case evt, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != abs || !relevant(evt.Op) {
				continue
			}
			watchLog.Debugf("event %s on %s", evt.Op, evt.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			watchLog.Warnf("watch error: %v", err)
		case <-fire:
			fire = nil
			if err := w.reloader.Reload(ctx); err != nil {
				watchLog.Errorf("reload after change failed: %v", err)
			}
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
