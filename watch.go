// SPDX-License-Identifier: EPL-2.0

package musicreplacer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	watchPoll   = 250 * time.Millisecond
	watchSettle = time.Second
)

// WatchDirectory overrides tracks from files dropped into dir. A file is
// picked up once it has stopped changing for a second, under the same
// rules as BulkOverride. It returns once the watch is running; the watch
// ends with ctx or Shutdown.
func (r *Replacer) WatchDirectory(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	r.watchers.Add(1)
	go func() {
		defer r.watchers.Done()
		defer watcher.Close()
		r.watch(ctx, watcher, dir)
	}()

	r.logger.Info("watching for overrides", zap.String("dir", dir))
	return nil
}

func (r *Replacer) watch(ctx context.Context, watcher *fsnotify.Watcher, dir string) {
	log := r.logger.With(zap.String("dir", dir))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, eligible := r.store.BulkEligible(event.Name); eligible {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn("watch error", zap.Error(err))
			}

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < watchSettle {
					continue
				}
				delete(pending, path)

				name, ok := r.store.BulkEligible(path)
				if !ok {
					continue
				}
				log.Debug("picked up override", zap.String("track", name), zap.String("path", path))
				r.OverrideWithFile(name, path)
			}
		}
	}
}
