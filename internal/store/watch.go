package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const watchedOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watch invalidates the store whenever a preset file in the backing folder
// changes, until ctx is cancelled. onChange, when non-nil, is called with the
// changed file name after each invalidation. The folder is created if needed.
func (s *Store) Watch(ctx context.Context, onChange func(path string)) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create presets dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch presets: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch presets dir: %w", err)
	}
	s.logger.Debugf("watching %s", s.dir)
	go s.watchLoop(ctx, watcher, onChange)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func(string)) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&watchedOps == 0 || !isPresetFile(filepath.Base(event.Name)) {
				continue
			}
			s.logger.Tracef("preset file event %s on %s", event.Op, event.Name)
			s.Invalidate()
			if onChange != nil {
				onChange(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warnf("preset watcher error: %v", err)
		}
	}
}
