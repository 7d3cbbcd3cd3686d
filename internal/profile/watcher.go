package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever its backing file is written, created, or
// replaced, until ctx is cancelled. Editors that rename a temp file over the
// target produce Create/Rename events, so those re-add the watch. onReload,
// if non-nil, runs after every successful reload.
//
// Reload failures are logged and the previous profile set stays active.
func Watch(ctx context.Context, store *FileStore, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(store.Path()); err != nil {
		return fmt.Errorf("watching %s: %w", store.Path(), err)
	}

	log := slog.Default()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if err := handleEvent(store, watcher, event, log, onReload); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func handleEvent(store *FileStore, watcher *fsnotify.Watcher, event fsnotify.Event, log *slog.Logger, onReload func()) error {
	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		if err := store.Reload(); err != nil {
			log.Warn("profile reload failed, keeping previous profiles", "err", err)
			return nil
		}
		notify(onReload)
		return nil

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Atomic-save editors replace the file; re-watch the path so
		// the next save is still seen.
		_ = watcher.Remove(store.Path())
		if err := watcher.Add(store.Path()); err != nil {
			log.Warn("profiles file gone, watch suspended", "path", store.Path(), "err", err)
		}
		if err := store.Reload(); err != nil {
			log.Warn("profile reload failed", "err", err)
			return nil
		}
		notify(onReload)
		return nil
	}

	return nil
}

func notify(onReload func()) {
	if onReload != nil {
		onReload()
	}
}
