package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/rgonek/uniast-converter/internal/logging"
)

// watchFile calls fn once, then again after every write to path, until ctx
// is done. Errors returned by fn are logged and do not stop the watch.
func watchFile(ctx context.Context, logger *slog.Logger, path string, fn func() error) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file instead of writing it, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absPath, err)
	}

	run := func() {
		if err := fn(); err != nil {
			logger.Error("Conversion failed", "path", absPath, logging.Err(err))
		}
	}
	run()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", logging.Err(err))
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logging.LogTrace(logger, "file event", "name", ev.Name, "op", ev.Op)
			if filepath.Clean(ev.Name) != absPath {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				run()
			}
		}
	}
}
