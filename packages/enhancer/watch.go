package enhancer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch enhances source and config files as they are created or written,
// until ctx is cancelled. onChange receives the result of each event that
// enhanced or failed a file. Our own rewrite of a file triggers another event
// which the sentinel turns into a no-op.
func (e *Enhancer) Watch(ctx context.Context, onChange func(*Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range e.cfg.SourceDirs {
		if err := e.watchTree(watcher, filepath.Join(e.workspace, dir)); err != nil {
			return err
		}
	}
	for _, dir := range e.cfg.ConfigDirs {
		root := filepath.Join(e.workspace, dir)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		if err := watcher.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}

	slog.Info("Watching for file changes", "workspace", e.workspace, "dirs", len(watcher.WatchList()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if result := e.handleEvent(watcher, event); result != nil && onChange != nil {
				onChange(result)
			}
		}
	}
}

// handleEvent returns nil when the event changed nothing worth reporting.
func (e *Enhancer) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) *Result {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && !e.shouldIgnoreDirectory(filepath.Base(event.Name)) {
			if err := e.watchTree(watcher, event.Name); err != nil {
				slog.Warn("Failed to watch new directory", "dir", event.Name, "error", err)
			}
		}
		return nil
	}

	rel, err := filepath.Rel(e.workspace, event.Name)
	if err != nil {
		return nil
	}
	kind, ok := e.kindOf(rel)
	if !ok {
		return nil
	}

	result := &Result{}
	e.process(filepath.ToSlash(rel), kind, result)
	if len(result.Enhanced) == 0 && len(result.Failed) == 0 {
		return nil
	}
	return result
}

func (e *Enhancer) watchTree(watcher *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && e.shouldIgnoreDirectory(d.Name()) {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
