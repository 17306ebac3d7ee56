package modules

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the loader's search paths and drops cached parses when
// source files change, so long-lived sessions pick up edits on the next
// import.
type Watcher struct {
	watcher *fsnotify.Watcher
	loader  *Loader

	mu         sync.Mutex
	lastChange time.Time
}

// NewWatcher creates a watcher bound to the loader's search paths.
func NewWatcher(l *Loader) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: fsWatcher, loader: l}, nil
}

// Start begins watching and returns; the event loop runs until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.loader.searchPaths {
		if err := w.watchDirRecursive(dir); err != nil {
			continue // missing search paths are fine
		}
	}
	go w.eventLoop(ctx)
	return nil
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// watchDirRecursive adds a directory and its subdirectories to the watch list
func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

func isModuleFile(path string) bool {
	switch filepath.Ext(path) {
	case ".ruchy", ".rchy":
		return true
	}
	return false
}

// eventLoop processes file system events
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			// New directories need watching too.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.watchDirRecursive(event.Name)
					continue
				}
			}

			if !isModuleFile(event.Name) {
				continue
			}

			w.mu.Lock()
			w.lastChange = time.Now()
			w.mu.Unlock()
			w.loader.Invalidate(event.Name)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// LastChange reports when a module file most recently changed on disk.
func (w *Watcher) LastChange() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastChange
}
