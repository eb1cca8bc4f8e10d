// Package watcher reports filesystem changes under the project root.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skippedDirectories are never watched.
var skippedDirectories = []string{".git", ".jj", "node_modules"}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify. Directories are watched
// recursively and new directories are added as they appear.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan domain.WatchEvent

	mu          sync.Mutex
	root        string
	ignoreNames map[string]bool
	ignorePaths map[string]bool
	dirs        map[string]struct{}
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		fsWatcher: fsw,
		logger:    logger,
		events:    make(chan domain.WatchEvent, eventChannelBuffer),
		dirs:      make(map[string]struct{}),
	}, nil
}

// Start begins watching root recursively. ignore holds directory base names
// or absolute paths that are skipped in addition to .git and node_modules.
func (w *Watcher) Start(ctx context.Context, root string, ignore ...string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve watch root"), "root", root)
	}

	w.mu.Lock()
	w.root = abs
	w.ignoreNames = make(map[string]bool)
	w.ignorePaths = make(map[string]bool)
	for _, name := range skippedDirectories {
		w.ignoreNames[name] = true
	}
	for _, entry := range ignore {
		if filepath.IsAbs(entry) {
			w.ignorePaths[filepath.Clean(entry)] = true
		} else {
			w.ignoreNames[entry] = true
		}
	}
	w.mu.Unlock()

	for dir := range w.watchRecursively(abs) {
		if err := w.add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir)
		}
	}

	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[domain.WatchEvent] {
	return func(yield func(domain.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) add(dir string) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	w.mu.Lock()
	w.dirs[dir] = struct{}{}
	w.mu.Unlock()
	return nil
}

// forget drops dir and everything below it from the watched set and reports
// whether dir was watched.
func (w *Watcher) forget(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, watched := w.dirs[dir]
	prefix := dir + string(filepath.Separator)
	for d := range w.dirs {
		if d == dir || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
		}
	}
	return watched
}

// watchRecursively walks the directory tree and yields all directories.
func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if d.IsDir() {
				if w.ignored(path) {
					return fs.SkipDir
				}
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// ignored reports whether path is, or lies below, a skipped directory.
func (w *Watcher) ignored(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	current := w.root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		if w.ignoreNames[part] || w.ignorePaths[current] {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent, ok := w.convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(fmt.Sprintf("watcher: file system error: %v", err))
		}
	}
}

// convertEvent maps an fsnotify event to a domain.WatchEvent. New directories
// are watched before the event is reported.
func (w *Watcher) convertEvent(event fsnotify.Event) (domain.WatchEvent, bool) {
	path := event.Name
	if w.ignored(path) {
		return domain.WatchEvent{}, false
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			return domain.WatchEvent{}, false
		}
		if info.IsDir() {
			for dir := range w.watchRecursively(path) {
				_ = w.add(dir)
			}
			return domain.WatchEvent{Path: path, Kind: domain.EventCreateDir}, true
		}
		return domain.WatchEvent{Path: path, Kind: domain.EventCreate}, true

	case event.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return domain.WatchEvent{}, false
		}
		return domain.WatchEvent{Path: path, Kind: domain.EventWrite}, true

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.forget(path) {
			return domain.WatchEvent{Path: path, Kind: domain.EventRemoveDir}, true
		}
		return domain.WatchEvent{Path: path, Kind: domain.EventRemove}, true
	}

	return domain.WatchEvent{}, false
}
