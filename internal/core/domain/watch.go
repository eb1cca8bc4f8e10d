package domain

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// EventKind is the kind of filesystem change carried by a WatchEvent.
type EventKind uint8

const (
	// EventCreate indicates a file was created.
	EventCreate EventKind = iota + 1
	// EventWrite indicates a file was modified.
	EventWrite
	// EventRemove indicates a file was removed or renamed away.
	EventRemove
	// EventCreateDir indicates a directory was created.
	EventCreateDir
	// EventRemoveDir indicates a directory was removed or renamed away.
	EventRemoveDir
)

var eventKindNames = map[EventKind]string{
	EventCreate:    "create",
	EventWrite:     "write",
	EventRemove:    "remove",
	EventCreateDir: "create-dir",
	EventRemoveDir: "remove-dir",
}

// String returns the name of the event kind.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsDir reports whether the event concerns a directory.
func (k EventKind) IsDir() bool {
	return k == EventCreateDir || k == EventRemoveDir
}

// FileEvents is the event filter of rules that only react to file changes.
var FileEvents = []EventKind{EventCreate, EventWrite, EventRemove}

// WatchEvent is a single filesystem change reported by the watcher.
type WatchEvent struct {
	// Path is the absolute path of the file or directory that changed.
	Path string
	// Kind is the type of change that occurred.
	Kind EventKind
}

// RuleHandler maps a root-relative, slash separated path to the rebuild unit responsible for it.
type RuleHandler func(path string, kind EventKind) (Rebuild, error)

// WatchRule binds path patterns and an event-kind filter to a handler.
type WatchRule struct {
	Name string
	// Patterns are doublestar patterns relative to the project root.
	Patterns []string
	// Events restricts the rule to the listed kinds. Empty accepts every kind.
	Events  []EventKind
	Handler RuleHandler
	// Expand turns the globs of a Globs rebuild into an action.
	Expand func(globs []string) Action
}

// Matches reports whether the rule accepts a change of the given kind at path.
// path must be root-relative and slash separated.
func (r *WatchRule) Matches(path string, kind EventKind) bool {
	if len(r.Events) > 0 && !slices.Contains(r.Events, kind) {
		return false
	}
	path = strings.TrimPrefix(path, "./")
	for _, pattern := range r.Patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
