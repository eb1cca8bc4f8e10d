package ports

import (
	"context"
	"iter"

	"go.trai.ch/kiln/internal/core/domain"
)

// Watcher defines the interface for watching file system changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching the given root directory recursively.
	// Directories named in ignore (base names or absolute paths) are not watched.
	Start(ctx context.Context, root string, ignore ...string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of file system events.
	Events() iter.Seq[domain.WatchEvent]
}
