package ports

import "context"

// AssetSync mirrors the static root into the output root.
//
//go:generate mockgen -source=assets.go -destination=mocks/mock_assets.go -package=mocks
type AssetSync interface {
	// Translate maps a path under the static root to its mirrored path.
	// Paths already under the output root are returned unchanged.
	Translate(path string) (string, error)
	// Sync copies a file or directory to its mirrored destination.
	Sync(ctx context.Context, path string) error
	// Remove deletes the mirrored destination of path.
	Remove(ctx context.Context, path string) error
	// SyncAll mirrors the whole static root.
	SyncAll(ctx context.Context) error
	// Clean removes the output root.
	Clean(ctx context.Context) error
}
