package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// ManifestLoader reads the vendor manifest.
//
//go:generate mockgen -source=vendor.go -destination=mocks/mock_vendor.go -package=mocks
type ManifestLoader interface {
	Load(path string) (*domain.Manifest, error)
}

// VendorAggregator builds the vendor bundles from a manifest snapshot.
// An empty category is skipped with a warning and performs no file operations.
type VendorAggregator interface {
	BundleJS(ctx context.Context, manifest *domain.Manifest) error
	BundleCSS(ctx context.Context, manifest *domain.Manifest) error
	CopyFonts(ctx context.Context, manifest *domain.Manifest) error
}
