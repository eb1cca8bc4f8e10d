// Package manifest reads the vendor manifest.
package manifest

import (
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ManifestLoader = (*Loader)(nil)

// Loader implements ports.ManifestLoader. Manifests are JSON or YAML documents
// with fonts, js and css sequences.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and decodes the manifest at path.
func (l *Loader) Load(path string) (*domain.Manifest, error) {
	// #nosec G304 -- path comes from the project configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestReadFailed, err.Error()), "path", path)
	}

	// JSON documents are valid YAML.
	var m domain.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestParseFailed, err.Error()), "path", path)
	}

	return &m, nil
}
