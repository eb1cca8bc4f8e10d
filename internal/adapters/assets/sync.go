// Package assets mirrors the static root into the output root.
package assets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetSync = (*Sync)(nil)

// Sync implements ports.AssetSync. Paths are root-relative and slash separated.
type Sync struct {
	root      string
	staticDir string
	outputDir string
}

// NewSync creates a Sync mirroring staticDir into outputDir, both relative to root.
func NewSync(root, staticDir, outputDir string) *Sync {
	return &Sync{
		root:      root,
		staticDir: cleanSlash(staticDir),
		outputDir: cleanSlash(outputDir),
	}
}

// Translate rewrites the leading static-root segment of p to the output root.
// Paths already under the output root are returned unchanged.
func (s *Sync) Translate(p string) (string, error) {
	p = cleanSlash(p)
	if rest, ok := under(p, s.outputDir); ok {
		return path.Join(s.outputDir, rest), nil
	}
	if rest, ok := under(p, s.staticDir); ok {
		return path.Join(s.outputDir, rest), nil
	}
	return "", zerr.With(zerr.Wrap(domain.ErrPathOutsideRoot, "cannot translate path"), "path", p)
}

// Sync copies the file or directory at p to its mirrored destination.
// A source that vanished before the copy is not an error.
func (s *Sync) Sync(_ context.Context, p string) error {
	dest, err := s.Translate(p)
	if err != nil {
		return err
	}
	src := s.abs(p)
	if src == s.abs(dest) {
		return nil
	}

	if _, err := os.Lstat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err := copy.Copy(src, s.abs(dest), copy.Options{
		OnError: ignoreVanished,
	}); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrAssetSyncFailed, err.Error()), "path", p)
	}
	return nil
}

// Remove deletes the mirrored destination of p. A missing destination is not an error.
func (s *Sync) Remove(_ context.Context, p string) error {
	dest, err := s.Translate(p)
	if err != nil {
		return err
	}
	if dest == s.outputDir {
		return s.clean()
	}
	if err := os.RemoveAll(s.abs(dest)); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrAssetRemoveFailed, err.Error()), "path", dest)
	}
	return nil
}

// SyncAll mirrors the whole static root. A missing static root mirrors nothing.
func (s *Sync) SyncAll(ctx context.Context) error {
	return s.Sync(ctx, s.staticDir)
}

// Clean removes the output root.
func (s *Sync) Clean(_ context.Context) error {
	return s.clean()
}

func (s *Sync) clean() error {
	if err := os.RemoveAll(s.abs(s.outputDir)); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrOutputCleanFailed, err.Error()), "path", s.outputDir)
	}
	return nil
}

func (s *Sync) abs(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(p))
}

// ignoreVanished drops errors for entries deleted while a directory is copied.
func ignoreVanished(_, _ string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// under reports whether p is dir or lies below it, returning the remainder.
func under(p, dir string) (string, bool) {
	if p == dir {
		return "", true
	}
	if dir == "." {
		return p, true
	}
	rest, ok := strings.CutPrefix(p, dir+"/")
	return rest, ok
}

func cleanSlash(p string) string {
	return path.Clean(strings.TrimPrefix(filepath.ToSlash(p), "./"))
}
