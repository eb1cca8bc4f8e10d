package compiler

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*StyleCompiler)(nil)

// StyleCompiler compiles every stylesheet under its directory whose name does
// not start with "_" into <dest>/css/<name>.min.css. SCSS and Sass sources go
// through the sass binary first.
type StyleCompiler struct {
	root     string
	dir      string
	sass     string
	executor ports.Executor
}

// NewStyleCompiler creates a StyleCompiler for dir, relative to root.
func NewStyleCompiler(root, dir, sass string, executor ports.Executor) *StyleCompiler {
	return &StyleCompiler{root: root, dir: dir, sass: sass, executor: executor}
}

// Compile compiles the stylesheets matched by selector. Every source is
// attempted and failures are joined.
func (c *StyleCompiler) Compile(ctx context.Context, selector domain.Selector, destRoot string, env domain.Environment) error {
	sources, err := c.sources(selector)
	if err != nil {
		return err
	}

	var errs error
	for _, rel := range sources {
		if err := c.compileOne(ctx, rel, destRoot, env); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func (c *StyleCompiler) compileOne(ctx context.Context, rel, destRoot string, env domain.Environment) error {
	src := filepath.Join(c.root, c.dir, filepath.FromSlash(rel))

	var css []byte
	if path.Ext(rel) == ".css" {
		data, err := os.ReadFile(src) // #nosec G304 -- sources are discovered under the styles directory
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "source", rel)
		}
		css = data
	} else {
		var stdout bytes.Buffer
		cmd := &domain.Command{
			Name: c.sass,
			Args: append(sassMapArgs(env), "--load-path", filepath.Join(c.root, c.dir), src),
		}
		if err := c.executor.Execute(ctx, cmd, &stdout, ports.TaskOutput(ctx)); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "source", rel)
		}
		css = stdout.Bytes()
	}

	out, err := transformCSS(css, rel, env.Production)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(rel, path.Ext(rel)) + ".min.css"
	return writeOutput(filepath.Join(destRoot, "css", filepath.FromSlash(name)), out)
}

// sassMapArgs embeds the sass source map in development so the inline map of
// the output still points at the .scss sources.
func sassMapArgs(env domain.Environment) []string {
	if env.Production {
		return []string{"--no-source-map"}
	}
	return []string{"--embed-source-map", "--embed-sources"}
}

// sources returns the compilable stylesheets relative to the styles directory, sorted.
func (c *StyleCompiler) sources(selector domain.Selector) ([]string, error) {
	dir := filepath.Join(c.root, c.dir)
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.{scss,sass,css}", doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "dir", c.dir)
	}

	var sources []string
	for _, m := range matches {
		if strings.HasPrefix(path.Base(m), "_") || !selector.Matches(m) {
			continue
		}
		sources = append(sources, m)
	}
	slices.Sort(sources)
	return sources, nil
}
