package compiler

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*ScriptBundler)(nil)

// ScriptBundler bundles the script entry points with esbuild into
// <dest>/js/<name>.min.js.
type ScriptBundler struct {
	root    string
	dir     string
	entries []string
}

// NewScriptBundler creates a bundler for entries, which are relative to dir.
// dir is relative to root.
func NewScriptBundler(root, dir string, entries []string) *ScriptBundler {
	return &ScriptBundler{root: root, dir: dir, entries: entries}
}

// Compile bundles the entry points matched by selector. Production builds are
// minified without source maps, development builds get a linked source map.
func (b *ScriptBundler) Compile(ctx context.Context, selector domain.Selector, destRoot string, env domain.Environment) error {
	root, err := filepath.Abs(b.root)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "root", b.root)
	}
	outdir, err := filepath.Abs(filepath.Join(destRoot, "js"))
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "dest", destRoot)
	}

	var entryPoints []string
	for _, entry := range b.entries {
		if selector.Matches(filepath.ToSlash(entry)) {
			entryPoints = append(entryPoints, filepath.Join(root, b.dir, filepath.FromSlash(entry)))
		}
	}
	if len(entryPoints) == 0 {
		return nil
	}

	sourcemap := api.SourceMapLinked
	if env.Production {
		sourcemap = api.SourceMapNone
	}

	result := api.Build(api.BuildOptions{
		AbsWorkingDir:     root,
		EntryPoints:       entryPoints,
		EntryNames:        "[dir]/[name].min",
		Outbase:           filepath.Join(root, b.dir),
		Outdir:            outdir,
		Bundle:            true,
		Write:             true,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  env.Production,
		MinifyIdentifiers: env.Production,
		MinifySyntax:      env.Production,
		LegalComments:     api.LegalCommentsNone,
		Target:            api.ES2020,
		Define: map[string]string{
			"process.env.NODE_ENV": strconv.Quote(env.Mode()),
		},
		LogLevel: api.LogLevelSilent,
	})

	reportWarnings(ports.TaskOutput(ctx), result.Warnings)
	if len(result.Errors) > 0 {
		return messagesError(result.Errors, "scripts", b.dir)
	}
	return nil
}
