// Package compiler provides the source compilers behind ports.Compiler.
package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// cssEngines are the browsers stylesheets are lowered and prefixed for.
var cssEngines = []api.Engine{
	{Name: api.EngineChrome, Version: "90"},
	{Name: api.EngineEdge, Version: "90"},
	{Name: api.EngineFirefox, Version: "88"},
	{Name: api.EngineSafari, Version: "14"},
}

// MinifyJS strips comments from and minifies a JavaScript source.
func MinifyJS(code []byte, sourcefile string) ([]byte, error) {
	return transform(code, sourcefile, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LegalComments:     api.LegalCommentsNone,
	})
}

// MinifyCSS minifies a stylesheet.
func MinifyCSS(code []byte, sourcefile string) ([]byte, error) {
	return transformCSS(code, sourcefile, true)
}

// transformCSS lowers a stylesheet for cssEngines. Production output is
// minified, development output keeps its layout and carries an inline source map.
func transformCSS(code []byte, sourcefile string, production bool) ([]byte, error) {
	sourcemap := api.SourceMapInline
	if production {
		sourcemap = api.SourceMapNone
	}
	return transform(code, sourcefile, api.TransformOptions{
		Loader:           api.LoaderCSS,
		Engines:          cssEngines,
		MinifyWhitespace: production,
		MinifySyntax:     production,
		LegalComments:    api.LegalCommentsNone,
		Sourcemap:        sourcemap,
	})
}

func transform(code []byte, sourcefile string, opts api.TransformOptions) ([]byte, error) {
	opts.Sourcefile = sourcefile
	opts.LogLevel = api.LogLevelSilent

	result := api.Transform(string(code), opts)
	if len(result.Errors) > 0 {
		return nil, messagesError(result.Errors, "source", sourcefile)
	}
	return result.Code, nil
}

// messagesError folds esbuild diagnostics into a compilation error.
func messagesError(msgs []api.Message, key, value string) error {
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: api.ErrorMessage})
	detail := strings.TrimSpace(strings.Join(formatted, ""))
	return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, detail), key, value)
}

// reportWarnings writes esbuild warnings to the task output.
func reportWarnings(w io.Writer, msgs []api.Message) {
	if len(msgs) == 0 {
		return
	}
	for _, m := range api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: api.WarningMessage}) {
		_, _ = fmt.Fprint(w, m)
	}
}

// writeOutput writes an artifact, creating its parent directories.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrOutputWriteFailed, err.Error()), "path", path)
	}
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrOutputWriteFailed, err.Error()), "path", path)
	}
	return nil
}
