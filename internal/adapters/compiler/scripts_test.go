package compiler_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/compiler"
	"go.trai.ch/kiln/internal/core/domain"
)

func setupScripts(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "scripts/libs/greet.js", "export function greet(name) { return 'hello ' + name; }\n")
	writeFile(t, root, "scripts/main.js", "import { greet } from './libs/greet.js';\n// banner\nconsole.log(greet('kiln'), process.env.NODE_ENV);\n")
	return root
}

func TestScriptBundler_Production(t *testing.T) {
	root := setupScripts(t)
	dest := filepath.Join(root, "build")
	b := compiler.NewScriptBundler(root, "scripts", []string{"main.js"})

	err := b.Compile(context.Background(), domain.SelectAll(), dest, domain.Environment{Production: true})
	require.NoError(t, err)

	out := readFile(t, root, "build/js/main.min.js")
	assert.Contains(t, out, "hello ")
	assert.Contains(t, out, `"production"`)
	assert.NotContains(t, out, "banner")
	assert.NotContains(t, out, "import")
	assert.NotContains(t, out, "sourceMappingURL")
	assert.NoFileExists(t, filepath.Join(dest, "js", "main.min.js.map"))
}

func TestScriptBundler_DevelopmentSourceMap(t *testing.T) {
	root := setupScripts(t)
	dest := filepath.Join(root, "build")
	b := compiler.NewScriptBundler(root, "scripts", []string{"main.js"})

	require.NoError(t, b.Compile(context.Background(), domain.SelectAll(), dest, domain.Environment{}))

	out := readFile(t, root, "build/js/main.min.js")
	assert.Contains(t, out, `"development"`)
	assert.Contains(t, out, "sourceMappingURL=main.min.js.map")
	assert.FileExists(t, filepath.Join(dest, "js", "main.min.js.map"))
}

func TestScriptBundler_SelectorFiltersEntries(t *testing.T) {
	root := setupScripts(t)
	writeFile(t, root, "scripts/admin.js", "console.log('admin');\n")
	dest := filepath.Join(root, "build")
	b := compiler.NewScriptBundler(root, "scripts", []string{"main.js", "admin.js"})

	require.NoError(t, b.Compile(context.Background(), domain.Select("admin.js"), dest, domain.Environment{}))

	assert.FileExists(t, filepath.Join(dest, "js", "admin.min.js"))
	assert.NoFileExists(t, filepath.Join(dest, "js", "main.min.js"))
}

func TestScriptBundler_SyntaxError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "scripts/main.js", "function broken( {\n")
	b := compiler.NewScriptBundler(root, "scripts", []string{"main.js"})

	err := b.Compile(context.Background(), domain.SelectAll(), filepath.Join(root, "build"), domain.Environment{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompilationFailed)
	assert.Contains(t, err.Error(), "main.js")
}

func TestScriptBundler_MissingEntry(t *testing.T) {
	root := t.TempDir()
	b := compiler.NewScriptBundler(root, "scripts", []string{"main.js"})

	err := b.Compile(context.Background(), domain.SelectAll(), filepath.Join(root, "build"), domain.Environment{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompilationFailed)
}
