package app_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/manifest"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "static/robots.txt", "User-agent: *\n")
	writeFile(t, root, "scripts/main.js", "console.log('kiln');\n")
	writeFile(t, root, "styles/site.css", "body { color: red; }\n")
	writeFile(t, root, "templates/_layout.tmpl", `{{ define "layout" }}<main>{{ . }}</main>{{ end }}`)
	writeFile(t, root, "templates/pages/index.tmpl", `{{ template "layout" .Name }}`)
	writeFile(t, root, "vendors/a.js", "var a = 1;\n")
	writeFile(t, root, "vendors/a.css", "html { margin: 0; }\n")
	writeFile(t, root, "vendors/icons.woff", "font")
	writeFile(t, root, "vendors.json", `{"js": ["vendors/a.js"], "css": ["vendors/a.css"], "fonts": ["vendors/icons.woff"]}`)
	return root
}

func projectConfig(root, format string) *domain.Config {
	cfg := domain.DefaultConfig()
	cfg.Root = root
	cfg.LogFormat = format
	cfg.PreviewHost = "127.0.0.1"
	cfg.PreviewPort = 0
	cfg.Parallelism = 2
	return &cfg
}

func newApp(t *testing.T, cfg *domain.Config, loadErr error) (*app.App, *mocks.MockExecutor) {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockExecutor := mocks.NewMockExecutor(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	mockLoader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(cfg, loadErr)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)

	a := app.New(mockLoader, manifest.NewLoader(), mockExecutor, w, mockLogger).
		WithOutput(&bytes.Buffer{}, &bytes.Buffer{})
	return a, mockExecutor
}

func TestApp_Build(t *testing.T) {
	for _, format := range []string{domain.LogFormatPretty, domain.LogFormatJSON} {
		t.Run(format, func(t *testing.T) {
			root := setupProject(t)
			a, _ := newApp(t, projectConfig(root, format), nil)

			err := a.Build(context.Background(), app.Options{Root: root})
			require.NoError(t, err)

			build := filepath.Join(root, "build")
			assert.FileExists(t, filepath.Join(build, "robots.txt"))
			assert.FileExists(t, filepath.Join(build, "js", "main.min.js"))
			assert.FileExists(t, filepath.Join(build, "css", "site.min.css"))
			assert.FileExists(t, filepath.Join(build, "js", "core.min.js"))
			assert.FileExists(t, filepath.Join(build, "css", "core.min.css"))
			assert.FileExists(t, filepath.Join(build, "fonts", "icons.woff"))

			index, err := os.ReadFile(filepath.Join(build, "index.html"))
			require.NoError(t, err)
			assert.Equal(t, "<main>index</main>", string(index))
		})
	}
}

func TestApp_Build_GroupedPages(t *testing.T) {
	root := setupProject(t)
	writeFile(t, root, "templates/pages/about/about.tmpl", `<main>{{ template "body" . }}</main>`)
	writeFile(t, root, "templates/pages/about/body.tmpl", `{{ define "body" }}About {{ .Name }}{{ end }}`)
	writeFile(t, root, "templates/pages/blog/blog.tmpl", `{{ template "body" . }}`)
	writeFile(t, root, "templates/pages/blog/body.tmpl", `{{ define "body" }}Blog {{ .Mode }}{{ end }}`)
	a, _ := newApp(t, projectConfig(root, domain.LogFormatJSON), nil)

	require.NoError(t, a.Build(context.Background(), app.Options{Root: root}))

	about, err := os.ReadFile(filepath.Join(root, "build", "about.html"))
	require.NoError(t, err)
	assert.Equal(t, "<main>About about</main>", string(about))

	blog, err := os.ReadFile(filepath.Join(root, "build", "blog.html"))
	require.NoError(t, err)
	assert.Equal(t, "Blog development", string(blog))
}

func TestApp_Build_CleansStaleOutput(t *testing.T) {
	root := setupProject(t)
	writeFile(t, root, "build/stale.txt", "old")
	a, _ := newApp(t, projectConfig(root, domain.LogFormatJSON), nil)

	require.NoError(t, a.Build(context.Background(), app.Options{Root: root}))
	assert.NoFileExists(t, filepath.Join(root, "build", "stale.txt"))
}

func TestApp_Build_Command(t *testing.T) {
	root := setupProject(t)
	cfg := projectConfig(root, domain.LogFormatJSON)
	cfg.Commands = []domain.CommandSpec{{Name: "icons", Run: []string{"svgo", "{dest}/icons"}}}
	a, mockExecutor := newApp(t, cfg, nil)

	mockExecutor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd *domain.Command, _, _ io.Writer) error {
			assert.Equal(t, "svgo", cmd.Name)
			return nil
		})

	require.NoError(t, a.Build(context.Background(), app.Options{Root: root}))
}

func TestApp_Build_CompilationFailure(t *testing.T) {
	root := setupProject(t)
	writeFile(t, root, "scripts/main.js", "console.log(;\n")
	a, _ := newApp(t, projectConfig(root, domain.LogFormatJSON), nil)

	err := a.Build(context.Background(), app.Options{Root: root})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrCompilationFailed)

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)

	// Unrelated targets still completed.
	assert.FileExists(t, filepath.Join(root, "build", "css", "site.min.css"))
}

func TestApp_Build_ConfigurationError(t *testing.T) {
	a, _ := newApp(t, nil, domain.ErrConfigParseFailed)

	err := a.Build(context.Background(), app.Options{Root: t.TempDir()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigParseFailed)
}

func TestApp_Dev_ConfigurationError(t *testing.T) {
	a, _ := newApp(t, nil, domain.ErrConfigReadFailed)

	err := a.Dev(context.Background(), app.Options{Root: t.TempDir()})
	assert.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestApp_Dev(t *testing.T) {
	root := setupProject(t)
	a, _ := newApp(t, projectConfig(root, domain.LogFormatJSON), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.Dev(ctx, app.Options{Root: root})
	}()

	index := filepath.Join(root, "build", "index.html")
	require.Eventually(t, func() bool {
		_, err := os.Stat(index)
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)

	// Rewritten on every poll: the watcher starts once the initial build finished.
	synced := filepath.Join(root, "build", "added.txt")
	require.Eventually(t, func() bool {
		writeFile(t, root, "static/added.txt", "new")
		_, err := os.Stat(synced)
		return err == nil
	}, 10*time.Second, 50*time.Millisecond)

	require.Eventually(t, func() bool {
		writeFile(t, root, "templates/pages/index.tmpl", `{{ template "layout" "changed" }}`)
		data, err := os.ReadFile(index)
		return err == nil && string(data) == "<main>changed</main>"
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("dev did not stop after cancellation")
	}
}

func TestApp_Dev_InitialFailureKeepsWatching(t *testing.T) {
	root := setupProject(t)
	writeFile(t, root, "scripts/main.js", "console.log(;\n")
	a, _ := newApp(t, projectConfig(root, domain.LogFormatJSON), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.Dev(ctx, app.Options{Root: root})
	}()

	styles := filepath.Join(root, "build", "css", "site.min.css")
	require.Eventually(t, func() bool {
		_, err := os.Stat(styles)
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)
	assert.NoFileExists(t, filepath.Join(root, "build", "index.html"))

	script := filepath.Join(root, "build", "js", "main.min.js")
	require.Eventually(t, func() bool {
		writeFile(t, root, "scripts/main.js", "console.log('fixed');\n")
		_, err := os.Stat(script)
		return err == nil
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestApp_Dev_MissingManifestIsFatal(t *testing.T) {
	root := setupProject(t)
	require.NoError(t, os.Remove(filepath.Join(root, "vendors.json")))
	a, _ := newApp(t, projectConfig(root, domain.LogFormatJSON), nil)

	err := a.Dev(context.Background(), app.Options{Root: root})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrManifestReadFailed)
}
