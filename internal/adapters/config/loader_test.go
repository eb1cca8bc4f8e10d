package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	t.Setenv("NODE_ENV", "")
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	return config.NewLoader(logger)
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("kiln", pflag.ContinueOnError)
	flags.String("root", ".", "")
	flags.String("log-format", domain.LogFormatAuto, "")
	flags.Int("parallelism", 0, "")
	flags.Bool("prod", false, "")
	flags.Int("port", 8080, "")
	flags.String("host", "localhost", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.ConfigFileName), []byte(content), 0o600))
}

func TestLoader_Defaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := newLoader(t).Load(root, nil)
	require.NoError(t, err)

	// The struct defaults decode to empty, not nil, lists.
	assert.Empty(t, cfg.Includes)
	assert.Empty(t, cfg.Commands)
	cfg.Includes, cfg.Commands = nil, nil

	want := domain.DefaultConfig()
	want.Root = root
	assert.Equal(t, &want, cfg)
}

func TestLoader_File(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
output_dir: dist
script_entries: [main.js, admin.js]
debounce: 200ms
includes:
  - template: includes/cart.tmpl
    pages: [shop, checkout]
commands:
  - name: icons
    sources: ["icons/**/*.svg"]
    run: [svg-sprite, "{sources}"]
`)

	cfg, err := newLoader(t).Load(root, nil)
	require.NoError(t, err)

	assert.Equal(t, "dist", cfg.OutputDir)
	assert.Equal(t, []string{"main.js", "admin.js"}, cfg.ScriptEntries)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce)
	assert.Equal(t, []domain.Include{{Template: "includes/cart.tmpl", Pages: []string{"shop", "checkout"}}}, cfg.Includes)
	require.Len(t, cfg.Commands, 1)
	assert.Equal(t, "icons", cfg.Commands[0].Name)
	assert.Equal(t, []string{"svg-sprite", "{sources}"}, cfg.Commands[0].Run)
	assert.Equal(t, "static", cfg.StaticDir)
}

func TestLoader_Precedence(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "preview_port: 3000\nparallelism: 2\npreview_host: 0.0.0.0\n")
	t.Setenv("KILN_PREVIEW_PORT", "4000")
	t.Setenv("KILN_PARALLELISM", "3")

	cfg, err := newLoader(t).Load(root, newFlags(t, "--port", "5000"))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.PreviewPort, "flags beat environment")
	assert.Equal(t, 3, cfg.Parallelism, "environment beats file")
	assert.Equal(t, "0.0.0.0", cfg.PreviewHost, "unchanged flags do not override the file")
}

func TestLoader_UnchangedFlagsKeepDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := newLoader(t).Load(root, newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.PreviewPort)
	assert.False(t, cfg.Production)
}

func TestLoader_ProductionSources(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want bool
	}{
		{name: "default", want: false},
		{name: "NODE_ENV", env: map[string]string{"NODE_ENV": "production"}, want: true},
		{name: "NODE_ENV development", env: map[string]string{"NODE_ENV": "development"}, want: false},
		{name: "KILN_PRODUCTION", env: map[string]string{"KILN_PRODUCTION": "true"}, want: true},
		{name: "flag", args: []string{"--prod"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newLoader(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := loader.Load(t.TempDir(), newFlags(t, tt.args...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Production)
			assert.Equal(t, tt.want, cfg.Environment().Production)
		})
	}
}

func TestLoader_EnvironmentLists(t *testing.T) {
	t.Setenv("KILN_SCRIPT_ENTRIES", "main.js  vendor.js")
	t.Setenv("KILN_OUTPUT_DIR", "public")

	cfg, err := newLoader(t).Load(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"main.js", "vendor.js"}, cfg.ScriptEntries)
	assert.Equal(t, "public", cfg.OutputDir)
}

func TestLoader_DotEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.DotEnvFile), []byte("KILN_STATIC_DIR=assets\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("KILN_STATIC_DIR") })

	cfg, err := newLoader(t).Load(root, nil)
	require.NoError(t, err)

	assert.Equal(t, "assets", cfg.StaticDir)
}

func TestLoader_MalformedFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "output_dir: [unclosed\n")

	_, err := newLoader(t).Load(root, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigParseFailed)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestLoader_UnreadableFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, domain.ConfigFileName), 0o750))

	_, err := newLoader(t).Load(root, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestLoader_InvalidValue(t *testing.T) {
	_, err := newLoader(t).Load(t.TempDir(), newFlags(t, "--log-format", "xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}
