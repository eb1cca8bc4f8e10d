package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "build", cfg.OutputDir)
	assert.Equal(t, []string{"main.js"}, cfg.ScriptEntries)
	assert.Equal(t, domain.ManifestFileName, cfg.ManifestFile)
	assert.False(t, cfg.Environment().Production)
	assert.Equal(t, "development", cfg.Environment().Mode())
}

func TestConfig_Path(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Root = "/project"

	assert.Equal(t, filepath.Join("/project", "templates", "pages"), cfg.Path("templates/pages"))
}

func TestConfig_Validate_OutputLayouts(t *testing.T) {
	for _, out := range []string{"build", "public/site", "dist/", "./out", "staticfiles"} {
		t.Run(out, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			cfg.OutputDir = out
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Config)
	}{
		{name: "negative parallelism", mutate: func(c *domain.Config) { c.Parallelism = -1 }},
		{name: "port out of range", mutate: func(c *domain.Config) { c.PreviewPort = 70000 }},
		{name: "unknown log format", mutate: func(c *domain.Config) { c.LogFormat = "xml" }},
		{name: "output is root", mutate: func(c *domain.Config) { c.OutputDir = "." }},
		{name: "output escapes root", mutate: func(c *domain.Config) { c.OutputDir = ".." }},
		{name: "output is static", mutate: func(c *domain.Config) { c.OutputDir = "static" }},
		{name: "output is sibling of root", mutate: func(c *domain.Config) { c.OutputDir = "../sibling" }},
		{name: "output is absolute", mutate: func(c *domain.Config) { c.OutputDir = "/tmp/out" }},
		{name: "output is templates", mutate: func(c *domain.Config) { c.OutputDir = "templates" }},
		{name: "output inside scripts", mutate: func(c *domain.Config) { c.OutputDir = "scripts/dist" }},
		{name: "output is manifest", mutate: func(c *domain.Config) { c.OutputDir = "vendors.json" }},
		{name: "output contains static", mutate: func(c *domain.Config) {
			c.StaticDir = "site/static"
			c.OutputDir = "site"
		}},
		{name: "command without run", mutate: func(c *domain.Config) {
			c.Commands = []domain.CommandSpec{{Name: "icons"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrConfigInvalid)
		})
	}
}
