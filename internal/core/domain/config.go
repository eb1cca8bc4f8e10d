package domain

import (
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// ConfigFileName is the name of the optional project config file.
const ConfigFileName = "kiln.yaml"

// Log formats accepted by Config.LogFormat.
const (
	LogFormatAuto   = "auto"
	LogFormatPretty = "pretty"
	LogFormatJSON   = "json"
)

// DefaultDebounce is the default window for coalescing filesystem events.
const DefaultDebounce = 50 * time.Millisecond

// Include declares which pages embed a shared template, so a change to it
// re-renders only those pages.
type Include struct {
	// Template is the include path relative to the templates directory.
	Template string `koanf:"template"`
	// Pages are the names of the owning pages.
	Pages []string `koanf:"pages"`
}

// CommandSpec declares an external compiler run as its own task.
type CommandSpec struct {
	Name string `koanf:"name"`
	// Sources are root-relative globs. A change to a matching file re-runs the command.
	Sources []string `koanf:"sources"`
	// Run is the argv. {sources}, {dest} and {mode} are substituted.
	Run []string `koanf:"run"`
}

// Config is the resolved project configuration. Directories are relative to Root.
type Config struct {
	Root          string        `koanf:"root"`
	OutputDir     string        `koanf:"output_dir"`
	StaticDir     string        `koanf:"static_dir"`
	ScriptsDir    string        `koanf:"scripts_dir"`
	ScriptEntries []string      `koanf:"script_entries"`
	StylesDir     string        `koanf:"styles_dir"`
	TemplatesDir  string        `koanf:"templates_dir"`
	PagesDir      string        `koanf:"pages_dir"`
	TemplateExt   string        `koanf:"template_ext"`
	ManifestFile  string        `koanf:"manifest"`
	VendorDir     string        `koanf:"vendor_dir"`
	Includes      []Include     `koanf:"includes"`
	Commands      []CommandSpec `koanf:"commands"`
	PreviewHost   string        `koanf:"preview_host"`
	PreviewPort   int           `koanf:"preview_port"`
	Parallelism   int           `koanf:"parallelism"`
	Debounce      time.Duration `koanf:"debounce"`
	SassBinary    string        `koanf:"sass"`
	LogFormat     string        `koanf:"log_format"`
	Production    bool          `koanf:"production"`
	Verbose       bool          `koanf:"verbose"`
}

// DefaultConfig returns the default project layout.
func DefaultConfig() Config {
	return Config{
		Root:          ".",
		OutputDir:     "build",
		StaticDir:     "static",
		ScriptsDir:    "scripts",
		ScriptEntries: []string{"main.js"},
		StylesDir:     "styles",
		TemplatesDir:  "templates",
		PagesDir:      "pages",
		TemplateExt:   ".tmpl",
		ManifestFile:  ManifestFileName,
		VendorDir:     "vendors",
		PreviewHost:   "localhost",
		PreviewPort:   8080,
		Debounce:      DefaultDebounce,
		SassBinary:    "sass",
		LogFormat:     LogFormatAuto,
	}
}

// Path joins a root-relative path onto the project root.
func (c *Config) Path(rel string) string {
	return filepath.Join(c.Root, filepath.FromSlash(rel))
}

// Environment returns the build mode selected by the configuration.
func (c *Config) Environment() Environment {
	return Environment{Production: c.Production}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	invalid := func(key string, value any) error {
		return zerr.With(zerr.With(zerr.Wrap(ErrConfigInvalid, "invalid configuration"), "key", key), "value", value)
	}

	if c.Parallelism < 0 {
		return invalid("parallelism", c.Parallelism)
	}
	if c.PreviewPort < 0 || c.PreviewPort > 65535 {
		return invalid("preview_port", c.PreviewPort)
	}
	if c.Debounce < 0 {
		return invalid("debounce", c.Debounce.String())
	}
	if !slices.Contains([]string{LogFormatAuto, LogFormatPretty, LogFormatJSON}, c.LogFormat) {
		return invalid("log_format", c.LogFormat)
	}
	if !c.outputIsolated() {
		return invalid("output_dir", c.OutputDir)
	}
	for _, cmd := range c.Commands {
		if cmd.Name == "" || len(cmd.Run) == 0 {
			return invalid("commands", cmd.Name)
		}
	}
	return nil
}

// outputIsolated reports whether the output directory lies inside the root and
// neither contains nor sits inside a source directory. Clean removes it whole.
func (c *Config) outputIsolated() bool {
	out := path.Clean(filepath.ToSlash(c.OutputDir))
	if out == "." || out == ".." || strings.HasPrefix(out, "../") || path.IsAbs(out) || filepath.IsAbs(c.OutputDir) {
		return false
	}

	sources := []string{c.StaticDir, c.ScriptsDir, c.StylesDir, c.TemplatesDir, c.VendorDir, c.ManifestFile}
	for _, src := range sources {
		if src == "" {
			continue
		}
		src = path.Clean(filepath.ToSlash(src))
		if src == "." || out == src || strings.HasPrefix(out, src+"/") || strings.HasPrefix(src, out+"/") {
			return false
		}
	}
	return true
}
