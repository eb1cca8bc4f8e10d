// Package config resolves the project configuration from layered sources.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "KILN_"

// DotEnvFile is the optional file of environment variables in the project root.
const DotEnvFile = ".env"

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"log-format":  "log_format",
	"parallelism": "parallelism",
	"prod":        "production",
	"port":        "preview_port",
	"host":        "preview_host",
	"verbose":     "verbose",
	"output":      "output_dir",
	"debounce":    "debounce",
}

// listKeys are keys whose environment values are whitespace separated lists.
var listKeys = map[string]bool{
	"script_entries": true,
}

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader with koanf. Sources are layered with
// increasing precedence: defaults, kiln.yaml, NODE_ENV, KILN_* variables and
// changed flags.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load resolves and validates the configuration of the project at root.
func (l *Loader) Load(root string, flags *pflag.FlagSet) (*domain.Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(domain.DefaultConfig(), "koanf"), nil); err != nil {
		return nil, zerr.Wrap(err, "failed to load defaults")
	}

	if err := l.loadDotEnv(root); err != nil {
		return nil, err
	}

	if err := loadFile(k, filepath.Join(root, domain.ConfigFileName)); err != nil {
		return nil, err
	}

	if os.Getenv("NODE_ENV") == "production" {
		if err := k.Set("production", true); err != nil {
			return nil, zerr.Wrap(err, "failed to apply NODE_ENV")
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, zerr.Wrap(err, "failed to load environment")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagValue(flags)), nil); err != nil {
			return nil, zerr.Wrap(err, "failed to load flags")
		}
	}

	var cfg domain.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "root", root)
	}
	cfg.Root = root

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv exports the variables of <root>/.env that are not already set.
func (l *Loader) loadDotEnv(root string) error {
	path := filepath.Join(root, DotEnvFile)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}
	l.logger.Debug("loaded environment from " + path)
	return nil
}

// loadFile merges the optional project config file.
func loadFile(k *koanf.Koanf, path string) error {
	provider := file.Provider(path)
	if _, err := provider.ReadBytes(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}
	if err := k.Load(provider, yaml.Parser()); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}
	return nil
}

// envValue maps KILN_OUTPUT_DIR to output_dir.
func envValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if listKeys[key] {
		return key, strings.Fields(value)
	}
	return key, value
}

func flagValue(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}
