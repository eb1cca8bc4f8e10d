package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Placeholders substituted in command arguments.
const (
	PlaceholderSources = "{sources}"
	PlaceholderDest    = "{dest}"
	PlaceholderMode    = "{mode}"
)

var _ ports.Compiler = (*CommandCompiler)(nil)

// CommandCompiler runs an external tool declared in the project configuration.
type CommandCompiler struct {
	spec     domain.CommandSpec
	root     string
	executor ports.Executor
}

// NewCommandCompiler creates a CommandCompiler for spec, run from root.
func NewCommandCompiler(spec domain.CommandSpec, root string, executor ports.Executor) *CommandCompiler {
	return &CommandCompiler{spec: spec, root: root, executor: executor}
}

// Compile runs the command once with the matched sources.
//
// An argument equal to {sources} expands to the matched root-relative paths.
// {dest} and {mode} are replaced anywhere in an argument. A command that
// declares sources is skipped when none match.
func (c *CommandCompiler) Compile(ctx context.Context, selector domain.Selector, destRoot string, env domain.Environment) error {
	sources, err := c.sources(selector)
	if err != nil {
		return err
	}
	if len(c.spec.Sources) > 0 && len(sources) == 0 {
		return nil
	}

	dest, err := filepath.Abs(destRoot)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "command", c.spec.Name)
	}
	replacer := strings.NewReplacer(PlaceholderDest, dest, PlaceholderMode, env.Mode())

	var argv []string
	for _, arg := range c.spec.Run {
		if arg == PlaceholderSources {
			argv = append(argv, sources...)
			continue
		}
		argv = append(argv, replacer.Replace(arg))
	}
	if len(argv) == 0 {
		return nil
	}

	cmd := &domain.Command{
		Name: argv[0],
		Args: argv[1:],
		Dir:  c.root,
		Env:  map[string]string{"NODE_ENV": env.Mode()},
	}
	out := ports.TaskOutput(ctx)
	if err := c.executor.Execute(ctx, cmd, out, out); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "command", c.spec.Name)
	}
	return nil
}

func (c *CommandCompiler) sources(selector domain.Selector) ([]string, error) {
	fsys := os.DirFS(c.root)
	var sources []string
	for _, pattern := range c.spec.Sources {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrCompilationFailed, err.Error()), "command", c.spec.Name)
		}
		for _, m := range matches {
			if selector.Matches(m) && !slices.Contains(sources, m) {
				sources = append(sources, m)
			}
		}
	}
	slices.Sort(sources)
	return sources, nil
}
