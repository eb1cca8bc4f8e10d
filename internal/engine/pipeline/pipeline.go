// Package pipeline declares the tasks, execution groups and watch rules of a kiln project.
package pipeline

import (
	"context"
	"path"
	"path/filepath"
	"sync/atomic"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Names of the declared tasks.
const (
	TaskClean        = "clean"
	TaskCopyAssets   = "copy-assets"
	TaskLoadManifest = "load-manifest"
	TaskCoreJS       = "core-js"
	TaskCoreCSS      = "core-css"
	TaskCopyFonts    = "copy-fonts"
	TaskMainJS       = "main-js"
	TaskMainCSS      = "main-css"
	TaskRender       = "render"
)

// Deps are the adapters the pipeline tasks delegate to.
type Deps struct {
	Assets    ports.AssetSync
	Manifests ports.ManifestLoader
	Vendor    ports.VendorAggregator
	Scripts   ports.Compiler
	Styles    ports.Compiler
	Pages     ports.Compiler
	// Commands holds one compiler per configured command, keyed by command name.
	Commands map[string]ports.Compiler
}

// Pipeline is the task graph of one configuration, declared once at startup
// and re-used for every execution.
type Pipeline struct {
	cfg      *domain.Config
	env      domain.Environment
	deps     Deps
	graph    *domain.Graph
	manifest atomic.Pointer[domain.Manifest]
}

// New declares the tasks of cfg and validates the resulting graph.
func New(cfg *domain.Config, env domain.Environment, deps Deps) (*Pipeline, error) {
	p := &Pipeline{
		cfg:   cfg,
		env:   env,
		deps:  deps,
		graph: domain.NewGraph(),
	}

	tasks := []*domain.Task{
		domain.NewTask(TaskClean, func(ctx context.Context) error {
			return p.deps.Assets.Clean(ctx)
		}),
		domain.NewTask(TaskCopyAssets, func(ctx context.Context) error {
			return p.deps.Assets.SyncAll(ctx)
		}),
		domain.NewTask(TaskLoadManifest, p.loadManifest),
		domain.NewTask(TaskCoreJS, p.vendorAction(p.deps.Vendor.BundleJS), TaskLoadManifest),
		domain.NewTask(TaskCoreCSS, p.vendorAction(p.deps.Vendor.BundleCSS), TaskLoadManifest),
		domain.NewTask(TaskCopyFonts, p.vendorAction(p.deps.Vendor.CopyFonts), TaskLoadManifest),
		domain.NewTask(TaskMainJS, p.compileAction(p.deps.Scripts)),
		domain.NewTask(TaskMainCSS, p.compileAction(p.deps.Styles)),
		domain.NewTask(TaskRender, p.compileAction(p.deps.Pages)),
	}

	for _, spec := range cfg.Commands {
		compiler, ok := deps.Commands[spec.Name]
		if !ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrMissingDependency, "no compiler for command"), "command", spec.Name)
		}
		tasks = append(tasks, domain.NewTask(spec.Name, p.compileAction(compiler)))
	}

	for _, t := range tasks {
		if err := p.graph.AddTask(t); err != nil {
			return nil, err
		}
	}

	if err := p.graph.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Graph returns the declared task graph.
func (p *Pipeline) Graph() *domain.Graph {
	return p.graph
}

// Initial returns the group run by `kiln build` and at the start of `kiln dev`.
func (p *Pipeline) Initial() domain.Group {
	compile := []domain.Group{domain.Run(TaskMainJS), domain.Run(TaskMainCSS)}
	for _, spec := range p.cfg.Commands {
		compile = append(compile, domain.Run(spec.Name))
	}

	return domain.Sequence(
		domain.Run(TaskClean),
		domain.Run(TaskCopyAssets),
		domain.Run(TaskLoadManifest),
		domain.Concurrent(domain.Run(TaskCoreJS), domain.Run(TaskCoreCSS), domain.Run(TaskCopyFonts)),
		domain.Concurrent(compile...),
		domain.Run(TaskRender),
	)
}

// Vendor returns the group that rebuilds the vendor bundles from a fresh manifest.
func (p *Pipeline) Vendor() domain.Group {
	return domain.Sequence(
		domain.Run(TaskLoadManifest),
		domain.Concurrent(domain.Run(TaskCoreJS), domain.Run(TaskCoreCSS), domain.Run(TaskCopyFonts)),
	)
}

// Manifest returns the snapshot taken by the last load-manifest run, or nil.
func (p *Pipeline) Manifest() *domain.Manifest {
	return p.manifest.Load()
}

// Rules returns the watch rules in match order. The first matching rule wins.
func (p *Pipeline) Rules() []domain.WatchRule {
	cfg := p.cfg
	rules := []domain.WatchRule{
		{
			Name:     "vendor",
			Patterns: []string{slash(cfg.ManifestFile), path.Join(slash(cfg.VendorDir), "**")},
			Handler:  p.target("vendor", p.Vendor()),
		},
		{
			Name:     "scripts",
			Patterns: []string{path.Join(slash(cfg.ScriptsDir), "**")},
			Events:   domain.FileEvents,
			Handler:  p.target(TaskMainJS, domain.Run(TaskMainJS)),
		},
		{
			Name:     "styles",
			Patterns: []string{path.Join(slash(cfg.StylesDir), "**")},
			Events:   domain.FileEvents,
			Handler:  p.target(TaskMainCSS, domain.Run(TaskMainCSS)),
		},
	}

	rules = append(rules, TemplateRules(cfg, p.renderSelected)...)

	static := path.Join(slash(cfg.StaticDir), "**")
	rules = append(rules,
		domain.WatchRule{
			Name:     "static-sync",
			Patterns: []string{static},
			Events:   []domain.EventKind{domain.EventCreate, domain.EventWrite, domain.EventCreateDir},
			Handler: func(rel string, _ domain.EventKind) (domain.Rebuild, error) {
				return domain.RebuildAction("sync "+rel, func(ctx context.Context) error {
					return p.deps.Assets.Sync(ctx, rel)
				}), nil
			},
		},
		domain.WatchRule{
			Name:     "static-remove",
			Patterns: []string{static},
			Events:   []domain.EventKind{domain.EventRemove, domain.EventRemoveDir},
			Handler: func(rel string, _ domain.EventKind) (domain.Rebuild, error) {
				return domain.RebuildAction("remove "+rel, func(ctx context.Context) error {
					return p.deps.Assets.Remove(ctx, rel)
				}), nil
			},
		},
	)

	for _, spec := range cfg.Commands {
		if len(spec.Sources) == 0 {
			continue
		}
		rules = append(rules, domain.WatchRule{
			Name:     spec.Name,
			Patterns: spec.Sources,
			Events:   domain.FileEvents,
			Handler:  p.target(spec.Name, domain.Run(spec.Name)),
		})
	}

	return rules
}

func (p *Pipeline) target(label string, group domain.Group) domain.RuleHandler {
	return func(string, domain.EventKind) (domain.Rebuild, error) {
		return domain.RebuildTarget(label, group), nil
	}
}

func (p *Pipeline) dest() string {
	return p.cfg.Path(p.cfg.OutputDir)
}

func (p *Pipeline) compileAction(c ports.Compiler) domain.Action {
	return func(ctx context.Context) error {
		return c.Compile(ctx, domain.SelectAll(), p.dest(), p.env)
	}
}

// renderSelected renders only the pages matched by globs.
func (p *Pipeline) renderSelected(globs []string) domain.Action {
	return func(ctx context.Context) error {
		return p.deps.Pages.Compile(ctx, domain.Select(globs...), p.dest(), p.env)
	}
}

func (p *Pipeline) loadManifest(context.Context) error {
	m, err := p.deps.Manifests.Load(p.cfg.Path(p.cfg.ManifestFile))
	if err != nil {
		return err
	}
	p.manifest.Store(m)
	return nil
}

// vendorAction binds a vendor step to the manifest snapshot. A step run
// without a preceding load-manifest loads the manifest itself.
func (p *Pipeline) vendorAction(step func(context.Context, *domain.Manifest) error) domain.Action {
	return func(ctx context.Context) error {
		m := p.manifest.Load()
		if m == nil {
			if err := p.loadManifest(ctx); err != nil {
				return err
			}
			m = p.manifest.Load()
		}
		return step(ctx, m)
	}
}

func slash(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
