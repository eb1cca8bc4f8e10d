// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/adapters/assets"
	"go.trai.ch/kiln/internal/adapters/compiler"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/adapters/preview"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/adapters/vendor"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/dispatcher"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// tracerName names the tracer of task spans.
const tracerName = "kiln"

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	manifests    ports.ManifestLoader
	executor     ports.Executor
	watcher      ports.Watcher
	logger       ports.Logger
	stdout       io.Writer
	stderr       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	manifests ports.ManifestLoader,
	executor ports.Executor,
	watch ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		manifests:    manifests,
		executor:     executor,
		watcher:      watch,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects task output and progress. Used for testing.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// Options select the project and carry the CLI flags layered over its configuration.
type Options struct {
	Root  string
	Flags *pflag.FlagSet
}

// Build runs the initial group once: clean, copy assets, vendor bundles,
// compilers and page rendering.
func (a *App) Build(ctx context.Context, opts Options) error {
	s, err := a.prepare(opts)
	if err != nil {
		return err
	}
	defer s.shutdown()

	a.logger.Info(fmt.Sprintf("building %s (%s)", s.cfg.Root, s.env.Mode()))

	return s.run(ctx, func(ctx context.Context) error {
		return s.scheduler.Run(ctx, s.pipeline.Graph(), s.pipeline.Initial())
	})
}

// Dev runs the initial group, then serves the output root and rebuilds the
// targets affected by every change until ctx is done. Compilation failures
// are logged and reported to the preview; configuration errors are fatal.
func (a *App) Dev(ctx context.Context, opts Options) error {
	s, err := a.prepare(opts)
	if err != nil {
		return err
	}
	defer s.shutdown()

	root, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve project root"), "root", s.cfg.Root)
	}
	output := filepath.Join(root, filepath.FromSlash(s.cfg.OutputDir))

	server := preview.NewServer(
		output,
		net.JoinHostPort(s.cfg.PreviewHost, strconv.Itoa(s.cfg.PreviewPort)),
		a.logger,
	)
	dispatch := dispatcher.New(
		root,
		s.pipeline.Graph(),
		s.pipeline.Rules(),
		s.scheduler,
		server,
		a.logger,
		dispatcher.WithObserver(server),
	)

	err = s.run(ctx, func(ctx context.Context) error {
		a.logger.Info(fmt.Sprintf("building %s (%s)", root, s.env.Mode()))
		if err := s.scheduler.Run(ctx, s.pipeline.Graph(), s.pipeline.Initial()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if domain.IsConfigurationError(err) {
				return err
			}
			a.logger.Error(err)
		}

		return a.serve(ctx, root, output, server, dispatch, s.cfg.Debounce)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serve watches root, except the output directory, and runs the preview
// server and the dispatcher until ctx is done or one of them fails.
func (a *App) serve(
	ctx context.Context,
	root, output string,
	server *preview.Server,
	dispatch *dispatcher.Dispatcher,
	window time.Duration,
) error {
	g, ctx := errgroup.WithContext(ctx)

	if err := a.watcher.Start(ctx, root, output); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start watcher"), "root", root)
	}
	defer func() { _ = a.watcher.Stop() }()
	a.logger.Info("watching " + root)

	// Never closed: a debounce timer may still fire after the watcher stopped.
	events := make(chan domain.WatchEvent)
	debounce := watcher.NewDebouncer(window, func(batch []domain.WatchEvent) {
		for _, event := range batch {
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	})

	g.Go(func() error {
		return server.Serve(ctx)
	})

	g.Go(func() error {
		return dispatch.Run(ctx, events)
	})

	g.Go(func() error {
		for event := range a.watcher.Events() {
			debounce.Add(event)
		}
		return ctx.Err()
	})

	return g.Wait()
}

// session holds everything derived from one resolved configuration.
type session struct {
	cfg       *domain.Config
	env       domain.Environment
	pipeline  *pipeline.Pipeline
	scheduler *scheduler.Scheduler
	renderer  ports.Renderer
	provider  *sdktrace.TracerProvider
}

// prepare loads the configuration, configures logging and progress output and
// declares the pipeline.
func (a *App) prepare(opts Options) (*session, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}

	cfg, err := a.configLoader.Load(root, opts.Flags)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	format := detector.ResolveFormat(detector.DetectEnvironment(), cfg.LogFormat)
	a.configureLogger(format == detector.FormatJSON, cfg.Verbose)

	env := cfg.Environment()
	p, err := pipeline.New(cfg, env, a.deps(cfg))
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, env: env, pipeline: p}

	// JSON output carries log records only; progress lines would corrupt the stream.
	var tracer ports.Tracer = telemetry.NewNoOpTracer()
	if format == detector.FormatPretty {
		s.renderer = linear.NewRenderer(a.stdout, a.stderr)
		s.provider = setupOTel(telemetry.NewBridge(s.renderer))
		tracer = telemetry.NewOTelTracer(tracerName).WithRenderer(s.renderer)
	}

	s.scheduler = scheduler.NewScheduler(tracer, scheduler.WithParallelism(cfg.Parallelism))
	return s, nil
}

// deps builds the adapters the pipeline tasks delegate to.
func (a *App) deps(cfg *domain.Config) pipeline.Deps {
	commands := make(map[string]ports.Compiler, len(cfg.Commands))
	for _, spec := range cfg.Commands {
		commands[spec.Name] = compiler.NewCommandCompiler(spec, cfg.Root, a.executor)
	}

	return pipeline.Deps{
		Assets:    assets.NewSync(cfg.Root, cfg.StaticDir, cfg.OutputDir),
		Manifests: a.manifests,
		Vendor:    vendor.NewAggregator(cfg.Root, cfg.Path(cfg.OutputDir), a.logger),
		Scripts:   compiler.NewScriptBundler(cfg.Root, cfg.ScriptsDir, cfg.ScriptEntries),
		Styles:    compiler.NewStyleCompiler(cfg.Root, cfg.StylesDir, cfg.SassBinary, a.executor),
		Pages:     compiler.NewPageRenderer(cfg.Root, cfg.TemplatesDir, cfg.PagesDir, cfg.TemplateExt),
		Commands:  commands,
	}
}

// configureLogger applies the resolved format when the logger supports it.
func (a *App) configureLogger(json, verbose bool) {
	type configurable interface {
		SetJSON(enable bool)
		SetVerbose(enable bool)
	}
	if l, ok := a.logger.(configurable); ok {
		l.SetJSON(json)
		l.SetVerbose(verbose)
	}
}

// run executes fn alongside the renderer. The renderer stops once fn returns.
func (s *session) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.renderer == nil {
		return fn(ctx)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.renderer.Start(ctx); err != nil {
			return err
		}
		return s.renderer.Wait()
	})

	g.Go(func() error {
		defer func() { _ = s.renderer.Stop() }()
		return fn(ctx)
	})

	return g.Wait()
}

func (s *session) shutdown() {
	if s.provider != nil {
		_ = s.provider.Shutdown(context.Background())
	}
}

// setupOTel configures the OpenTelemetry SDK to report spans to the bridge.
func setupOTel(bridge *telemetry.Bridge) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
	return tp
}
