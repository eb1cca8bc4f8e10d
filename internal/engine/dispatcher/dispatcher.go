// Package dispatcher turns filesystem events into scoped rebuilds.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// DefaultSlots is the number of events rebuilt concurrently.
const DefaultSlots = 4

// Executor runs an execution group against a task graph.
type Executor interface {
	Run(ctx context.Context, graph *domain.Graph, group domain.Group) error
}

// Dispatcher classifies watch events against the watch rules and executes
// the resulting rebuilds, notifying the preview once each rebuild finished.
type Dispatcher struct {
	root     string
	graph    *domain.Graph
	rules    []domain.WatchRule
	executor Executor
	notifier ports.Notifier
	observer ports.RebuildObserver
	logger   ports.Logger
	slots    int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSlots bounds the number of events processed concurrently.
func WithSlots(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.slots = n
		}
	}
}

// WithObserver records the outcome of every rebuild.
func WithObserver(o ports.RebuildObserver) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// New creates a dispatcher for the project at root.
// Rules are matched in order; the first match wins.
func New(
	root string,
	graph *domain.Graph,
	rules []domain.WatchRule,
	executor Executor,
	notifier ports.Notifier,
	logger ports.Logger,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		root:     root,
		graph:    graph,
		rules:    rules,
		executor: executor,
		notifier: notifier,
		logger:   logger,
		slots:    DefaultSlots,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Classify finds the rule responsible for event and asks it for the rebuild unit.
func (d *Dispatcher) Classify(event domain.WatchEvent) (domain.WatchRule, domain.Rebuild, error) {
	rel, err := d.relative(event.Path)
	if err != nil {
		return domain.WatchRule{}, domain.Rebuild{}, err
	}

	for _, rule := range d.rules {
		if !rule.Matches(rel, event.Kind) {
			continue
		}

		rebuild, err := rule.Handler(rel, event.Kind)
		if err == nil {
			err = rebuild.Validate()
		}
		if err == nil && len(rebuild.Globs) > 0 && rule.Expand == nil {
			err = zerr.With(zerr.New("rule cannot expand globs"), "rule", rule.Name)
		}
		if err != nil {
			if !errors.Is(err, domain.ErrClassificationFailed) {
				err = zerr.With(zerr.Wrap(domain.ErrClassificationFailed, err.Error()), "path", rel)
			}
			return rule, domain.Rebuild{}, err
		}
		if rebuild.Label == "" {
			rebuild.Label = rule.Name
		}
		return rule, rebuild, nil
	}

	return domain.WatchRule{}, domain.Rebuild{}, zerr.With(
		zerr.Wrap(domain.ErrNoMatchingRule, "no watch rule matches"), "path", rel)
}

// Dispatch classifies event and executes its rebuild. The preview is notified
// after the rebuild finished: a reload on success, the error detail on failure.
// Classification errors are logged and nothing is rebuilt.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.WatchEvent) error {
	rule, rebuild, err := d.Classify(event)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatchingRule) {
			d.logger.Debug(fmt.Sprintf("ignored %s %s", event.Kind, event.Path))
		} else {
			d.logger.Warn(err.Error())
		}
		return err
	}

	start := time.Now()
	err = d.execute(ctx, rule, rebuild)
	duration := time.Since(start)

	if d.observer != nil {
		d.observer.ObserveRebuild(rule.Name, duration, err)
	}

	if err != nil {
		d.logger.Error(err)
		d.notifier.NotifyError(err.Error())
		return err
	}

	d.logger.Info(fmt.Sprintf("rebuilt %s in %s", rebuild.Label, duration.Round(time.Millisecond)))
	d.notifier.NotifyReload()
	return nil
}

// Run dispatches events until the channel is closed or ctx is done.
// Events are processed concurrently, bounded by the configured slots. Once
// ctx is done Run returns without waiting for rebuilds still holding a slot;
// they observe the same ctx.
func (d *Dispatcher) Run(ctx context.Context, events <-chan domain.WatchEvent) error {
	slots := semaphore.NewWeighted(int64(d.slots))
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				wg.Wait()
				return nil
			}
			if err := slots.Acquire(ctx, 1); err != nil {
				return err
			}
			wg.Go(func() {
				defer slots.Release(1)
				d.safeDispatch(ctx, event)
			})
		}
	}
}

func (d *Dispatcher) safeDispatch(ctx context.Context, event domain.WatchEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(zerr.With(zerr.Wrap(domain.ErrTaskPanicked, fmt.Sprint(r)), "path", event.Path))
		}
	}()
	// Failures are logged and reported to the preview by Dispatch.
	_ = d.Dispatch(ctx, event)
}

func (d *Dispatcher) execute(ctx context.Context, rule domain.WatchRule, rebuild domain.Rebuild) error {
	if !rebuild.Target.IsZero() {
		return d.executor.Run(ctx, d.graph, rebuild.Target)
	}

	action := rebuild.Action
	if action == nil {
		action = rule.Expand(rebuild.Globs)
	}

	graph := domain.NewGraph()
	if err := graph.AddTask(domain.NewTask(rebuild.Label, action)); err != nil {
		return err
	}
	return d.executor.Run(ctx, graph, domain.Run(rebuild.Label))
}

func (d *Dispatcher) relative(path string) (string, error) {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		if rel, err = filepath.Rel(d.root, path); err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrClassificationFailed, err.Error()), "path", path)
		}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", zerr.With(zerr.Wrap(domain.ErrClassificationFailed, "path escapes the project root"), "path", path)
	}
	return rel, nil
}
