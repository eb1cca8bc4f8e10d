// Package scheduler executes execution groups against the declared task graph.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task within one run.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting for its predecessors.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task action failed.
	StatusFailed TaskStatus = "Failed"
)

// Scheduler runs execution groups with bounded parallelism.
// It holds no state between runs, so the same group may be executed
// concurrently, once per watch event.
type Scheduler struct {
	tracer      ports.Tracer
	parallelism int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithParallelism bounds the number of concurrently running tasks.
// Values below one select runtime.NumCPU().
func WithParallelism(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// NewScheduler creates a new Scheduler reporting task progress to tracer.
func NewScheduler(tracer ports.Tracer, opts ...Option) *Scheduler {
	s := &Scheduler{
		tracer:      tracer,
		parallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parallelism returns the configured bound on concurrently running tasks.
func (s *Scheduler) Parallelism() int {
	return s.parallelism
}

// Run executes every task of group exactly once, honoring sequence order,
// concurrent fan-out and the prerequisites declared in graph.
//
// It returns nil when every action succeeds, otherwise a *domain.ExecutionError
// listing every failed task and every task skipped because a predecessor failed.
// A cancelled context stops scheduling; running actions are not interrupted and
// ctx.Err() is joined into the result.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, group domain.Group) error {
	plan, err := domain.NewPlan(graph, group)
	if err != nil {
		return err
	}

	state := s.newRunState(ctx, graph, plan, group)

	deps := make(map[string][]string, plan.Len())
	for _, name := range plan.Tasks() {
		deps[name.String()] = domain.Strings(plan.Dependencies(name))
	}
	s.tracer.EmitPlan(ctx, domain.Strings(plan.Tasks()), deps, group.String())

	return state.runExecutionLoop()
}

type result struct {
	task domain.InternedString
	err  error
}

type schedulerRunState struct {
	s           *Scheduler
	ctx         context.Context
	plan        *domain.Plan
	group       domain.Group
	tasks       map[domain.InternedString]domain.Task
	inDegree    map[domain.InternedString]int
	status      map[domain.InternedString]TaskStatus
	ready       []domain.InternedString
	active      int
	resultsCh   chan result
	failures    []domain.TaskFailure
	parallelism int
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.Graph,
	plan *domain.Plan,
	group domain.Group,
) *schedulerRunState {
	taskCount := plan.Len()
	state := &schedulerRunState{
		s:           s,
		ctx:         ctx,
		plan:        plan,
		group:       group,
		tasks:       make(map[domain.InternedString]domain.Task, taskCount),
		inDegree:    make(map[domain.InternedString]int, taskCount),
		status:      make(map[domain.InternedString]TaskStatus, taskCount),
		resultsCh:   make(chan result, s.parallelism),
		parallelism: s.parallelism,
	}

	for _, name := range plan.Tasks() {
		task, _ := graph.GetTask(name)
		state.tasks[name] = task
		state.status[name] = StatusPending
		state.inDegree[name] = len(plan.Dependencies(name))
		if state.inDegree[name] == 0 {
			state.ready = append(state.ready, name)
		}
	}

	return state
}

func (state *schedulerRunState) runExecutionLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
			if state.active > 0 {
				state.handleResult(<-state.resultsCh)
			}
		}
	}

	return errors.Join(state.executionError(), state.ctx.Err())
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		taskName := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.status[taskName] = StatusRunning

		t := state.tasks[taskName]
		go state.executeTask(&t)
	}
}

func (state *schedulerRunState) executeTask(t *domain.Task) {
	// The span is ended before the result is sent so the renderer reports the
	// completion before the run returns.
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, t.Name.String(),
			ports.WithAttribute(ports.GroupAttribute, state.group.String()))
		defer span.End()

		err := runAction(ports.WithTaskOutput(ctx, span), t)
		if err != nil {
			span.RecordError(err)
		}
		return result{task: t.Name, err: err}
	}()

	state.resultsCh <- res
}

// runAction executes the task action, converting a panic into a task failure.
func runAction(ctx context.Context, t *domain.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(zerr.Wrap(domain.ErrTaskPanicked, fmt.Sprint(r)), "task", t.Name.String())
		}
	}()
	return t.Run(ctx)
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--

	if res.err != nil {
		state.status[res.task] = StatusFailed
		state.failures = append(state.failures, domain.TaskFailure{
			Task: res.task.String(),
			Err:  res.err,
		})
		return
	}

	state.status[res.task] = StatusCompleted
	for _, dep := range state.plan.Dependents(res.task) {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

// executionError aggregates the failures of the run. Tasks that never left
// the pending state are reported as skipped.
func (state *schedulerRunState) executionError() error {
	if len(state.failures) == 0 {
		return nil
	}

	var skipped []string
	for _, name := range state.plan.Tasks() {
		if state.status[name] == StatusPending {
			skipped = append(skipped, name.String())
		}
	}

	return &domain.ExecutionError{
		Group:    state.group.String(),
		Failures: state.failures,
		Skipped:  skipped,
	}
}
