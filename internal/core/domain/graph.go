// Package domain contains the core domain models of kiln: tasks, their
// dependency graph, execution groups and the watch rules that map changed
// files back to rebuild units.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Graph holds every declared task of a pipeline.
// It is built once at process start and never mutated afterwards.
type Graph struct {
	tasks          map[InternedString]Task
	declared       []InternedString
	dependents     map[InternedString][]InternedString
	executionOrder []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks:      make(map[InternedString]Task),
		dependents: make(map[InternedString][]InternedString),
	}
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if t.Name.String() == "" {
		return ErrInvalidTaskName
	}
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(zerr.Wrap(ErrTaskAlreadyExists, "cannot declare task"), "task_name", t.Name.String())
	}
	g.tasks[t.Name] = *t
	g.declared = append(g.declared, t.Name)
	for _, pre := range t.Prerequisites {
		g.dependents[pre] = appendUnique(g.dependents[pre], t.Name)
	}
	return nil
}

// GetTask returns the task with the given name.
func (g *Graph) GetTask(name InternedString) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of declared tasks.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Dependents returns the names of tasks that list name as a prerequisite.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// Validate checks that every prerequisite is declared and that the graph is acyclic.
// It populates the execution order used by Walk.
func (g *Graph) Validate() error {
	for _, name := range g.declared {
		for _, pre := range g.tasks[name].Prerequisites {
			if _, ok := g.tasks[pre]; !ok {
				return zerr.With(
					zerr.With(zerr.Wrap(ErrMissingDependency, "invalid task graph"), "task", name.String()),
					"dependency", pre.String(),
				)
			}
		}
	}

	order, cycle := topologicalOrder(g.declared, func(n InternedString) []InternedString {
		return g.tasks[n].Prerequisites
	})
	if cycle != nil {
		return cycleError("invalid task graph", cycle)
	}
	g.executionOrder = order
	return nil
}

// Walk returns an iterator that yields tasks in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// Tasks returns an iterator over the tasks in declaration order.
func (g *Graph) Tasks() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.declared {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// topologicalOrder orders nodes so that every node comes after the nodes returned by before.
// Nodes are visited in the given order, which makes the result deterministic.
// When a cycle exists it returns the cycle path instead.
func topologicalOrder(
	nodes []InternedString,
	before func(InternedString) []InternedString,
) (order, cycle []InternedString) {
	order = make([]InternedString, 0, len(nodes))
	visited := make(map[InternedString]int, len(nodes)) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) []InternedString
	visit = func(u InternedString) []InternedString {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range before(u) {
			switch visited[dep] {
			case 1:
				return cyclePath(path, dep)
			case 0:
				if c := visit(dep); c != nil {
					return c
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		order = append(order, u)
		return nil
	}

	for _, name := range nodes {
		if visited[name] == 0 {
			if c := visit(name); c != nil {
				return nil, c
			}
		}
	}
	return order, nil
}

func cyclePath(path []InternedString, dep InternedString) []InternedString {
	start := 0
	for i, node := range path {
		if node == dep {
			start = i
			break
		}
	}
	cycle := make([]InternedString, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	return append(cycle, dep)
}

func cycleError(msg string, cycle []InternedString) error {
	return zerr.With(zerr.Wrap(ErrCycleDetected, msg), "cycle", strings.Join(Strings(cycle), " -> "))
}
