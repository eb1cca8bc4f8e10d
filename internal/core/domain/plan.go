package domain

import (
	"go.trai.ch/zerr"
)

// Plan is the dependency DAG obtained by flattening a Group against a Graph.
// Every task of the group appears once, with edges to the tasks that must
// succeed before it may start.
type Plan struct {
	order      []InternedString
	deps       map[InternedString][]InternedString
	dependents map[InternedString][]InternedString
}

// NewPlan flattens group against graph.
//
// A sequence member depends on every leaf of its predecessor, concurrent members
// share the predecessors of their group, and task prerequisites add edges only
// between tasks that are part of the plan. A prerequisite outside the group is
// treated as already satisfied.
func NewPlan(graph *Graph, group Group) (*Plan, error) {
	p := &Plan{
		deps:       make(map[InternedString][]InternedString),
		dependents: make(map[InternedString][]InternedString),
	}

	if _, err := p.flatten(graph, group, nil); err != nil {
		return nil, err
	}

	for _, name := range p.order {
		task, _ := graph.GetTask(name)
		for _, pre := range task.Prerequisites {
			if _, planned := p.deps[pre]; planned && pre != name {
				p.addEdge(pre, name)
			}
		}
	}

	if _, cycle := topologicalOrder(p.order, p.Dependencies); cycle != nil {
		return nil, zerr.With(cycleError("invalid execution group", cycle), "group", group.String())
	}

	return p, nil
}

// flatten adds the tasks of g to the plan, each depending on preds, and returns
// the leaves that a following sequence member has to wait for.
func (p *Plan) flatten(graph *Graph, g Group, preds []InternedString) ([]InternedString, error) {
	switch g.kind {
	case GroupSequence:
		current := preds
		for _, m := range g.members {
			leaves, err := p.flatten(graph, m, current)
			if err != nil {
				return nil, err
			}
			current = leaves
		}
		return current, nil

	case GroupConcurrent:
		if len(g.members) == 0 {
			return preds, nil
		}
		var leaves []InternedString
		for _, m := range g.members {
			ml, err := p.flatten(graph, m, preds)
			if err != nil {
				return nil, err
			}
			for _, l := range ml {
				leaves = appendUnique(leaves, l)
			}
		}
		return leaves, nil

	default:
		if g.task.IsZero() {
			return preds, nil
		}
		if _, ok := graph.GetTask(g.task); !ok {
			return nil, zerr.With(zerr.Wrap(ErrTaskNotFound, "invalid execution group"), "task", g.task.String())
		}
		if _, planned := p.deps[g.task]; !planned {
			p.order = append(p.order, g.task)
			p.deps[g.task] = nil
		}
		for _, pre := range preds {
			p.addEdge(pre, g.task)
		}
		return []InternedString{g.task}, nil
	}
}

func (p *Plan) addEdge(from, to InternedString) {
	p.deps[to] = appendUnique(p.deps[to], from)
	p.dependents[from] = appendUnique(p.dependents[from], to)
}

// Tasks returns the planned task names in first-appearance order.
func (p *Plan) Tasks() []InternedString {
	return p.order
}

// Len returns the number of planned tasks.
func (p *Plan) Len() int {
	return len(p.order)
}

// Dependencies returns the tasks that must succeed before name may start.
func (p *Plan) Dependencies(name InternedString) []InternedString {
	return p.deps[name]
}

// Dependents returns the tasks waiting on name.
func (p *Plan) Dependents(name InternedString) []InternedString {
	return p.dependents[name]
}
