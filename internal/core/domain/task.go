package domain

import "context"

// Action is the opaque unit of work a task performs.
type Action func(ctx context.Context) error

// Task represents a named unit of rebuild work.
// Tasks are declared once in a Graph and re-used for every execution.
type Task struct {
	Name          InternedString
	Action        Action
	Prerequisites []InternedString
}

// NewTask creates a task with the given name, action and prerequisite names.
func NewTask(name string, action Action, prerequisites ...string) *Task {
	return &Task{
		Name:          NewInternedString(name),
		Action:        action,
		Prerequisites: NewInternedStrings(prerequisites),
	}
}

// Run executes the task action. A task without an action succeeds.
func (t *Task) Run(ctx context.Context) error {
	if t.Action == nil {
		return nil
	}
	return t.Action(ctx)
}
