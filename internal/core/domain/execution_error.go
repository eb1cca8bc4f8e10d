package domain

import (
	"fmt"
	"strings"
)

// TaskFailure pairs a failed task with its error.
type TaskFailure struct {
	Task string
	Err  error
}

// ExecutionError is the aggregated failure of one group execution.
// It lists every failed task and every task skipped because a predecessor failed.
type ExecutionError struct {
	Group    string
	Failures []TaskFailure
	Skipped  []string
}

// Error renders one line per failed task.
func (e *ExecutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d task(s) failed", ErrBuildExecutionFailed.Error(), len(e.Failures))
	if len(e.Skipped) > 0 {
		fmt.Fprintf(&b, ", %d skipped", len(e.Skipped))
	}
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n[%s] %v", f.Task, f.Err)
	}
	if len(e.Skipped) > 0 {
		fmt.Fprintf(&b, "\nskipped: %s", strings.Join(e.Skipped, ", "))
	}
	return b.String()
}

// Is reports ErrBuildExecutionFailed as the identity of every ExecutionError.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrBuildExecutionFailed
}

// Unwrap exposes the error of every failed task.
func (e *ExecutionError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// FailedTasks returns the names of the failed tasks in completion order.
func (e *ExecutionError) FailedTasks() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Task
	}
	return names
}
