package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals that a set of tasks is planned for execution.
	// tasks are in plan order, deps maps each task to the tasks it waits on,
	// and group is the rendered execution group.
	EmitPlan(ctx context.Context, tasks []string, deps map[string][]string, group string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// GroupAttribute is the span attribute carrying the execution group a task
// span ran in. Progress renderers only report spans that carry it.
const GroupAttribute = "kiln.group"

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Attributes are set on the span when it starts.
	Attributes map[string]any
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithAttribute sets an attribute on the span at start.
func WithAttribute(key string, value any) SpanOption {
	return func(c *SpanConfig) {
		if c.Attributes == nil {
			c.Attributes = make(map[string]any)
		}
		c.Attributes[key] = value
	}
}

type taskOutputKey struct{}

// WithTaskOutput returns a context carrying w as the output sink of the running task.
func WithTaskOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, taskOutputKey{}, w)
}

// TaskOutput returns the output sink of the running task, or io.Discard.
func TaskOutput(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(taskOutputKey{}).(io.Writer); ok {
		return w
	}
	return io.Discard
}
