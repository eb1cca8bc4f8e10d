package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/core/ports"
)

// OpenTelemetry names of the event written by span.RecordError.
const (
	exceptionEvent   = "exception"
	exceptionMessage = attribute.Key("exception.message")
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor and reports task spans to a
// Renderer. A task span carries ports.GroupAttribute; spans of other
// instrumentation sharing the provider are ignored.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a new Bridge.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart reports a task start.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if !b.reports(s) {
		return
	}

	var parentID string
	if sc := trace.SpanContextFromContext(parent); sc.IsValid() {
		parentID = sc.SpanID().String()
	}
	b.renderer.OnTaskStart(s.SpanContext().SpanID().String(), parentID, s.Name(), s.StartTime())
}

// OnEnd reports a task completion.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if !b.reports(s) {
		return
	}
	b.renderer.OnTaskComplete(s.SpanContext().SpanID().String(), s.EndTime(), spanError(s))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

func (b *Bridge) reports(s sdktrace.ReadOnlySpan) bool {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return false
	}
	for _, kv := range s.Attributes() {
		if kv.Key == ports.GroupAttribute {
			return true
		}
	}
	return false
}

// spanError returns the failure of a span with error status: the message of
// the last recorded error, else the status description.
func spanError(s sdktrace.ReadOnlySpan) error {
	status := s.Status()
	if status.Code != codes.Error {
		return nil
	}

	events := s.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name != exceptionEvent {
			continue
		}
		for _, kv := range events[i].Attributes {
			if kv.Key == exceptionMessage && kv.Value.AsString() != "" {
				return errors.New(kv.Value.AsString())
			}
		}
	}

	if status.Description != "" {
		return errors.New(status.Description)
	}
	return errors.New("task failed")
}
