package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func bridgedTracer(t *testing.T, renderer ports.Renderer) trace.Tracer {
	t.Helper()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("test")
}

func taskSpan(group string) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String(ports.GroupAttribute, group))
}

func TestBridge_ReportsLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := bridgedTracer(t, renderer)

	gomock.InOrder(
		renderer.EXPECT().OnTaskStart(gomock.Any(), "", "main-js", gomock.Any()),
		renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)
	_, span := tracer.Start(t.Context(), "main-js", taskSpan("par(main-js, main-css)"))
	span.End()
}

func TestBridge_ReportsParent(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := bridgedTracer(t, renderer)

	ctx, parent := tracer.Start(t.Context(), "rebuild")
	renderer.EXPECT().OnTaskStart(gomock.Any(), parent.SpanContext().SpanID().String(), "render", gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil)

	_, span := tracer.Start(ctx, "render", taskSpan("render"))
	span.End()
	parent.End()
}

func TestBridge_IgnoresSpansWithoutGroup(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := bridgedTracer(t, renderer)

	// No expectations: any renderer call fails the test.
	_, span := tracer.Start(t.Context(), "http.request")
	span.End()
}

func TestBridge_ReportsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "render", gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Not(nil)).
		Do(func(_ string, _ time.Time, err error) {
			assert.EqualError(t, err, "boom")
		})

	_, span := telemetry.NewOTelTracer("kiln").Start(t.Context(), "render",
		ports.WithAttribute(ports.GroupAttribute, "render"))
	span.RecordError(errors.New("boom"))
	span.End()
}

func TestBridge_FailureWithoutRecordedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := bridgedTracer(t, renderer)

	renderer.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "main-css", gomock.Any())
	renderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Not(nil)).
		Do(func(_ string, _ time.Time, err error) {
			assert.EqualError(t, err, "task failed")
		})

	_, span := tracer.Start(t.Context(), "main-css", taskSpan("main-css"))
	span.SetStatus(codes.Error, "")
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	_, span := bridgedTracer(t, nil).Start(t.Context(), "noop", taskSpan("noop"))
	span.End()
}
