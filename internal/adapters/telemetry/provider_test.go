package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupMonitor(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

func TestOTelTracer_StartWithAttributes(t *testing.T) {
	sr := setupMonitor(t)
	tracer := telemetry.NewOTelTracer("kiln")

	_, span := tracer.Start(t.Context(), "main-js",
		ports.WithAttribute(ports.GroupAttribute, "seq(main-js)"),
		ports.WithAttribute("kiln.attempt", 1),
	)
	span.SetAttribute("kiln.production", true)
	span.SetAttribute("kiln.entries", []string{"main.js"})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "main-js", spans[0].Name())
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("kiln.group", "seq(main-js)"),
		attribute.Int("kiln.attempt", 1),
		attribute.Bool("kiln.production", true),
		attribute.StringSlice("kiln.entries", []string{"main.js"}),
	}, spans[0].Attributes())
}

func TestOTelSpan_RecordError(t *testing.T) {
	sr := setupMonitor(t)
	tracer := telemetry.NewOTelTracer("kiln")

	_, span := tracer.Start(t.Context(), "render")
	span.RecordError(errors.New("template: no such template \"nav\""))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Status().Description, "no such template")
}

func TestOTelSpan_WriteForwardsToRenderer(t *testing.T) {
	setupMonitor(t)
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := telemetry.NewOTelTracer("kiln").WithRenderer(renderer)

	_, span := tracer.Start(t.Context(), "main-css")
	renderer.EXPECT().OnTaskLog(gomock.Any(), []byte("Deprecation warning\n"))

	n, err := span.Write([]byte("Deprecation warning\n"))
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	span.End()
}

func TestOTelSpan_WriteWithoutRenderer(t *testing.T) {
	sr := setupMonitor(t)
	tracer := telemetry.NewOTelTracer("kiln")

	_, span := tracer.Start(t.Context(), "icons")
	_, err := span.Write([]byte("optimized"))
	require.NoError(t, err)
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	sr := setupMonitor(t)
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	tracer := telemetry.NewOTelTracer("kiln").WithRenderer(renderer)

	deps := map[string][]string{"render": {"main-js"}}
	renderer.EXPECT().OnPlanEmit([]string{"main-js", "render"}, deps, "seq(main-js, render)").Times(2)

	// Without a current span only the renderer is notified.
	tracer.EmitPlan(t.Context(), []string{"main-js", "render"}, deps, "seq(main-js, render)")
	assert.Empty(t, sr.Ended())

	ctx, root := otel.Tracer("test").Start(t.Context(), "build")
	tracer.EmitPlan(ctx, []string{"main-js", "render"}, deps, "seq(main-js, render)")
	root.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "plan_emitted", spans[0].Events()[0].Name)
}
