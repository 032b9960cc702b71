package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/glaze/internal/adapters/telemetry"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	sr, tp := setupRecorder(t)

	ctrl := gomock.NewController(t)
	mockRenderer := mocks.NewMockRenderer(ctrl)
	mockRenderer.EXPECT().OnPlanEmit([]string{"images", "fonts"}).Times(2)

	tracer := telemetry.NewOTelTracer(tp, "test").WithRenderer(mockRenderer)

	// Without a span in the context only the renderer is notified.
	tracer.EmitPlan(context.Background(), []string{"images", "fonts"})
	assert.Empty(t, sr.Ended())

	ctx, span := tp.Tracer("test").Start(context.Background(), "build")
	tracer.EmitPlan(ctx, []string{"images", "fonts"})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "plan_emitted", events[0].Name)
}

func TestOTelTracer_StartAndRecordError(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracer(tp, "test")

	_, span := tracer.Start(context.Background(), "html")
	span.RecordError(errors.New("included file not found"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "html", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "included file not found", spans[0].Status().Description)
}

func TestOTelSpan_SetAttribute(t *testing.T) {
	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracer(tp, "test")

	_, span := tracer.Start(context.Background(), "attr-test")
	span.SetAttribute("str", "val")
	span.SetAttribute("int", 123)
	span.SetAttribute("int64", int64(456))
	span.SetAttribute("float", 3.14)
	span.SetAttribute("bool", true)
	span.SetAttribute("slice", []string{"a", "b"})
	span.SetAttribute("unknown", struct{}{})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	attrMap := make(map[string]any)
	for _, a := range spans[0].Attributes() {
		switch a.Value.Type() {
		case attribute.STRING:
			attrMap[string(a.Key)] = a.Value.AsString()
		case attribute.INT64:
			attrMap[string(a.Key)] = a.Value.AsInt64()
		case attribute.FLOAT64:
			attrMap[string(a.Key)] = a.Value.AsFloat64()
		case attribute.BOOL:
			attrMap[string(a.Key)] = a.Value.AsBool()
		case attribute.STRINGSLICE:
			attrMap[string(a.Key)] = a.Value.AsStringSlice()
		}
	}

	assert.Equal(t, "val", attrMap["str"])
	assert.Equal(t, int64(123), attrMap["int"])
	assert.Equal(t, int64(456), attrMap["int64"])
	assert.InEpsilon(t, 3.14, attrMap["float"], 0.001)
	assert.Equal(t, true, attrMap["bool"])
	assert.Equal(t, []string{"a", "b"}, attrMap["slice"])
	assert.Equal(t, "{}", attrMap["unknown"])
}

func TestNewTracerProvider_ForwardsSpansToRenderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRenderer := mocks.NewMockRenderer(ctrl)

	gomock.InOrder(
		mockRenderer.EXPECT().OnTaskStart(gomock.Any(), "", "cssStyles", gomock.Any()),
		mockRenderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), nil),
	)

	tp := telemetry.NewTracerProvider(telemetry.NewBridge(mockRenderer))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := telemetry.NewOTelTracer(tp, "test").Start(context.Background(), "cssStyles")
	span.End()
}

func TestOTelTracer_RecordedErrorReachesRenderer(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRenderer := mocks.NewMockRenderer(ctrl)

	failure := &domain.StepFailure{Task: "html", Step: domain.KindIncludeHTML, File: "index.html", Err: domain.ErrIncludeNotFound}

	var got error
	mockRenderer.EXPECT().OnTaskStart(gomock.Any(), "", "html", gomock.Any())
	mockRenderer.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ time.Time, err error) { got = err })

	bridge := telemetry.NewBridge(mockRenderer)
	tp := telemetry.NewTracerProvider(bridge)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := telemetry.NewOTelTracer(tp, "test").WithBridge(bridge).Start(context.Background(), "html")
	span.RecordError(failure)
	span.End()

	assert.Same(t, failure, got)
	require.ErrorIs(t, got, domain.ErrStepFailed)
}

func TestOTelTracer_TaskAttribute(t *testing.T) {
	sr, tp := setupRecorder(t)

	_, span := telemetry.NewOTelTracer(tp, "test").Start(context.Background(), "fonts")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.String("glaze.task", "fonts"))
}
