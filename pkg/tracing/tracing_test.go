package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	tp := NewProvider(sdktrace.AlwaysSample(), nil, sdktrace.WithSpanProcessor(rec))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return rec
}

func TestInitTracer(t *testing.T) {
	// gRPC exporter惰性连接,初始化不需要collector在线
	shutdown, err := InitTracer(Options{ServiceName: "circulation-test", Endpoint: "localhost:4317", Insecure: true})
	require.NoError(t, err)
	assert.NotNil(t, shutdown)
	_ = shutdown(context.Background())
}

func TestStartSpan_ChildSharesTrace(t *testing.T) {
	rec := useRecorder(t)

	ctx, root := StartSpan(context.Background(), "test", "Root")
	_, child := StartSpan(ctx, "test", "Child")
	child.End()
	root.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Child", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, root.SpanContext().TraceID().String(), ExtractTraceID(ctx))
}

func TestEnd_RecordsError(t *testing.T) {
	rec := useRecorder(t)

	_, span := StartSpan(context.Background(), "test", "Fails")
	End(span, errors.New("out of stock"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
}

func TestExtractTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Contains(t, sampler(0.1).Description(), "TraceIDRatioBased")
}
