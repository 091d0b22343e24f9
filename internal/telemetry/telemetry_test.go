package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestSetup_StdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := setup(context.Background(), "cafe-api", ExporterStdout, &buf)
	require.NoError(t, err)

	ctx, span := otel.Tracer("test").Start(context.Background(), "place-order")
	require.True(t, span.SpanContext().IsValid())

	h := http.Header{}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
	assert.Contains(t, h.Get("traceparent"), span.SpanContext().TraceID().String())

	span.End()
	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"place-order"`)
	assert.Contains(t, buf.String(), "cafe-api")
}

func TestSetup_NoneStillTraces(t *testing.T) {
	shutdown, err := setup(context.Background(), "cafe-api", ExporterNone, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "list-menus")
	defer span.End()
	assert.True(t, span.SpanContext().HasTraceID())
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := setup(context.Background(), "cafe-api", "jaeger", nil)
	assert.EqualError(t, err, `unknown trace exporter "jaeger"`)
}
