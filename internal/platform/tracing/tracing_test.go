package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"fantasy/internal/platform/config"
)

func TestSetupWithoutEndpointInstallsPropagatorOnly(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.Tracing{SampleRatio: 1}, "fantasy-test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
}

func TestSetupWithEndpoint(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := Setup(context.Background(), config.Tracing{
		Endpoint:    "http://127.0.0.1:4318/v1/traces",
		SampleRatio: 0.5,
	}, "fantasy-test")
	require.NoError(t, err)
	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
