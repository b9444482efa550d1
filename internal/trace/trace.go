package trace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "crypto-narrator"

// StartSpan starts a span on the global tracer provider. Until logger.Init
// installs an SDK provider this is the otel no-op tracer.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentation).Start(ctx, spanName, trace.WithAttributes(attrs...))
}
