package oteltrace

import (
	"context"

	"github.com/minhngo-dev/stock-tally/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New returns a Tracer backed by the global OpenTelemetry provider. Without an SDK
// provider installed the spans are no-ops, which is the default for this tool.
func New(name string) observability.Tracer {
	if name == "" {
		name = "stock-tally"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
