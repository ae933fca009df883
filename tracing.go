package jobflow

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startSpan wraps ctx in a span named jobflow.<op> using Config.Tracer. A nil
// Tracer never happens here: New installs otel.Tracer("jobflow") from the
// global tracer provider when Config.Tracer is left unset, so this is always
// safe to call.
func (q *Queue) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return q.cfg.Tracer.Start(ctx, "jobflow."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
