package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PADAS/gundi-integration-onyesha/action"
)

const tracerName = "github.com/PADAS/gundi-integration-onyesha"

// Tracing opens an "onyesha.action.execute" span per invocation on the
// global tracer provider.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer opens spans on tracer. Spans carry onyesha.run_id,
// onyesha.action_id and onyesha.integration_id, plus onyesha.timeout when
// the run is time limited. A failed run records the error, sets an Error
// status and tags onyesha.error_kind (unauthorized, upstream, state,
// config, timeout, canceled, panic or other).
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, inv *action.Invocation, next Handler) error {
		attrs := []attribute.KeyValue{
			attribute.String("onyesha.run_id", inv.RunID.String()),
			attribute.String("onyesha.action_id", inv.ActionID),
			attribute.String("onyesha.integration_id", inv.IntegrationID),
		}
		if inv.Timeout > 0 {
			attrs = append(attrs, attribute.String("onyesha.timeout", inv.Timeout.String()))
		}
		ctx, span := tracer.Start(ctx, "onyesha.action.execute",
			trace.WithAttributes(attrs...),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err == nil {
			span.SetStatus(codes.Ok, "")
			return nil
		}
		span.RecordError(err)
		span.SetAttributes(attribute.String("onyesha.error_kind", errorKind(err)))
		span.SetStatus(codes.Error, err.Error())
		return err
	}
}
