package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/PADAS/gundi-integration-onyesha/action"
)

const meterName = "github.com/PADAS/gundi-integration-onyesha"

// Metrics records run metrics on the global meter provider.
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter records two instruments per run on meter:
//
//   - onyesha.action.duration: seconds spent in the rest of the chain
//   - onyesha.action.executions: one per run
//
// Both are attributed with action_id, integration_id, status ("ok" or
// "error") and error_kind, so failing upstream logins can be told apart
// from checkpoint store outages.
func MetricsWithMeter(meter metric.Meter) Middleware {
	duration, _ := meter.Float64Histogram(
		"onyesha.action.duration",
		metric.WithDescription("Duration of action runs"),
		metric.WithUnit("s"),
	)
	executions, _ := meter.Int64Counter(
		"onyesha.action.executions",
		metric.WithDescription("Action runs by outcome"),
		metric.WithUnit("{execution}"),
	)

	return func(ctx context.Context, inv *action.Invocation, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("action_id", inv.ActionID),
			attribute.String("integration_id", inv.IntegrationID),
			attribute.String("status", status),
			attribute.String("error_kind", errorKind(err)),
		)
		duration.Record(ctx, elapsed, attrs)
		executions.Add(ctx, 1, attrs)
		return err
	}
}
