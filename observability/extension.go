package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/ext"
	"github.com/PADAS/gundi-integration-onyesha/id"
)

// Compile-time interface checks.
var (
	_ ext.Extension       = (*MetricsExtension)(nil)
	_ ext.ActionStarted   = (*MetricsExtension)(nil)
	_ ext.ActionCompleted = (*MetricsExtension)(nil)
	_ ext.ActionFailed    = (*MetricsExtension)(nil)
	_ ext.ScheduleFired   = (*MetricsExtension)(nil)
)

const meterName = "github.com/PADAS/gundi-integration-onyesha/observability"

// MetricsExtension records connector-wide lifecycle counters. Register it
// as an extension to track action starts, completions, failures, extracted
// observations and schedule fires.
type MetricsExtension struct {
	ActionStarted         metric.Int64Counter
	ActionCompleted       metric.Int64Counter
	ActionFailed          metric.Int64Counter
	ObservationsExtracted metric.Int64Counter
	ScheduleFired         metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension on the global MeterProvider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension on meter.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// On error the API returns noop instruments.
	started, _ := meter.Int64Counter("onyesha.action.started")
	completed, _ := meter.Int64Counter("onyesha.action.completed")
	failed, _ := meter.Int64Counter("onyesha.action.failed")
	extracted, _ := meter.Int64Counter("onyesha.observations.extracted", metric.WithUnit("{observation}"))
	fired, _ := meter.Int64Counter("onyesha.schedule.fired")
	return &MetricsExtension{
		ActionStarted:         started,
		ActionCompleted:       completed,
		ActionFailed:          failed,
		ObservationsExtracted: extracted,
		ScheduleFired:         fired,
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

func actionAttrs(inv *action.Invocation) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("action_id", inv.ActionID))
}

// OnActionStarted implements ext.ActionStarted.
func (m *MetricsExtension) OnActionStarted(ctx context.Context, inv *action.Invocation) error {
	m.ActionStarted.Add(ctx, 1, actionAttrs(inv))
	return nil
}

// OnActionCompleted implements ext.ActionCompleted. Results carrying an
// integer "observations_extracted" also feed the observations counter.
func (m *MetricsExtension) OnActionCompleted(ctx context.Context, inv *action.Invocation, res action.Result, _ time.Duration) error {
	m.ActionCompleted.Add(ctx, 1, actionAttrs(inv))
	if n, ok := res["observations_extracted"].(int); ok && n > 0 {
		m.ObservationsExtracted.Add(ctx, int64(n), actionAttrs(inv))
	}
	return nil
}

// OnActionFailed implements ext.ActionFailed.
func (m *MetricsExtension) OnActionFailed(ctx context.Context, inv *action.Invocation, _ error) error {
	m.ActionFailed.Add(ctx, 1, actionAttrs(inv))
	return nil
}

// OnScheduleFired implements ext.ScheduleFired.
func (m *MetricsExtension) OnScheduleFired(ctx context.Context, entryName string, _ id.ID) error {
	m.ScheduleFired.Add(ctx, 1, metric.WithAttributes(attribute.String("entry", entryName)))
	return nil
}
