package observability_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/ext"
	"github.com/PADAS/gundi-integration-onyesha/id"
	"github.com/PADAS/gundi-integration-onyesha/observability"
)

func newTestExtension() (*observability.MetricsExtension, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return observability.NewMetricsExtensionWithMeter(mp.Meter("test")), reader
}

func newTestInvocation() *action.Invocation {
	return &action.Invocation{
		RunID:         id.NewRunID(),
		ActionID:      "pull_observations",
		IntegrationID: "org1",
	}
}

func sums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					out[m.Name] += dp.Value
				}
			}
		}
	}
	return out
}

func TestMetricsExtension_Name(t *testing.T) {
	e, _ := newTestExtension()
	if e.Name() != "observability-metrics" {
		t.Errorf("expected name %q, got %q", "observability-metrics", e.Name())
	}
}

func TestMetricsExtension_ActionStarted(t *testing.T) {
	e, reader := newTestExtension()
	if err := e.OnActionStarted(context.Background(), newTestInvocation()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sums(t, reader)["onyesha.action.started"]; got != 1 {
		t.Errorf("started: want 1, got %d", got)
	}
}

func TestMetricsExtension_ActionCompletedCountsObservations(t *testing.T) {
	e, reader := newTestExtension()
	res := action.Result{"observations_extracted": 12}
	if err := e.OnActionCompleted(context.Background(), newTestInvocation(), res, time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := sums(t, reader)
	if got["onyesha.action.completed"] != 1 {
		t.Errorf("completed: want 1, got %d", got["onyesha.action.completed"])
	}
	if got["onyesha.observations.extracted"] != 12 {
		t.Errorf("extracted: want 12, got %d", got["onyesha.observations.extracted"])
	}
}

func TestMetricsExtension_ActionFailed(t *testing.T) {
	e, reader := newTestExtension()
	if err := e.OnActionFailed(context.Background(), newTestInvocation(), errors.New("boom")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sums(t, reader)["onyesha.action.failed"]; got != 1 {
		t.Errorf("failed: want 1, got %d", got)
	}
}

func TestMetricsExtension_ViaRegistry(t *testing.T) {
	e, reader := newTestExtension()
	reg := ext.NewRegistry(slog.Default())
	reg.Register(e)

	ctx := context.Background()
	inv := newTestInvocation()

	reg.EmitActionStarted(ctx, inv)
	reg.EmitActionCompleted(ctx, inv, action.Result{"observations_extracted": 1}, 50*time.Millisecond)
	reg.EmitActionFailed(ctx, inv, errors.New("fail"))
	reg.EmitScheduleFired(ctx, "pull", id.NewRunID())

	got := sums(t, reader)
	for _, name := range []string{
		"onyesha.action.started",
		"onyesha.action.completed",
		"onyesha.action.failed",
		"onyesha.observations.extracted",
		"onyesha.schedule.fired",
	} {
		if got[name] != 1 {
			t.Errorf("%s: want 1, got %d", name, got[name])
		}
	}
}

func TestNewProviders_NoEndpointIsNoop(t *testing.T) {
	p, err := observability.NewProviders(context.Background(), observability.ProviderConfig{})
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil {
		t.Fatal("expected noop providers")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewProviders_WithEndpoint(t *testing.T) {
	p, err := observability.NewProviders(context.Background(), observability.ProviderConfig{
		Endpoint:    "http://127.0.0.1:4318",
		ServiceName: "test",
	})
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	_, span := p.TracerProvider.Tracer("test").Start(context.Background(), "probe")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// Nothing listens on the endpoint; shutdown may report the failed flush.
	_ = p.Shutdown(ctx)
}
