package ext_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/ext"
	"github.com/PADAS/gundi-integration-onyesha/id"
)

// allHooksExt implements every lifecycle hook for testing.
type allHooksExt struct {
	calls []string
}

func (e *allHooksExt) Name() string { return "all-hooks" }

func (e *allHooksExt) OnActionStarted(_ context.Context, _ *action.Invocation) error {
	e.calls = append(e.calls, "OnActionStarted")
	return nil
}

func (e *allHooksExt) OnActionCompleted(_ context.Context, _ *action.Invocation, _ action.Result, _ time.Duration) error {
	e.calls = append(e.calls, "OnActionCompleted")
	return nil
}

func (e *allHooksExt) OnActionFailed(_ context.Context, _ *action.Invocation, _ error) error {
	e.calls = append(e.calls, "OnActionFailed")
	return nil
}

func (e *allHooksExt) OnScheduleFired(_ context.Context, _ string, _ id.ID) error {
	e.calls = append(e.calls, "OnScheduleFired")
	return nil
}

func (e *allHooksExt) OnShutdown(_ context.Context) error {
	e.calls = append(e.calls, "OnShutdown")
	return nil
}

// completedOnlyExt only implements the completion hook.
type completedOnlyExt struct {
	calls []string
}

func (e *completedOnlyExt) Name() string { return "completed-only" }

func (e *completedOnlyExt) OnActionCompleted(_ context.Context, _ *action.Invocation, _ action.Result, _ time.Duration) error {
	e.calls = append(e.calls, "OnActionCompleted")
	return nil
}

// failingExt returns errors from hooks.
type failingExt struct{}

func (e *failingExt) Name() string { return "failing" }

func (e *failingExt) OnActionStarted(_ context.Context, _ *action.Invocation) error {
	return errors.New("boom")
}

func (e *failingExt) OnShutdown(_ context.Context) error {
	return errors.New("shutdown boom")
}

func TestRegistry_RegisterDiscoversInterfaces(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	r.Register(all)

	if got := len(r.Extensions()); got != 1 {
		t.Fatalf("expected 1 extension, got %d", got)
	}
	if got := r.Extensions()[0].Name(); got != "all-hooks" {
		t.Fatalf("expected name 'all-hooks', got %q", got)
	}
}

func TestRegistry_EmitFiresOnlyImplementors(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	co := &completedOnlyExt{}
	r.Register(all)
	r.Register(co)

	ctx := context.Background()
	inv := &action.Invocation{ActionID: "pull_observations"}

	r.EmitActionCompleted(ctx, inv, action.Result{}, time.Second)
	if len(all.calls) != 1 || all.calls[0] != "OnActionCompleted" {
		t.Fatalf("all: expected [OnActionCompleted], got %v", all.calls)
	}
	if len(co.calls) != 1 || co.calls[0] != "OnActionCompleted" {
		t.Fatalf("co: expected [OnActionCompleted], got %v", co.calls)
	}

	r.EmitActionStarted(ctx, inv)
	if len(all.calls) != 2 || all.calls[1] != "OnActionStarted" {
		t.Fatalf("all: expected OnActionStarted as 2nd, got %v", all.calls)
	}
	if len(co.calls) != 1 {
		t.Fatalf("co: should still have 1 call, got %v", co.calls)
	}
}

func TestRegistry_AllHooksFire(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	all := &allHooksExt{}
	r.Register(all)

	ctx := context.Background()
	inv := &action.Invocation{ActionID: "auth"}

	r.EmitActionStarted(ctx, inv)
	r.EmitActionCompleted(ctx, inv, nil, time.Second)
	r.EmitActionFailed(ctx, inv, errors.New("fail"))
	r.EmitScheduleFired(ctx, "pull", id.NewRunID())
	r.EmitShutdown(ctx)

	expected := []string{
		"OnActionStarted", "OnActionCompleted", "OnActionFailed",
		"OnScheduleFired", "OnShutdown",
	}
	if len(all.calls) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(all.calls), all.calls)
	}
	for i, want := range expected {
		if all.calls[i] != want {
			t.Errorf("call[%d] = %q, want %q", i, all.calls[i], want)
		}
	}
}

func TestRegistry_HookErrorsLoggedNotPropagated(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	failing := &failingExt{}
	all := &allHooksExt{}

	// Register failing first, then all-hooks. Both should be called.
	r.Register(failing)
	r.Register(all)

	r.EmitActionStarted(context.Background(), &action.Invocation{})

	if len(all.calls) != 1 || all.calls[0] != "OnActionStarted" {
		t.Fatalf("all: expected [OnActionStarted] despite failing ext, got %v", all.calls)
	}
}

func TestRegistry_EmptyRegistryNoOp(_ *testing.T) {
	r := ext.NewRegistry(slog.Default())
	ctx := context.Background()

	r.EmitActionStarted(ctx, &action.Invocation{})
	r.EmitActionCompleted(ctx, &action.Invocation{}, nil, time.Second)
	r.EmitActionFailed(ctx, &action.Invocation{}, errors.New("x"))
	r.EmitScheduleFired(ctx, "test", id.NewRunID())
	r.EmitShutdown(ctx)
}

func TestRegistry_MultipleExtensionsOrderPreserved(t *testing.T) {
	r := ext.NewRegistry(slog.Default())
	var order []string
	r.Register(orderExt{name: "first", order: &order})
	r.Register(orderExt{name: "second", order: &order})

	r.EmitShutdown(context.Background())

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v", order)
	}
}

type orderExt struct {
	name  string
	order *[]string
}

func (e orderExt) Name() string { return e.name }

func (e orderExt) OnShutdown(_ context.Context) error {
	*e.order = append(*e.order, e.name)
	return nil
}
