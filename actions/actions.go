// Package actions implements the connector's built-in actions: credential
// check, observation pull and checkpoint reset.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/client"
	"github.com/PADAS/gundi-integration-onyesha/state"
)

// Action ids.
const (
	Auth             = "auth"
	PullObservations = "pull_observations"
	ResetState       = "reset_state"
)

// Provider is the upstream API surface the actions use. *client.Client and
// *client.Fixture implement it.
type Provider interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	Devices(ctx context.Context) ([]client.Device, error)
	PositionsFrom(ctx context.Context, path, deviceID string, since time.Time) ([]client.Position, error)
}

// ProviderFunc builds a Provider for explicit credentials.
type ProviderFunc func(username, password string) (Provider, error)

// Deps are the collaborators shared by every action.
type Deps struct {
	State    *state.Store
	Provider Provider
	// NewProvider is used by auth when the invocation carries its own
	// credentials. Nil means such invocations check Provider instead.
	NewProvider ProviderFunc
	Sink        Sink
	Logger      *slog.Logger
	// PullTimeout bounds one pull_observations run. Zero means unbounded.
	PullTimeout time.Duration
}

// Register adds auth, pull_observations and reset_state to r.
func Register(r *action.Registry, d Deps) error {
	if d.State == nil || d.Provider == nil {
		return errors.New("onyesha/actions: State and Provider are required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Sink == nil {
		d.Sink = NewLogSink(d.Logger)
	}

	errs := []error{
		action.Register(r, newAuth(d)),
		action.Register(r, newPullObservations(d)),
		action.Register(r, newResetState(d)),
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("onyesha/actions: register: %w", err)
	}
	return nil
}
