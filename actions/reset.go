package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PADAS/gundi-integration-onyesha/action"
	"github.com/PADAS/gundi-integration-onyesha/state"
)

// ResetStateConfig selects the checkpoints to delete.
type ResetStateConfig struct {
	// ActionID is the action whose checkpoints are reset.
	ActionID string `json:"action_id" default:"pull_observations" validate:"required,excludesall=."`
	// SourceIDs lists the sources to reset. Empty means every recorded
	// source of the action, or the no-source checkpoint when the backend
	// cannot enumerate keys.
	SourceIDs []string `json:"source_ids" validate:"dive,excludesall=."`
}

func newResetState(d Deps) *action.Definition[ResetStateConfig] {
	return action.NewDefinition(ResetState,
		func(ctx context.Context, inv *action.Invocation, cfg ResetStateConfig) (action.Result, error) {
			keys, err := resetKeys(ctx, d.State, inv.IntegrationID, cfg)
			if err != nil {
				return nil, err
			}

			reset := make([]string, 0, len(keys))
			for _, k := range keys {
				if err := d.State.Delete(ctx, k); err != nil {
					return action.Result{"reset": reset}, err
				}
				reset = append(reset, k.Source())
			}
			d.Logger.Info("checkpoints reset",
				slog.String("integration_id", inv.IntegrationID),
				slog.String("action_id", cfg.ActionID),
				slog.Any("sources", reset),
			)
			return action.Result{"reset": reset}, nil
		},
		action.WithDescription("delete checkpoints so the next pull starts from the default lookback"),
	)
}

func resetKeys(ctx context.Context, st *state.Store, integrationID string, cfg ResetStateConfig) ([]state.Key, error) {
	if len(cfg.SourceIDs) > 0 {
		keys := make([]state.Key, 0, len(cfg.SourceIDs))
		for _, src := range cfg.SourceIDs {
			keys = append(keys, state.Key{IntegrationID: integrationID, ActionID: cfg.ActionID, SourceID: src})
		}
		return keys, nil
	}

	keys, err := st.List(ctx, integrationID, cfg.ActionID)
	if errors.Is(err, errors.ErrUnsupported) {
		return []state.Key{{IntegrationID: integrationID, ActionID: cfg.ActionID}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("onyesha/actions: reset: %w", err)
	}
	return keys, nil
}
