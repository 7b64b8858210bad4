package actions

import (
	"context"
	"errors"
	"log/slog"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/action"
)

// AuthenticateConfig optionally overrides the configured credentials.
type AuthenticateConfig struct {
	Username string         `json:"username" validate:"required_with=Password"`
	Password onyesha.Secret `json:"password" validate:"required_with=Username"`
}

func newAuth(d Deps) *action.Definition[AuthenticateConfig] {
	return action.NewDefinition(Auth,
		func(ctx context.Context, inv *action.Invocation, cfg AuthenticateConfig) (action.Result, error) {
			p := d.Provider
			if cfg.Username != "" && d.NewProvider != nil {
				var err error
				if p, err = d.NewProvider(cfg.Username, cfg.Password.Reveal()); err != nil {
					return nil, err
				}
			}

			tok, err := p.Token(ctx)
			if errors.Is(err, onyesha.ErrUnauthorized) {
				d.Logger.Warn("onyesha credentials rejected",
					slog.String("integration_id", inv.IntegrationID),
					slog.String("error", err.Error()),
				)
				return action.Result{"valid_credentials": false, "message": err.Error()}, nil
			}
			if err != nil {
				return nil, err
			}

			res := action.Result{"valid_credentials": true}
			if !tok.Expiry.IsZero() {
				res["expires_at"] = tok.Expiry.UTC()
			}
			return res, nil
		},
		action.WithDescription("check Onyesha credentials with a token exchange"),
	)
}
