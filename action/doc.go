// Package action defines typed connector actions, the invocation record
// passed through middleware, and the registry that dispatches by action id.
//
// # Defining an Action
//
// Use [Definition] with a typed configuration. The raw JSON configuration
// of an invocation is decoded into C, struct defaults are applied
// (`default` tags) and the result is validated (`validate` tags) before the
// handler runs:
//
//	type PingConfig struct {
//	    Host string `json:"host" validate:"required,hostname"`
//	}
//
//	var Ping = action.NewDefinition("ping",
//	    func(ctx context.Context, inv *action.Invocation, cfg PingConfig) (action.Result, error) {
//	        return action.Result{"reachable": true}, nil
//	    },
//	)
//
// # Registry
//
// [Registry] maps action ids to type-erased [HandlerFunc] values.
// Register definitions at startup via [Register]:
//
//	action.Register(registry, Ping)
//
// The engine package looks handlers up by id and runs them through the
// middleware chain.
package action
