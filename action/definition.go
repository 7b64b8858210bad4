package action

import "context"

// Definition is a typed action definition with a handler function.
// C is the configuration type (must be JSON-decodable).
type Definition[C any] struct {
	// Name is the action id, unique within a registry.
	Name string

	// Handler performs the action with the decoded configuration.
	Handler func(ctx context.Context, inv *Invocation, cfg C) (Result, error)

	Opts Options
}

// NewDefinition creates a typed action definition.
func NewDefinition[C any](name string, handler func(ctx context.Context, inv *Invocation, cfg C) (Result, error), opts ...Option) *Definition[C] {
	def := &Definition[C]{
		Name:    name,
		Handler: handler,
		Opts:    DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&def.Opts)
	}
	return def
}
