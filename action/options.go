package action

import "time"

// Options configures per-action behavior.
type Options struct {
	// Timeout bounds one execution. Zero means no deadline beyond the
	// caller's context.
	Timeout time.Duration

	// Description is shown by the CLI.
	Description string
}

// DefaultOptions returns Options with no timeout.
func DefaultOptions() Options {
	return Options{}
}

// Option is a functional option for configuring an action definition.
type Option func(*Options)

// WithTimeout sets the maximum execution duration for the action.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithDescription sets a human readable summary.
func WithDescription(s string) Option {
	return func(o *Options) {
		o.Description = s
	}
}
