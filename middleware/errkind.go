package middleware

import (
	"context"
	"errors"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
)

// errorKind buckets an action error for span and metric attributes.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, onyesha.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, onyesha.ErrUpstream):
		return "upstream"
	case errors.Is(err, onyesha.ErrRetriesExhausted), errors.Is(err, onyesha.ErrCorruptRecord):
		return "state"
	case errors.Is(err, onyesha.ErrInvalidActionConfig), errors.Is(err, onyesha.ErrInvalidKey):
		return "config"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, errPanic):
		return "panic"
	default:
		return "other"
	}
}
