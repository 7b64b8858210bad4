package redis

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PADAS/gundi-integration-onyesha/state"
)

// transientReplies are server error prefixes that clear up on their own.
var transientReplies = []string{
	"LOADING",
	"BUSY",
	"TRYAGAIN",
	"CLUSTERDOWN",
	"MASTERDOWN",
	"READONLY",
}

func classify(op, key string, err error) error {
	return &state.BackendError{Op: op, Key: key, Err: err, Transient: isTransient(err)}
}

func isTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Caller cancellation is final.
		return false
	case errors.Is(err, goredis.ErrClosed):
		return false
	case errors.Is(err, goredis.ErrPoolTimeout):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var replyErr goredis.Error
	if errors.As(err, &replyErr) {
		msg := replyErr.Error()
		for _, p := range transientReplies {
			if strings.HasPrefix(msg, p) {
				return true
			}
		}
	}
	return false
}
