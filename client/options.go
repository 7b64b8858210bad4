package client

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the account used for the token exchange.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTimeouts sets the TCP connect timeout and the overall per-request
// timeout.
func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Client) {
		c.connectTimeout = connect
		c.readTimeout = read
	}
}

// WithRateLimit limits outgoing requests to perSecond with the given burst.
// Zero perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.ratePerSecond = perSecond
		c.rateBurst = burst
	}
}

// WithHTTPTransport replaces the base transport, mainly for tests.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithPositionsPath sets the resource path positions are listed from.
func WithPositionsPath(path string) Option {
	return func(c *Client) { c.positionsPath = path }
}
