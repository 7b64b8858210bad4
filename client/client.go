// Package client is a Go client for the Onyesha tracking API.
//
// Usage:
//
//	c, err := client.New("https://api.onyesha.com",
//	    client.WithCredentials(user, pass),
//	    client.WithRateLimit(5, 1),
//	)
//
//	devices, err := c.Devices(ctx)
//	positions, err := c.Positions(ctx, devices[0].NDeviceID, since)
//
// Requests carry a bearer token obtained from the token exchange and reused
// until it expires. Failed requests are not retried; the caller decides.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
	"github.com/PADAS/gundi-integration-onyesha/isotime"
)

const (
	tokenPath            = "auth/token"
	devicesPath          = "devices"
	defaultPositionsPath = "mobile/vehicles"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4 << 10
)

// Client talks to one Onyesha account. It is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	username string
	password string
	logger   *slog.Logger

	connectTimeout time.Duration
	readTimeout    time.Duration
	ratePerSecond  float64
	rateBurst      int
	positionsPath  string
	base           http.RoundTripper

	limiter *rate.Limiter
	tokens  oauth2.TokenSource
	plain   *http.Client
	authed  *http.Client
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", onyesha.ErrInvalidConfig, baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:        u,
		logger:         slog.Default(),
		connectTimeout: 3100 * time.Millisecond,
		readTimeout:    20 * time.Second,
		rateBurst:      1,
		positionsPath:  defaultPositionsPath,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.base == nil {
		c.base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: c.connectTimeout}).DialContext,
			TLSHandshakeTimeout: c.connectTimeout,
			MaxIdleConnsPerHost: 4,
		}
	}

	c.limiter = rate.NewLimiter(rate.Inf, 0)
	if c.ratePerSecond > 0 {
		burst := c.rateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(c.ratePerSecond), burst)
	}

	c.plain = &http.Client{Transport: c.base, Timeout: c.readTimeout}
	c.tokens = oauth2.ReuseTokenSource(nil, tokenSource{c: c})
	c.authed = &http.Client{
		Transport: &oauth2.Transport{Source: c.tokens, Base: c.base},
		Timeout:   c.readTimeout,
	}
	return c, nil
}

// Token performs a fresh token exchange, bypassing the cached token.
func (c *Client) Token(ctx context.Context) (*oauth2.Token, error) {
	return c.exchange(ctx)
}

// Devices lists the devices registered on the account.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var out []Device
	if err := c.getJSON(ctx, devicesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Positions lists the fixes of deviceID recorded after since, from the
// configured positions path.
func (c *Client) Positions(ctx context.Context, deviceID string, since time.Time) ([]Position, error) {
	return c.PositionsFrom(ctx, c.positionsPath, deviceID, since)
}

// PositionsFrom is Positions against an explicit resource path.
func (c *Client) PositionsFrom(ctx context.Context, path, deviceID string, since time.Time) ([]Position, error) {
	if path == "" {
		path = c.positionsPath
	}
	q := url.Values{}
	q.Set("device_id", deviceID)
	q.Set("since", isotime.Format(since.UTC()))

	var out []Position
	if err := c.getJSON(ctx, strings.TrimPrefix(path, "/"), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("onyesha/client: rate limit: %w", err)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("onyesha/client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.authed.Do(req)
	if err != nil {
		return fmt.Errorf("onyesha/client: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("onyesha request",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if err := checkResponse(resp, http.MethodGet, path); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("onyesha/client: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) exchange(ctx context.Context) (*oauth2.Token, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("onyesha/client: rate limit: %w", err)
	}

	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return nil, fmt.Errorf("onyesha/client: encode credentials: %w", err)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: tokenPath})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("onyesha/client: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.plain.Do(req)
	if err != nil {
		return nil, fmt.Errorf("onyesha/client: token exchange: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, http.MethodPost, tokenPath); err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("onyesha/client: decode token: %w", err)
	}
	if tr.Token == "" {
		return nil, fmt.Errorf("%w: token exchange returned no token", onyesha.ErrUnauthorized)
	}

	tok := &oauth2.Token{AccessToken: tr.Token, TokenType: "Bearer"}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	c.logger.Debug("onyesha token obtained", slog.String("grant_type", tr.GrantType))
	return tok, nil
}

// tokenSource adapts the token exchange to oauth2.TokenSource.
type tokenSource struct {
	c *Client
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ts.c.readTimeout)
	defer cancel()
	return ts.c.exchange(ctx)
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("onyesha/client: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is matches onyesha.ErrUnauthorized for 401/403 and onyesha.ErrUpstream
// for every status.
func (e *APIError) Is(target error) bool {
	switch target {
	case onyesha.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case onyesha.ErrUpstream:
		return true
	}
	return false
}

func checkResponse(resp *http.Response, method, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil && !errors.Is(err, io.EOF) {
		body = []byte(err.Error())
	}
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
