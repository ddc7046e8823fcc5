package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
)

const (
	defaultTimeout            = 10 * time.Second
	responseBodyLimit   int64 = 1 << 20
	authorizationHeader       = "Authorization"
)

// TokenSource supplies the current bearer token, empty when anonymous.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// UnauthorizedHook is invoked once per 401 response, regardless of which
// call produced it.
type UnauthorizedHook func(ctx context.Context)

// Client talks to the remote storefront API. It owns bearer-token injection
// and the unauthorized callback; everything else is plain request/response.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokens       TokenSource
	unauthorized UnauthorizedHook
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithTokenSource wires the bearer token supplier.
func WithTokenSource(source TokenSource) Option {
	return func(c *Client) {
		c.tokens = source
	}
}

// WithUnauthorizedHook wires the 401 callback.
func WithUnauthorizedHook(hook UnauthorizedHook) Option {
	return func(c *Client) {
		c.unauthorized = hook
	}
}

// New builds a storefront API client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("api base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// SetTokenSource replaces the token supplier after construction; the session
// manager is built after the client, so wiring happens in two steps.
func (c *Client) SetTokenSource(source TokenSource) {
	c.tokens = source
}

// SetUnauthorizedHook replaces the 401 callback after construction.
func (c *Client) SetUnauthorizedHook(hook UnauthorizedHook) {
	c.unauthorized = hook
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(authorizationHeader, "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront api unreachable")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.unauthorized != nil {
			c.unauthorized(ctx)
		}
		return pkgerrors.New(pkgerrors.CodeUnauthorized, apiErrorMessage(resp.Body, "session no longer valid"))
	}
	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, apiErrorMessage(resp.Body, "resource not found"))
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return pkgerrors.New(pkgerrors.CodeValidation, apiErrorMessage(resp.Body, "request rejected"))
	}
	if resp.StatusCode >= 500 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("storefront api returned status %d", resp.StatusCode))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyLimit)).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding response body")
	}
	return nil
}

// apiErrorMessage pulls the server's message field when present so bad
// credentials surface a human-readable reason.
func apiErrorMessage(body io.Reader, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, responseBodyLimit)).Decode(&payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fallback
}
