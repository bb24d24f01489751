// Package api is the request pipeline shared by every call stockroom makes to
// the inventory backend. Cross-cutting policy (credential injection, forced
// logout on 401, request IDs, logging) is expressed as ordered hooks so that
// callers never repeat it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/stockroom/internal/errors"
	"github.com/felixgeelhaar/stockroom/internal/log"
)

const (
	// Prefix is appended to the configured API URL.
	Prefix = "/api"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second
)

// RequestHook runs before a request is sent. Returning an error aborts the
// request with that error.
type RequestHook func(req *http.Request) error

// ResponseHook runs after every response or failure. It receives the error
// the pipeline has so far (a *TransportError or *HTTPError) and returns the
// pair passed to the next hook.
type ResponseHook func(ctx context.Context, resp *http.Response, err error) (*http.Response, error)

// Client is the inventory API client
type Client struct {
	baseURL       string
	httpClient    *http.Client
	requestHooks  []RequestHook
	responseHooks []ResponseHook
	logger        *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is
// overwritten by WithTimeout or DefaultTimeout when zero.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRequestHook appends hooks to the outbound chain.
func WithRequestHook(hooks ...RequestHook) Option {
	return func(c *Client) {
		c.requestHooks = append(c.requestHooks, hooks...)
	}
}

// WithResponseHook appends hooks to the inbound chain.
func WithResponseHook(hooks ...ResponseHook) Option {
	return func(c *Client) {
		c.responseHooks = append(c.responseHooks, hooks...)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client rooted at apiURL + Prefix.
func New(apiURL string, opts ...Option) (*Client, error) {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		return nil, errors.NewConfigInvalidError("api url is empty", nil)
	}

	c := &Client{
		baseURL:    apiURL + Prefix,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = log.DefaultLogger()
	}
	c.logger = c.logger.WithComponent("api")

	return c, nil
}

// BaseURL returns the API root every path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Do sends a request with an optional JSON body and decodes a JSON response
// into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeHTTPDecode, fmt.Sprintf("failed to decode %s %s response", method, req.URL.Path), err)
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send runs the outbound hooks, performs the round trip, converts the
// outcome into the error taxonomy and runs the inbound hooks. A non-nil
// error is always returned with a nil response.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	for _, hook := range c.requestHooks {
		if err := hook(req); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		resp, err = nil, classifyTransport(req, err)
	} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = newHTTPError(req, resp)
	}

	for _, hook := range c.responseHooks {
		resp, err = hook(req.Context(), resp, err)
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func newHTTPError(req *http.Request, resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return &HTTPError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
}

func classifyTransport(req *http.Request, err error) *TransportError {
	timeout := stderrors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}

	return &TransportError{
		Method:  req.Method,
		URL:     req.URL.String(),
		Timeout: timeout,
		Err:     err,
	}
}
