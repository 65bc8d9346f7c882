// Package upbit is the signed, retrying HTTP client for the Upbit REST API.
package upbit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bobmcallan/upbit-mcp/internal/common"
)

const (
	// DefaultServerURL is the production Upbit endpoint.
	DefaultServerURL = "https://api.upbit.com"

	// APIBasePath is appended to the server URL for every endpoint.
	APIBasePath = "/v1"

	// DefaultTimeout bounds a single attempt, including reading the body.
	DefaultTimeout = 15 * time.Second
)

// maxResponseSize caps the response body to prevent OOM from unexpectedly large responses.
const maxResponseSize = 10 << 20 // 10MB

// Request describes one logical call. Query is encoded canonically; Body, when
// non-nil, is sent as JSON. When Credentials is set every attempt carries a
// freshly signed token over Body (or Query), so retries never reuse a nonce.
type Request struct {
	Method      string
	Path        string
	Query       Params
	Body        Params
	Headers     http.Header
	Credentials *Credentials
	Shape       Shape
}

// signed returns the params the token is computed over.
func (r Request) signed() Params {
	if r.Body != nil {
		return r.Body
	}
	return r.Query
}

// attemptHeaders returns req.Headers plus a fresh Authorization header when
// the request is private.
func (r Request) attemptHeaders() (http.Header, error) {
	if r.Credentials == nil {
		return r.Headers, nil
	}
	token, err := Sign(*r.Credentials, r.signed())
	if err != nil {
		return nil, err
	}
	headers := r.Headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("Authorization", BearerHeader(token))
	return headers, nil
}

// Client issues requests against a fixed base URL. It holds no per-call state
// and is safe for concurrent use; each Do call owns its own retry state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	policy     RetryPolicy
	logger     *common.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-attempt timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *common.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client bound to baseURL, e.g. "https://api.upbit.com/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		policy:  DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = common.NewSilentLogger()
	}
	return c
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req, retrying transient failures according to the retry policy.
// Failures are *TransportError, or *SchemaError when a 2xx payload does not
// match req.Shape.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + req.Path
	if q := req.Query.Encode(); q != "" {
		target += "?" + q
	}
	if _, err := url.ParseRequestURI(target); err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("invalid request url: %v", err), Err: err}
	}

	var body []byte
	if req.Body != nil {
		data, err := json.Marshal(req.Body.Compact())
		if err != nil {
			return nil, &TransportError{Message: fmt.Sprintf("failed to marshal request: %v", err), Err: err}
		}
		body = data
	}

	var (
		payload []byte
		last    *TransportError
		signErr error
		attempt int
	)

	operation := func() error {
		attempt++
		headers, hErr := req.attemptHeaders()
		if hErr != nil {
			signErr = hErr
			return backoff.Permanent(hErr)
		}
		data, err := c.send(ctx, method, target, body, headers, attempt)
		if err == nil {
			payload = data
			return nil
		}
		last = err
		if c.policy.retryable(method, err.Status, err.Err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, delay time.Duration) {
		status := 0
		if last != nil {
			status = last.Status
		}
		c.logger.Warn().
			Str("method", method).
			Str("path", req.Path).
			Int("attempt", attempt).
			Int("status", status).
			Int64("delay_ms", delay.Milliseconds()).
			Str("error", err.Error()).
			Msg("upbit request failed, retrying")
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(c.policy.newBackOff(), ctx), notify)
	if signErr != nil {
		return nil, fmt.Errorf("failed to sign request: %w", signErr)
	}
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			// the context ended between attempts
			te = &TransportError{Message: err.Error(), Err: err}
			if last != nil {
				te.Status = last.Status
				te.Name = last.Name
				te.Body = last.Body
			}
		}
		c.logger.Error().
			Str("method", method).
			Str("path", req.Path).
			Int("attempts", attempt).
			Int("status", te.Status).
			Str("error", te.Error()).
			Msg("upbit request failed")
		return nil, te
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("null")
	}
	if err := req.Shape.Validate(payload); err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			se.Path = req.Path
		}
		return nil, err
	}

	return json.RawMessage(payload), nil
}

// send performs a single attempt. Any non-2xx status is returned as an error.
func (c *Client) send(ctx context.Context, method, target string, body []byte, headers http.Header, attempt int) ([]byte, *TransportError) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("failed to build request: %v", err), Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for key, vals := range headers {
		for _, v := range vals {
			httpReq.Header.Set(key, v)
		}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", httpReq.URL.Path).
		Int("attempt", attempt).
		Bool("signed", httpReq.Header.Get("Authorization") != "").
		Msg("upbit request")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("failed to read response: %v", err),
			Err:     err,
		}
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int64("duration_ms", duration.Milliseconds()).
		Int("bytes", len(data)).
		Msg("upbit response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, data)
	}
	return data, nil
}
