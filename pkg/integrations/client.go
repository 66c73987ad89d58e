package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/httputil"
	"github.com/matzehuels/newarch/pkg/observability"
)

const (
	// DefaultTimeout bounds a single attempt, including reading the body.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "newarch/1.0"

	// maxBodySize caps how much of a response body is decoded.
	maxBodySize = 10 << 20
)

// Client provides the bounded HTTP fetch policy shared by every data source.
// Each attempt is raced against a fixed timeout and every failed attempt is
// retried according to an [httputil.Policy]. Failures are returned as an
// [*apperrors.Error] with code TIMEOUT, NETWORK_ERROR, RATE_LIMITED,
// NOT_FOUND or PARSE_ERROR.
//
// A Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	headers   map[string]string
	userAgent string
	timeout   time.Duration
	policy    httputil.Policy
	breakers  *breakers
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPolicy sets the retry policy.
func WithPolicy(p httputil.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithBreaker enables per-host circuit breakers that trip after threshold
// consecutive transport failures. A threshold of 0 disables breaking.
func WithBreaker(threshold int) Option {
	return func(c *Client) {
		if threshold > 0 {
			c.breakers = newBreakers(threshold)
		} else {
			c.breakers = nil
		}
	}
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string, opts ...Option) *Client {
	c := &Client{
		http:      NewHTTPClient(),
		headers:   headers,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		policy:    httputil.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the retry policy.
func (c *Client) Policy() httputil.Policy { return c.policy }

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers and handles retries automatically.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	return c.GetWithHeaders(ctx, rawURL, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
//
// Every failed attempt that [apperrors.IsRetryable] accepts is retried under
// the client's policy: transport errors, timeouts, non-2xx responses and
// bodies that do not decode. A canceled caller context stops immediately.
func (c *Client) GetWithHeaders(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	err := c.policy.Do(ctx, func(int) error {
		err := c.attempt(ctx, rawURL, headers, v)
		if err != nil && ctx.Err() == nil && apperrors.IsRetryable(err) {
			return &httputil.RetryableError{Err: err}
		}
		return err
	})
	var retryable *httputil.RetryableError
	if errors.As(err, &retryable) {
		return retryable.Err
	}
	return err
}

// attempt performs exactly one request under the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	host, path := splitURL(rawURL)

	var br breaker
	if c.breakers != nil {
		br = c.breakers.get(host)
		if !br.Ready() {
			return apperrors.New(apperrors.ErrCodeNetwork, "circuit breaker open for %s", host)
		}
	}

	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, rawURL, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		err = transportError(ctx, actx, err, rawURL, c.timeout)
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		if ctx.Err() == nil {
			record(br, true)
		}
		return err
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		record(br, hostFault(resp.StatusCode))
		return err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		record(br, true)
		return transportError(ctx, actx, err, rawURL, c.timeout)
	}
	record(br, false)
	return decode(body, rawURL, v)
}

// decode unmarshals body into v. A literal null is rejected because it
// leaves v without any of the expected fields.
func decode(body []byte, rawURL string, v any) error {
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return apperrors.New(apperrors.ErrCodeParse, "decode %s: null body", rawURL)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeParse, err, "decode %s", rawURL)
	}
	return nil
}

// transportError classifies a failed round trip or body read. A caller
// cancellation is returned as-is.
func transportError(ctx, actx context.Context, err error, rawURL string, timeout time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(actx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, "GET %s exceeded %s", rawURL, timeout)
	}
	return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "GET %s", rawURL)
}

func checkStatus(code int, rawURL string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeNotFound, "GET %s: status %d", rawURL, code)
	case code == http.StatusTooManyRequests:
		return apperrors.New(apperrors.ErrCodeRateLimited, "GET %s: status %d", rawURL, code)
	default:
		return apperrors.New(apperrors.ErrCodeNetwork, "GET %s: status %d", rawURL, code)
	}
}

// hostFault reports whether a status counts against the host's breaker.
// Client errors such as 404 say nothing about the host's health.
func hostFault(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

// record reports an attempt outcome to br, if breaking is enabled.
func record(br breaker, fault bool) {
	if br == nil {
		return
	}
	if fault {
		br.Fail()
	} else {
		br.Success()
	}
}

func splitURL(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
