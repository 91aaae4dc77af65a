package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/alpaca-client/internal/constants"
	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/time/rate"
)

// Request represents an HTTP request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents a classified 2xx HTTP response. Error responses are
// also returned alongside their error so callers can inspect the status.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is a REST client bound to one base URL and a fixed header set. It
// is immutable after NewClient returns and safe for concurrent use.
type Client struct {
	baseURL      string
	headers      http.Header
	timeout      time.Duration
	userAgent    string
	debug        bool
	logger       alpaca.Logger
	limiter      *rate.Limiter
	interceptors *alpaca.InterceptorChain
	httpClient   *retryablehttp.Client

	pendingHeaders map[string]string
	baseHTTP       *http.Client
}

// Option configures a Client under construction.
type Option func(*Client)

// WithHeader adds a default header sent on every request.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		c.pendingHeaders[name] = value
	}
}

// WithHeaders adds default headers sent on every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for name, value := range headers {
			c.pendingHeaders[name] = value
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger alpaca.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRateLimit paces requests to at most requestsPerSecond. Requests wait
// for a token; nothing is retried.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		}
	}
}

// WithInterceptors sets the request and response interceptor chain.
func WithInterceptors(chain *alpaca.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is
// overwritten by the configured timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.baseHTTP = httpClient
	}
}

// NewClient builds a client for baseURL. Header names and values are
// validated here; an invalid one fails with alpaca.ErrConfig.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: %w", alpaca.ErrConfig, alpaca.ErrBaseURLRequired)
	}

	client := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		timeout:        constants.DefaultHTTPTimeout,
		pendingHeaders: make(map[string]string),
	}

	for _, opt := range opts {
		opt(client)
	}

	headers, err := buildHeaders(client.pendingHeaders, client.userAgent)
	if err != nil {
		return nil, err
	}

	client.headers = headers
	client.pendingHeaders = nil
	client.httpClient = newTransport(client.baseHTTP, client.timeout)
	client.baseHTTP = nil

	return client, nil
}

// newTransport builds a retryablehttp client that never retries. Retry
// policy belongs to the caller.
func newTransport(base *http.Client, timeout time.Duration) *retryablehttp.Client {
	transport := retryablehttp.NewClient()
	transport.RetryMax = 0
	transport.Logger = nil
	transport.CheckRetry = func(context.Context, *http.Response, error) (bool, error) {
		return false, nil
	}
	transport.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if base != nil {
		clone := *base
		transport.HTTPClient = &clone
	}

	transport.HTTPClient.Timeout = timeout

	return transport
}

func buildHeaders(pending map[string]string, userAgent string) (http.Header, error) {
	headers := make(http.Header, len(pending)+1)

	for name, value := range pending {
		err := validateHeader(name, value)
		if err != nil {
			return nil, err
		}

		headers.Set(name, value)
	}

	if userAgent != "" {
		err := validateHeader("User-Agent", userAgent)
		if err != nil {
			return nil, err
		}

		headers.Set("User-Agent", userAgent)
	}

	return headers, nil
}

// validateHeader rejects names that are not RFC 7230 tokens and values with
// control bytes or bytes outside printable ASCII.
func validateHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: invalid header name %q", alpaca.ErrConfig, name)
	}

	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: invalid value for header %s", alpaca.ErrConfig, name)
	}

	for i := 0; i < len(value); i++ {
		if value[i] >= 0x80 {
			return fmt.Errorf("%w: non-ASCII value for header %s", alpaca.ErrConfig, name)
		}
	}

	return nil
}

// BaseURL returns the base URL requests are issued against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Do issues req and classifies the response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.buildURL(req.Path, req.Query)

	var body []byte

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding request body for %s %s: %w", alpaca.ErrConfig, req.Method, req.Path, err)
		}

		body = encoded
	}

	intercepted := &alpaca.InterceptedRequest{
		Method:  req.Method,
		Path:    req.Path,
		Headers: make(http.Header),
	}

	for name, value := range req.Headers {
		intercepted.Headers.Set(name, value)
	}

	if !c.interceptors.Empty() {
		err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, err
		}
	}

	httpReq, err := c.newHTTPRequest(ctx, req.Method, fullURL, body, intercepted.Headers)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		err = c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: waiting for rate limiter: %w", alpaca.ErrTransport, err)
		}
	}

	c.logDebug("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"url":    fullURL,
	})

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil && httpResp.Body != nil {
			_ = httpResp.Body.Close()
		}

		err = fmt.Errorf("%w: %s %s: %w", alpaca.ErrTransport, req.Method, fullURL, err)

		c.logDebug("HTTP Request failed", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
			"error":  err.Error(),
		})

		return nil, c.afterResponse(ctx, intercepted, nil, err)
	}

	resp, err := c.classify(httpResp)

	if c.debug {
		fields := map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		}
		if resp != nil {
			fields["status"] = resp.StatusCode
			fields["bytes"] = len(resp.Body)
		}

		c.logDebug("HTTP Response", fields)
	}

	return resp, c.afterResponse(ctx, intercepted, resp, err)
}

// afterResponse runs the response interceptors, including for requests that
// never got a response. The call's own error wins over an interceptor's.
func (c *Client) afterResponse(ctx context.Context, req *alpaca.InterceptedRequest, resp *Response, err error) error {
	if c.interceptors.Empty() {
		return err
	}

	view := &alpaca.InterceptedResponse{Error: err}
	if resp != nil {
		view.StatusCode = resp.StatusCode
		view.Headers = resp.Headers
		view.Body = resp.Body
	}

	interceptErr := c.interceptors.ExecuteResponseInterceptors(ctx, req, view)
	if err != nil {
		return err
	}

	return interceptErr
}

func (c *Client) buildURL(path string, query url.Values) string {
	fullURL := c.baseURL + path

	if len(query) == 0 {
		return fullURL
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return fullURL + separator + query.Encode()
}

func (c *Client) newHTTPRequest(ctx context.Context, method, fullURL string, body []byte, extra http.Header) (*retryablehttp.Request, error) {
	var payload interface{}
	if body != nil {
		payload = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", alpaca.ErrTransport, err)
	}

	for name, values := range c.headers {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	for name, values := range extra {
		httpReq.Header.Del(name)

		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	httpReq.Header.Set("Accept", "application/json")

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

// classify maps a raw response onto the error taxonomy: 429 becomes a
// RateLimitError, any other non-2xx status an APIError carrying the body.
func (c *Client) classify(httpResp *http.Response) (*Response, error) {
	defer func() { _ = httpResp.Body.Close() }()

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		retryAfter := ParseRetryAfter(httpResp.Header.Get(constants.HeaderRetryAfter))

		c.logWarn("Rate limited", map[string]interface{}{
			"retry_after_seconds": retryAfter,
		})

		return resp, &alpaca.RateLimitError{RetryAfterSeconds: retryAfter}
	}

	body, readErr := io.ReadAll(httpResp.Body)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		if readErr != nil {
			body = nil
		}

		resp.Body = body

		return resp, &alpaca.APIError{StatusCode: httpResp.StatusCode, Body: string(body)}
	}

	if readErr != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", alpaca.ErrTransport, readErr)
	}

	resp.Body = body

	return resp, nil
}

// ParseRetryAfter parses a retry-after header as whole seconds, falling back
// to alpaca.DefaultRetryAfterSeconds.
func ParseRetryAfter(value string) uint64 {
	seconds, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return alpaca.DefaultRetryAfterSeconds
	}

	return seconds
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) logWarn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request. The response body is not parsed.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
