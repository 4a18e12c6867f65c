// Package http implements the resilient authenticated HTTP layer: bearer
// token injection, uniform failure classification, and retry with
// exponential backoff for timed-out attempts.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	stdhttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apibeacon/beacon/internal/constants"
	"github.com/apibeacon/beacon/pkg/pbi"
)

// TokenManager supplies the bearer token attached to every request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
}

// Request describes one API call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Response is the raw result of a successful (2xx) API call.
type Response struct {
	StatusCode int
	Headers    stdhttp.Header
	Body       []byte
}

// Client performs authenticated requests against a single base URL. One
// instance is shared by the whole entity graph; it is safe to construct
// once and pass by reference everywhere.
type Client struct {
	baseURL      string
	httpClient   *stdhttp.Client
	tokenManager TokenManager
	logger       pbi.Logger
	debug        bool
	userAgent    string
	maxRetries   int
	timeout      time.Duration
	backoffUnit  time.Duration
	sleep        func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured log sink.
func WithLogger(logger pbi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables verbose request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the maximum number of attempts for a timed-out
// request and the unit scaling the exponential backoff between attempts.
func WithRetryConfig(maxRetries int, backoffUnit time.Duration) Option {
	return func(c *Client) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}

		if backoffUnit > 0 {
			c.backoffUnit = backoffUnit
		}
	}
}

// WithTimeout bounds each individual request attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithProxy routes all requests through the given HTTP proxy.
func WithProxy(proxyURL *url.URL) Option {
	return func(c *Client) {
		c.httpClient.Transport = &stdhttp.Transport{Proxy: stdhttp.ProxyURL(proxyURL)}
	}
}

// WithSleepFunc overrides the sleep between retries. Tests use this to
// observe backoff durations without waiting them out.
func WithSleepFunc(sleep func(time.Duration)) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a client for the given base URL. tokenManager may be
// nil, in which case requests are sent unauthenticated.
func NewClient(baseURL string, tokenManager TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &stdhttp.Client{},
		tokenManager: tokenManager,
		userAgent:    "beacon-go",
		maxRetries:   constants.DefaultRetryMax,
		timeout:      constants.DefaultRequestTimeout,
		backoffUnit:  constants.DefaultBackoffUnit,
		sleep:        time.Sleep,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes the request, retrying timed-out attempts with exponential
// backoff (2^attempt backoff units). Classified HTTP failures and
// transport-fatal errors are returned immediately without retrying. On a
// classified failure the raw response is returned alongside the error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var payload []byte

	if req.Body != nil {
		var err error

		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	requestID := uuid.NewString()

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		resp, err := c.attempt(ctx, req, fullURL, payload, requestID)
		if err != nil {
			if isTimeout(err) && ctx.Err() == nil {
				c.logError("request timed out", map[string]interface{}{
					"method":      req.Method,
					"url":         fullURL,
					"request_id":  requestID,
					"attempt":     attempt + 1,
					"max_retries": c.maxRetries,
					"error":       err.Error(),
				})
				c.sleep(c.backoffUnit << attempt)

				continue
			}

			apiErr := &pbi.APIError{
				Kind:    pbi.ErrorKindGeneric,
				Message: "request error",
				URL:     fullURL,
				Err:     err,
			}
			c.logError("request error", map[string]interface{}{
				"method":     req.Method,
				"url":        fullURL,
				"request_id": requestID,
				"error":      err.Error(),
			})

			return nil, apiErr
		}

		c.logInfo("API "+req.Method+": response received", map[string]interface{}{
			"url":        fullURL,
			"request_id": requestID,
			"status":     resp.StatusCode,
		})

		switch resp.StatusCode {
		case stdhttp.StatusOK, stdhttp.StatusCreated, stdhttp.StatusAccepted:
			return resp, nil
		}

		apiErr := pbi.NewStatusError(resp.StatusCode, fullURL, string(resp.Body))
		c.logError(apiErr.Message, map[string]interface{}{
			"url":        fullURL,
			"request_id": requestID,
			"status":     resp.StatusCode,
			"body":       string(resp.Body),
		})

		return resp, apiErr
	}

	return nil, fmt.Errorf("%w: %s %s", pbi.ErrMaxRetriesExceeded, req.Method, fullURL)
}

// attempt performs a single round trip with its own timeout.
func (c *Client) attempt(ctx context.Context, req *Request, fullURL string, payload []byte, requestID string) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := stdhttp.NewRequestWithContext(attemptCtx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-Id", requestID)

	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug {
		c.logDebug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        fullURL,
			"request_id": requestID,
			"body":       string(payload),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug {
		c.logDebug("HTTP Response", map[string]interface{}{
			"url":        fullURL,
			"request_id": requestID,
			"status":     httpResp.StatusCode,
			"body":       string(respBody),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: stdhttp.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with an optional JSON payload.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: stdhttp.MethodPost, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: stdhttp.MethodDelete, Path: path})
}

// isTimeout reports whether the attempt failed because it timed out, the
// only transport failure that is retried.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) logInfo(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, fields)
	}
}

func (c *Client) logError(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Error(msg, fields)
	}
}
