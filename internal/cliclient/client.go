// Package cliclient provides a lightweight HTTP client for the permissions API.
package cliclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/nebari-dev/mlperm/internal/endpoints"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// Client is a lightweight HTTP client for the permissions API.
type Client struct {
	baseURL    string
	username   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth authenticates every request with a username and access token.
func WithBasicAuth(username, token string) Option {
	return func(c *Client) {
		c.username = username
		c.token = token
	}
}

// WithHTTPClient uses a copy of hc for requests. A nil hc is ignored. The
// copy gets a cookie jar if hc has none; hc itself is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.httpClient = &cp
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new API client for the server at baseURL. baseURL may carry
// a path prefix such as https://host/mlflow.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: endpoints.RemoveTrailingSlashes(baseURL),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		// cookiejar.New only fails on invalid options.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		c.httpClient.Jar = jar
	}
	return c
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Username returns the username used for basic auth, if any.
func (c *Client) Username() string {
	return c.username
}

// Request describes a single API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body is JSON-encoded unless it is an io.Reader.
	Body interface{}
}

// Response carries the parts of an HTTP response callers may need after Do
// has consumed the body.
type Response struct {
	StatusCode int
	Header     http.Header
	// JSON reports whether the body was JSON and decoded into the result.
	JSON bool
	// Text holds the raw body.
	Text string
}

// Do performs req. On a 2xx response with a JSON content type the body is
// decoded into result (when non-nil); otherwise the raw body is available in
// Response.Text. Any other status yields an *APIError.
func (c *Client) Do(ctx context.Context, req Request, result interface{}) (*Response, error) {
	var bodyReader io.Reader
	switch b := req.Body.(type) {
	case nil:
	case io.Reader:
		bodyReader = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if c.token != "" {
		httpReq.SetBasicAuth(c.username, c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ctxErr)
		}
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ctxErr)
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", httpReq.Header.Get("X-Request-ID"),
		"duration", time.Since(start))

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Text:       string(respBody),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		out.JSON = true
		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return out, fmt.Errorf("failed to decode response: %w", err)
			}
		}
	}

	return out, nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, result interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, result)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body, result interface{}) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, result)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// APIError represents a non-2xx API response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP transport error %d: %s", e.StatusCode, e.Body)
}

func statusIs(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// IsNotFound returns true if the error is a 404 Not Found error.
func IsNotFound(err error) bool {
	return statusIs(err, http.StatusNotFound)
}

// IsForbidden returns true if the error is a 403 Forbidden error.
func IsForbidden(err error) bool {
	return statusIs(err, http.StatusForbidden)
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error.
func IsUnauthorized(err error) bool {
	return statusIs(err, http.StatusUnauthorized)
}

// IsCanceled reports whether err stems from a canceled context. Callers treat
// it as "no result" rather than a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
