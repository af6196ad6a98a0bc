package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

// ResponseError is returned for any non-2xx response. Body holds the raw
// response body verbatim.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	// Try to parse error message from JSON response
	var errorResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal([]byte(e.Body), &errorResp); jsonErr == nil {
		if errorResp.Error != "" {
			return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, errorResp.Error)
		}
		if errorResp.Message != "" {
			return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, errorResp.Message)
		}
	}

	// If no JSON error message, return status code and raw body (truncated if too long)
	bodyStr := e.Body
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, bodyStr)
}

// BaseClient provides common HTTP client functionality
type BaseClient struct {
	baseURL string
	client  *retryablehttp.Client
	base    http.RoundTripper
	headers map[string]string
	token   string
	logger  hclog.Logger
}

// NewBaseClient creates a new base HTTP client
// Parameters:
//   - baseURL: The base URL for API requests (trailing slash will be removed)
//   - timeout: HTTP client timeout duration
//
// GET requests are retried on connection errors and 5xx responses; other
// methods are sent exactly once.
func NewBaseClient(baseURL string, timeout time.Duration) *BaseClient {
	// Normalize baseURL by removing trailing slash for consistency
	baseURL = strings.TrimSuffix(baseURL, "/")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil // Disable default logging
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = timeout

	c := &BaseClient{
		baseURL: baseURL,
		client:  retryClient,
		base:    retryClient.HTTPClient.Transport,
		headers: make(map[string]string),
		logger:  hclog.NewNullLogger(),
	}

	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			c.logger.Debug("retrying request", "method", req.Method, "url", c.redactToken(req.URL.String()), "attempt", attempt)
		}
	}

	return c
}

// SetLogger sets the logger used for request tracing
func (c *BaseClient) SetLogger(logger hclog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetHeader sets a custom header that will be included in all requests
func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBearerToken authenticates every request with the given token. An empty
// token removes authentication.
func (c *BaseClient) SetBearerToken(token string) {
	c.token = token
	if token == "" {
		c.client.HTTPClient.Transport = c.base
		return
	}
	c.client.HTTPClient.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   c.base,
	}
}

// HasToken reports whether a bearer token is configured
func (c *BaseClient) HasToken() bool {
	return c.token != ""
}

// redactToken redacts the access token from strings for logging
func (c *BaseClient) redactToken(s string) string {
	if c.token != "" {
		return strings.ReplaceAll(s, c.token, "[REDACTED]")
	}
	return s
}

// DoJSON performs an HTTP request with JSON request/response bodies
// Parameters:
//   - method: HTTP method (GET, POST, PUT, DELETE, etc.)
//   - path: API path (will be appended to baseURL)
//   - reqBody: Request body (will be JSON marshaled), can be nil for GET requests
//   - respBody: Response body (will be JSON unmarshaled into), can be nil if response not needed
//
// Returns *ResponseError if the response status is not 2xx
func (c *BaseClient) DoJSON(method, path string, reqBody, respBody interface{}) error {
	return c.DoJSONWithContext(context.Background(), method, path, reqBody, respBody)
}

// DoJSONWithContext performs an HTTP request with context and JSON request/response bodies
// Same as DoJSON but accepts a context for cancellation and timeout control
func (c *BaseClient) DoJSONWithContext(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	// Ensure path starts with / for proper URL construction
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path

	// Prepare request body if provided
	var payload []byte
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = jsonData
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload == nil {
		req.Body = http.NoBody
		req.ContentLength = 0
	}

	// Set Content-Type header for JSON requests
	if reqBody != nil || method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	// Set all custom headers from headers map
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	c.logger.Trace("sending request", "method", method, "url", c.redactToken(fullURL))

	resp, err := c.send(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Check if status code is in 2xx range (success)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("request returned error status", "method", method, "path", path, "status", resp.StatusCode)
		return &ResponseError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	// Unmarshal response body if respBody is provided
	if respBody != nil && len(body) > 0 {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}

	return nil
}

// send retries idempotent reads only; a side-effecting request is never replayed.
func (c *BaseClient) send(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return c.client.HTTPClient.Do(req)
	}

	rreq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	return c.client.Do(rreq)
}

// GetBaseURL returns the base URL of the client
func (c *BaseClient) GetBaseURL() string {
	return c.baseURL
}
