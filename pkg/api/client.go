package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/aetherengine/aether-cli/pkg/httpclient"
)

// DefaultBaseURL is the hosted control plane
const DefaultBaseURL = "https://aetherngine.com"

// DefaultTimeout bounds every control-plane request
const DefaultTimeout = 30 * time.Second

// Client talks to the control-plane REST API
type Client struct {
	*httpclient.BaseClient
	logger hclog.Logger
}

// NewClient creates a control-plane client. An empty token yields a client
// that can only call unauthenticated endpoints.
func NewClient(baseURL, token string, logger hclog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	c := &Client{
		BaseClient: httpclient.NewBaseClient(baseURL, DefaultTimeout),
		logger:     logger,
	}
	c.SetLogger(logger.Named("http"))
	c.SetHeader("User-Agent", "aether-cli")
	c.SetBearerToken(token)
	return c
}

// IsAuthenticated reports whether the client carries a token
func (c *Client) IsAuthenticated() bool {
	return c.HasToken()
}

func (c *Client) call(ctx context.Context, op, method, path string, req, resp interface{}) error {
	if !c.HasToken() {
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}
	if err := c.DoJSONWithContext(ctx, method, path, req, resp); err != nil {
		return wrapError(op, err)
	}
	return nil
}

// Health checks that the control plane is reachable
func (c *Client) Health(ctx context.Context) error {
	if err := c.DoJSONWithContext(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return wrapError("health check", err)
	}
	return nil
}

// Register creates an account and returns its token
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.DoJSONWithContext(ctx, http.MethodPost, "/api/v1/auth/register", credentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, wrapError("register", err)
	}
	return &resp, nil
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.DoJSONWithContext(ctx, http.MethodPost, "/api/v1/auth/login", credentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, wrapError("login", err)
	}
	return &resp, nil
}

// Me returns the current user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "get current user", http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListApplications returns all applications of the account
func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := c.call(ctx, "list applications", http.MethodGet, "/api/v1/apps", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// CreateApplication creates a new application
func (c *Client) CreateApplication(ctx context.Context, req CreateAppRequest) (*Application, error) {
	var app Application
	if err := c.call(ctx, "create application", http.MethodPost, "/api/v1/apps", req, &app); err != nil {
		return nil, err
	}
	c.logger.Debug("application created", "app", app.Name, "id", app.ID)
	return &app, nil
}

// GetApplication fetches one application by ID
func (c *Client) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	var app Application
	if err := c.call(ctx, "get application", http.MethodGet, "/api/v1/apps/"+id.String(), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// DeleteApplication removes an application
func (c *Client) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	return c.call(ctx, "delete application", http.MethodDelete, "/api/v1/apps/"+id.String(), nil, nil)
}

// CreateDeployment registers a new deployment version
func (c *Client) CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*Deployment, error) {
	var dep Deployment
	path := fmt.Sprintf("/api/v1/apps/%s/deployments", req.AppID)
	if err := c.call(ctx, "create deployment", http.MethodPost, path, req, &dep); err != nil {
		return nil, err
	}
	return &dep, nil
}

// ListDeployments returns the deployments of an application, newest first
func (c *Client) ListDeployments(ctx context.Context, appID uuid.UUID) ([]Deployment, error) {
	var deps []Deployment
	path := fmt.Sprintf("/api/v1/apps/%s/deployments", appID)
	if err := c.call(ctx, "list deployments", http.MethodGet, path, nil, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}

// Monitor returns the control plane's status lines for an application
func (c *Client) Monitor(ctx context.Context, appID uuid.UUID) ([]string, error) {
	var lines []string
	path := fmt.Sprintf("/api/v1/apps/%s/monitor", appID)
	if err := c.call(ctx, "monitor application", http.MethodGet, path, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Logs fetches up to the last `lines` log lines. Zero leaves the limit to the server.
func (c *Client) Logs(ctx context.Context, appID uuid.UUID, lines int) ([]string, error) {
	path := fmt.Sprintf("/api/v1/apps/%s/logs", appID)
	if lines > 0 {
		q := url.Values{}
		q.Set("lines", strconv.Itoa(lines))
		path += "?" + q.Encode()
	}

	var resp logsResponse
	if err := c.call(ctx, "fetch logs", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// AddDomain attaches a custom domain
func (c *Client) AddDomain(ctx context.Context, appID uuid.UUID, domain string) (*CustomDomain, error) {
	var d CustomDomain
	path := fmt.Sprintf("/api/v1/apps/%s/domains", appID)
	if err := c.call(ctx, "add domain", http.MethodPost, path, addDomainRequest{Domain: domain}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDomains returns the custom domains of an application
func (c *Client) ListDomains(ctx context.Context, appID uuid.UUID) ([]CustomDomain, error) {
	var domains []CustomDomain
	path := fmt.Sprintf("/api/v1/apps/%s/domains", appID)
	if err := c.call(ctx, "list domains", http.MethodGet, path, nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// DeleteDomain detaches a custom domain
func (c *Client) DeleteDomain(ctx context.Context, appID, domainID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/apps/%s/domains/%s", appID, domainID)
	return c.call(ctx, "delete domain", http.MethodDelete, path, nil, nil)
}

// VerifyDomain asks the control plane to re-check DNS for a domain
func (c *Client) VerifyDomain(ctx context.Context, appID, domainID uuid.UUID) (*CustomDomain, error) {
	var d CustomDomain
	path := fmt.Sprintf("/api/v1/apps/%s/domains/%s/verify", appID, domainID)
	if err := c.call(ctx, "verify domain", http.MethodPost, path, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PresignedUploadURL requests a write credential for one artifact
func (c *Client) PresignedUploadURL(ctx context.Context, appID uuid.UUID, version, filename string) (*PresignedURL, error) {
	var resp PresignedURL
	req := presignRequest{AppID: appID, Version: version, Filename: filename}
	if err := c.call(ctx, "request upload url", http.MethodPost, "/api/v1/uploads/presigned-url", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
