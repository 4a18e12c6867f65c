package pbi

import (
	"context"
	"time"
)

// Defaults applied by beacon.New when the corresponding Config field is empty.
const (
	// DefaultBaseURL is the Power BI REST API base URL.
	DefaultBaseURL = "https://api.powerbi.com/v1.0/myorg"

	// DefaultAuthority is the identity provider used for interactive sign-in.
	DefaultAuthority = "https://login.microsoftonline.com"

	// DefaultTenantID targets any organizational tenant.
	DefaultTenantID = "organizations"

	// DefaultClientID is the well-known Azure CLI public client, usable for
	// the device-code flow without app registration.
	DefaultClientID = "04b07795-8ddb-461a-bbee-02f9e1bf7b46"

	// DefaultScope grants delegated access to the Power BI API.
	DefaultScope = "https://analysis.windows.net/powerbi/api/.default"
)

// Logger is the structured log sink used throughout the client.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config configures a Service built by beacon.New.
type Config struct {
	// BaseURL is the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// ProxyURL routes all API requests through the given HTTP proxy.
	ProxyURL string

	// AccessToken is a previously issued bearer token. If it turns out to
	// be malformed or expired, the client discards it and runs the
	// interactive flow exactly once before giving up.
	AccessToken string

	// Authority, TenantID, ClientID, and Scopes configure the interactive
	// device-code flow used when no valid token is available.
	Authority string
	TenantID  string
	ClientID  string
	Scopes    []string

	// ClientSecret switches authentication to the client-credentials grant
	// (service principal) instead of the interactive flow.
	ClientSecret string

	// HTTPTimeout bounds each individual request attempt.
	HTTPTimeout time.Duration

	// MaxRetries caps the number of attempts for a timed-out request.
	MaxRetries int

	// BackoffUnit scales the exponential backoff between retries. Defaults
	// to one second; the n-th retry sleeps 2^n units.
	BackoffUnit time.Duration

	// Debug enables verbose HTTP request/response logging.
	Debug bool

	// Logger overrides the default rotating-file logger.
	Logger Logger

	// LogDir overrides the directory of the default rotating-file logger.
	LogDir string

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// Service is the top-level view of the platform for an authenticated user.
// Exactly one underlying HTTP client exists per Service; every entity it
// produces shares that client by reference, so a re-authentication
// triggered anywhere is visible everywhere.
type Service interface {
	// GetWorkspaces fetches one page of workspaces the user can access and
	// replaces the cached workspace set.
	GetWorkspaces(ctx context.Context, opts *ListOptions) (WorkspaceSet, error)

	// GetWorkspace fetches a single workspace by ID.
	GetWorkspace(ctx context.Context, workspaceID string) (*Workspace, error)

	// GetApps fetches the apps visible to the user and replaces the cached
	// app set.
	GetApps(ctx context.Context) (AppSet, error)

	// Workspaces returns the workspace set from the last GetWorkspaces call.
	Workspaces() WorkspaceSet

	// Apps returns the app set from the last GetApps call.
	Apps() AppSet

	// User returns the identifier claim of the authenticated user, or the
	// empty string before the first authenticated request.
	User() string

	// Token returns the current bearer token, authenticating if needed.
	Token(ctx context.Context) (string, error)
}
