// Package client implements the pbi.Service on top of the resilient HTTP
// layer: it materializes workspaces and apps from the platform's
// collection endpoints and hands every entity the one shared client.
package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/apibeacon/beacon/internal/auth"
	"github.com/apibeacon/beacon/internal/http"
	"github.com/apibeacon/beacon/pkg/pbi"
)

// Service implements pbi.Service.
type Service struct {
	api          pbi.Doer
	tokenManager auth.TokenManager
	logger       pbi.Logger
	workspaces   pbi.WorkspaceSet
	apps         pbi.AppSet
}

// NewService wires a Service around the shared HTTP client. The same
// client instance is injected into every workspace the service produces.
func NewService(httpClient *http.Client, tokenManager auth.TokenManager, logger pbi.Logger) *Service {
	return &Service{
		api:          &doerAdapter{httpClient: httpClient},
		tokenManager: tokenManager,
		logger:       logger,
		workspaces:   pbi.NewSet[string, *pbi.Workspace](),
		apps:         pbi.NewSet[string, *pbi.App](),
	}
}

// GetWorkspaces implements pbi.Service.GetWorkspaces.
func (s *Service) GetWorkspaces(ctx context.Context, opts *pbi.ListOptions) (pbi.WorkspaceSet, error) {
	var query url.Values
	if opts != nil {
		query = opts.ToValues()
	}

	body, err := s.api.Get(ctx, "groups", query)
	if err != nil {
		return nil, fmt.Errorf("getting workspaces: %w", err)
	}

	value, err := pbi.DecodeCollection("groups", body)
	if err != nil {
		return nil, err
	}

	workspaces := pbi.NewSet[string, *pbi.Workspace]()

	for _, raw := range value {
		workspace, err := pbi.NewWorkspace(s.api, raw)
		if err != nil {
			return nil, err
		}

		workspaces.Add(workspace)
	}

	s.workspaces = workspaces

	return workspaces, nil
}

// GetWorkspace implements pbi.Service.GetWorkspace.
func (s *Service) GetWorkspace(ctx context.Context, workspaceID string) (*pbi.Workspace, error) {
	body, err := s.api.Get(ctx, "groups/"+workspaceID, nil)
	if err != nil {
		return nil, fmt.Errorf("getting workspace %s: %w", workspaceID, err)
	}

	return pbi.NewWorkspace(s.api, body)
}

// GetApps implements pbi.Service.GetApps.
func (s *Service) GetApps(ctx context.Context) (pbi.AppSet, error) {
	body, err := s.api.Get(ctx, "apps", nil)
	if err != nil {
		return nil, fmt.Errorf("getting apps: %w", err)
	}

	value, err := pbi.DecodeCollection("apps", body)
	if err != nil {
		return nil, err
	}

	apps := pbi.NewSet[string, *pbi.App]()

	for _, raw := range value {
		app, err := pbi.NewApp(raw)
		if err != nil {
			return nil, err
		}

		apps.Add(app)
	}

	s.apps = apps

	return apps, nil
}

// Workspaces implements pbi.Service.Workspaces.
func (s *Service) Workspaces() pbi.WorkspaceSet {
	return s.workspaces
}

// Apps implements pbi.Service.Apps.
func (s *Service) Apps() pbi.AppSet {
	return s.apps
}

// User implements pbi.Service.User.
func (s *Service) User() string {
	return s.tokenManager.UserID()
}

// Token implements pbi.Service.Token.
func (s *Service) Token(ctx context.Context) (string, error) {
	token, err := s.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}

	return token, nil
}

// doerAdapter exposes the HTTP client through the narrow pbi.Doer surface
// entities hold.
type doerAdapter struct {
	httpClient *http.Client
}

func (a *doerAdapter) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := a.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (a *doerAdapter) Post(ctx context.Context, path string, body any) ([]byte, error) {
	resp, err := a.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

func (a *doerAdapter) Delete(ctx context.Context, path string) error {
	_, err := a.httpClient.Delete(ctx, path)

	return err
}
