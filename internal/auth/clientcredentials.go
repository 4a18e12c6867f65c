package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/apibeacon/beacon/internal/constants"
)

// ClientCredentialsProvider implements the OAuth2 client-credentials grant
// for service principals, as a non-interactive alternative to the
// device-code flow.
type ClientCredentialsProvider struct {
	Authority    string
	TenantID     string
	ClientID     string
	ClientSecret string
	Scopes       []string

	// HTTPClient performs the token endpoint call. Defaults to a quiet
	// retryable client.
	HTTPClient *retryablehttp.Client
}

// NewClientCredentialsProvider creates a provider for the given service
// principal.
func NewClientCredentialsProvider(authority, tenantID, clientID, clientSecret string, scopes []string) *ClientCredentialsProvider {
	return &ClientCredentialsProvider{
		Authority:    authority,
		TenantID:     tenantID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
	}
}

// Authenticate implements TokenProvider.
func (p *ClientCredentialsProvider) Authenticate(ctx context.Context) (*Token, error) {
	endpoint := strings.TrimSuffix(p.Authority, "/") + "/" + p.TenantID + "/oauth2/v2.0/token"

	form := url.Values{
		"grant_type":    []string{"client_credentials"},
		"client_id":     []string{p.ClientID},
		"client_secret": []string{p.ClientSecret},
		"scope":         []string{strings.Join(p.Scopes, " ")},
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling token endpoint: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var tokenErr tokenErrorResponse
		if jsonErr := json.Unmarshal(body, &tokenErr); jsonErr == nil && tokenErr.Error != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrTokenEndpoint, tokenErr.Error, tokenErr.ErrorDescription)
		}

		return nil, fmt.Errorf("%w: status %d: %s", ErrTokenEndpoint, resp.StatusCode, string(body))
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	return &token, nil
}

func (p *ClientCredentialsProvider) client() *retryablehttp.Client {
	if p.HTTPClient == nil {
		p.HTTPClient = retryablehttp.NewClient()
		p.HTTPClient.HTTPClient.Timeout = constants.ShortHTTPTimeout
		p.HTTPClient.Logger = nil
	}

	return p.HTTPClient
}
