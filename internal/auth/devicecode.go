package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/apibeacon/beacon/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrDeviceCodeExpired = errors.New("device code expired before the user completed sign-in")
	ErrTokenEndpoint     = errors.New("token endpoint error")
)

// DeviceCodeProvider implements the OAuth2 device-code flow against the
// Microsoft identity platform. It prints a verification message to Out and
// polls the token endpoint until the user completes sign-in in a browser.
type DeviceCodeProvider struct {
	Authority string
	TenantID  string
	ClientID  string
	Scopes    []string

	// Out receives the "visit this URL and enter this code" message.
	// Defaults to os.Stderr.
	Out io.Writer

	// Interval overrides the server-suggested polling interval.
	Interval time.Duration

	// HTTPClient performs the token endpoint calls. Defaults to a quiet
	// retryable client.
	HTTPClient *retryablehttp.Client
}

// NewDeviceCodeProvider creates a provider for the given tenant and client.
func NewDeviceCodeProvider(authority, tenantID, clientID string, scopes []string) *DeviceCodeProvider {
	return &DeviceCodeProvider{
		Authority: authority,
		TenantID:  tenantID,
		ClientID:  clientID,
		Scopes:    scopes,
	}
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int64  `json:"expires_in"`
	Interval        int64  `json:"interval"`
	Message         string `json:"message"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Authenticate implements TokenProvider.
func (p *DeviceCodeProvider) Authenticate(ctx context.Context) (*Token, error) {
	form := url.Values{
		"client_id": []string{p.ClientID},
		"scope":     []string{strings.Join(p.Scopes, " ")},
	}

	var deviceCode deviceCodeResponse

	err := p.postForm(ctx, p.endpoint("devicecode"), form, &deviceCode, nil)
	if err != nil {
		return nil, fmt.Errorf("requesting device code: %w", err)
	}

	_, _ = fmt.Fprintln(p.out(), deviceCode.Message)

	return p.poll(ctx, &deviceCode)
}

// poll exchanges the device code for a token once the user signs in.
func (p *DeviceCodeProvider) poll(ctx context.Context, deviceCode *deviceCodeResponse) (*Token, error) {
	form := url.Values{
		"grant_type":  []string{"urn:ietf:params:oauth:grant-type:device_code"},
		"client_id":   []string{p.ClientID},
		"device_code": []string{deviceCode.DeviceCode},
	}

	interval := p.Interval
	if interval <= 0 {
		interval = constants.DefaultDevicePollInterval
		if deviceCode.Interval > 0 {
			interval = time.Duration(deviceCode.Interval) * time.Second
		}
	}

	deadline := time.Now().Add(time.Duration(deviceCode.ExpiresIn) * time.Second)

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for device sign-in: %w", ctx.Err())
		case <-time.After(interval):
		}

		if time.Now().After(deadline) {
			return nil, ErrDeviceCodeExpired
		}

		var token Token

		var tokenErr tokenErrorResponse

		err := p.postForm(ctx, p.endpoint("token"), form, &token, &tokenErr)
		if err != nil {
			return nil, fmt.Errorf("polling token endpoint: %w", err)
		}

		switch tokenErr.Error {
		case "":
			token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

			return &token, nil
		case "authorization_pending":
			continue
		case "slow_down":
			interval += time.Second

			continue
		default:
			return nil, fmt.Errorf("%w: %s: %s", ErrTokenEndpoint, tokenErr.Error, tokenErr.ErrorDescription)
		}
	}
}

// endpoint builds an oauth2 v2.0 endpoint URL for the tenant.
func (p *DeviceCodeProvider) endpoint(name string) string {
	return strings.TrimSuffix(p.Authority, "/") + "/" + p.TenantID + "/oauth2/v2.0/" + name
}

// postForm sends a form-encoded POST and decodes the JSON response. When
// errOut is non-nil, a 4xx with a well-formed OAuth error body is decoded
// into it instead of failing, so the caller can inspect the error code.
func (p *DeviceCodeProvider) postForm(ctx context.Context, endpoint string, form url.Values, out any, errOut *tokenErrorResponse) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client().Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", endpoint, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if errOut != nil {
			if jsonErr := json.Unmarshal(body, errOut); jsonErr == nil && errOut.Error != "" {
				return nil
			}
		}

		return fmt.Errorf("%w: status %d: %s", ErrTokenEndpoint, resp.StatusCode, string(body))
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}

	return nil
}

func (p *DeviceCodeProvider) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}

	return os.Stderr
}

func (p *DeviceCodeProvider) client() *retryablehttp.Client {
	if p.HTTPClient == nil {
		p.HTTPClient = retryablehttp.NewClient()
		p.HTTPClient.HTTPClient.Timeout = constants.ShortHTTPTimeout
		p.HTTPClient.Logger = nil
	}

	return p.HTTPClient
}
