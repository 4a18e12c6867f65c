package beacon

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/apibeacon/beacon/internal/auth"
	"github.com/apibeacon/beacon/internal/client"
	"github.com/apibeacon/beacon/internal/http"
	"github.com/apibeacon/beacon/internal/logging"
	"github.com/apibeacon/beacon/pkg/pbi"
)

// New creates a Service from the given config. Exactly one HTTP client is
// constructed per call; the service and every entity it materializes share
// it by reference.
func New(ctx context.Context, config *pbi.Config) (pbi.Service, error) {
	if config == nil {
		return nil, pbi.ErrConfigRequired
	}

	applyDefaults(config)

	logger := config.Logger

	if logger == nil {
		dir := config.LogDir

		if dir == "" {
			var err error

			dir, err = logging.DefaultDir()
			if err != nil {
				return nil, err
			}
		}

		fileLogger, err := logging.New(dir, config.Debug)
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}

		logger = fileLogger
	}

	tokenManager := createTokenManager(config, logger)

	httpOpts := []http.Option{http.WithLogger(logger)}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.MaxRetries > 0 || config.BackoffUnit > 0 {
		httpOpts = append(httpOpts, http.WithRetryConfig(config.MaxRetries, config.BackoffUnit))
	}

	if config.ProxyURL != "" {
		proxyURL, err := url.Parse(config.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy URL: %w", err)
		}

		httpOpts = append(httpOpts, http.WithProxy(proxyURL))
	}

	httpClient := http.NewClient(config.BaseURL, tokenManager, httpOpts...)

	return client.NewService(httpClient, tokenManager, logger), nil
}

// NewWithToken creates a Service seeded with a previously issued token.
// If the token turns out to be stale it is discarded and the interactive
// flow runs once.
func NewWithToken(ctx context.Context, token string) (pbi.Service, error) {
	return New(ctx, &pbi.Config{AccessToken: token})
}

// createTokenManager picks the provider based on the configured credentials:
// a client secret selects the non-interactive client-credentials grant,
// anything else the interactive device-code flow.
func createTokenManager(config *pbi.Config, logger pbi.Logger) auth.TokenManager {
	var provider auth.TokenProvider

	if config.ClientSecret != "" {
		provider = auth.NewClientCredentialsProvider(
			config.Authority, config.TenantID, config.ClientID, config.ClientSecret, config.Scopes)
	} else {
		provider = auth.NewDeviceCodeProvider(
			config.Authority, config.TenantID, config.ClientID, config.Scopes)
	}

	if config.AccessToken != "" {
		return auth.NewProviderTokenManagerWithToken(provider, logger, config.AccessToken)
	}

	return auth.NewProviderTokenManager(provider, logger)
}

func applyDefaults(config *pbi.Config) {
	if config.BaseURL == "" {
		config.BaseURL = pbi.DefaultBaseURL
	}

	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	if config.Authority == "" {
		config.Authority = pbi.DefaultAuthority
	}

	if config.TenantID == "" {
		config.TenantID = pbi.DefaultTenantID
	}

	if config.ClientID == "" {
		config.ClientID = pbi.DefaultClientID
	}

	if len(config.Scopes) == 0 {
		config.Scopes = []string{pbi.DefaultScope}
	}
}
