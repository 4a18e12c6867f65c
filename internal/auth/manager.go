package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apibeacon/beacon/pkg/pbi"
)

// Static errors for err113 compliance.
var (
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
)

// TokenManager owns the bearer token state for a client.
type TokenManager interface {
	// GetToken returns a valid access token, authenticating if necessary.
	GetToken(ctx context.Context) (string, error)

	// RefreshToken discards the current token state and acquires a new one.
	RefreshToken(ctx context.Context) error

	// SetToken manually sets the access token.
	SetToken(token string, expiresAt time.Time)

	// UserID returns the user identifier claim of the current token, or the
	// empty string before the first successful GetToken.
	UserID() string
}

// TokenProvider obtains a fresh token from the identity provider. The
// device-code and client-credentials flows both satisfy this contract.
type TokenProvider interface {
	Authenticate(ctx context.Context) (*Token, error)
}

// ProviderTokenManager backs a client with a TokenProvider. After every
// acquisition it decodes the token claims to learn the user identifier;
// if decoding fails for any reason the token is transparently discarded
// and the provider is invoked exactly once more before giving up. That is
// the only error this package absorbs.
type ProviderTokenManager struct {
	provider TokenProvider
	store    *TokenStore
	logger   pbi.Logger
	mu       sync.Mutex
	userID   string
}

// NewProviderTokenManager creates a manager that authenticates on first use.
func NewProviderTokenManager(provider TokenProvider, logger pbi.Logger) *ProviderTokenManager {
	return &ProviderTokenManager{
		provider: provider,
		store:    NewTokenStore(),
		logger:   logger,
	}
}

// NewProviderTokenManagerWithToken seeds the manager with a previously
// issued token. The saved token is vetted on first use; if it is malformed
// or expired it is discarded and the provider runs once.
func NewProviderTokenManagerWithToken(provider TokenProvider, logger pbi.Logger, savedToken string) *ProviderTokenManager {
	manager := NewProviderTokenManager(provider, logger)
	manager.store.Set(&Token{AccessToken: savedToken, TokenType: "bearer"})

	return manager
}

// GetToken implements TokenManager.
func (m *ProviderTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token := m.store.Get(); token.Valid() {
		if m.userID != "" {
			return token.AccessToken, nil
		}

		// Saved token not vetted yet: decode succeeds or the token goes.
		userID, err := DecodeUserID(token.AccessToken)
		if err == nil {
			m.userID = userID

			return token.AccessToken, nil
		}

		m.warn("saved token rejected, reauthenticating", err)
		m.store.Clear()
	}

	token, err := m.authenticate(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// RefreshToken implements TokenManager: the token state is discarded and
// regenerated through the provider.
func (m *ProviderTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Clear()
	m.userID = ""

	_, err := m.authenticate(ctx)

	return err
}

// SetToken implements TokenManager. The token is re-vetted on next use.
func (m *ProviderTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
	m.userID = ""
}

// UserID implements TokenManager.
func (m *ProviderTokenManager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.userID
}

// authenticate acquires a fresh token, absorbing exactly one claims-decode
// failure with a second acquisition. Callers must hold m.mu.
func (m *ProviderTokenManager) authenticate(ctx context.Context) (*Token, error) {
	token, err := m.provider.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	userID, err := DecodeUserID(token.AccessToken)
	if err != nil {
		m.warn("issued token claims could not be decoded, reauthenticating", err)

		token, err = m.provider.Authenticate(ctx)
		if err != nil {
			return nil, fmt.Errorf("reauthenticating: %w", err)
		}

		userID, err = DecodeUserID(token.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("decoding reissued token: %w", err)
		}
	}

	m.store.Set(token)
	m.userID = userID

	return token, nil
}

func (m *ProviderTokenManager) warn(msg string, err error) {
	if m.logger != nil {
		m.logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}

// StaticTokenManager provides a fixed token that is never refreshed.
type StaticTokenManager struct {
	token  string
	userID string
}

// NewStaticTokenManager creates a manager around a pre-vetted token.
func NewStaticTokenManager(token, userID string) *StaticTokenManager {
	return &StaticTokenManager{token: token, userID: userID}
}

// GetToken implements TokenManager.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

// RefreshToken implements TokenManager.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenCannotRefresh
}

// SetToken implements TokenManager.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// UserID implements TokenManager.
func (m *StaticTokenManager) UserID() string {
	return m.userID
}
