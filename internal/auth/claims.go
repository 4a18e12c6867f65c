package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Static errors for claims decoding.
var (
	ErrTokenLooksExpired = errors.New("token claims report it as expired")
	ErrNoUserClaim       = errors.New("no user identifier claim in token")
)

// userClaimKeys are the claims checked for the user identifier, in order.
var userClaimKeys = []string{"upn", "preferred_username", "unique_name", "email"}

// DecodeUserID extracts the user identifier from a bearer token without
// verifying its signature; the platform's gateway is trusted to verify.
// A malformed token, an expired-looking token, or a token with no user
// claim all fail, which callers treat as "discard and re-authenticate".
func DecodeUserID(accessToken string) (string, error) {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err != nil {
		return "", fmt.Errorf("decoding token claims: %w", err)
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil {
		return "", fmt.Errorf("reading token expiry claim: %w", err)
	}

	if expiry != nil && time.Now().After(expiry.Time) {
		return "", ErrTokenLooksExpired
	}

	for _, key := range userClaimKeys {
		if value, ok := claims[key].(string); ok && value != "" {
			return value, nil
		}
	}

	return "", ErrNoUserClaim
}
