package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessExpiry reads expiration time of access token without verifying signature
// The client has no key to verify it, the value is informational only
func AccessExpiry(access string) (time.Time, error) {
	if access == "" {
		return time.Time{}, errors.New("empty token")
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return time.Time{}, fmt.Errorf("error while parsing token. Err: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no expiration time")
	}

	return claims.ExpiresAt.Time, nil
}
