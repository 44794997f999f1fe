package fakeapi

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultAccessTokenTTL = 15 * time.Minute
	defaultSigningMethod  = "HS256"
)

type accessClaims struct {
	jwt.RegisteredClaims

	// Tokens issued before ExpireAccess call have older epoch and are rejected
	Epoch int64 `json:"epoch"`
}

// tokenManager issues and checks tokens the way backend does
type tokenManager struct {
	// Secret key to sign access token
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	accessTTL time.Duration
}

func newTokenManager(key string, accessTTL time.Duration) *tokenManager {
	if accessTTL == 0 {
		accessTTL = defaultAccessTokenTTL
	}
	return &tokenManager{
		key:       key,
		alg:       jwt.GetSigningMethod(defaultSigningMethod),
		accessTTL: accessTTL,
	}
}

func (m *tokenManager) access(userID string, epoch int64) (string, error) {
	now := time.Now().Truncate(time.Second)

	token := jwt.NewWithClaims(m.alg, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		Epoch: epoch,
	})

	access, err := token.SignedString([]byte(m.key))
	if err != nil {
		return "", fmt.Errorf("error while signing access token. Err: %w", err)
	}
	return access, nil
}

// Generate random refresh token 16 bytes length
func (m *tokenManager) refresh() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error while generate refresh token. Err: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Parse and validate access token
func (m *tokenManager) parse(access string, epoch int64) (string, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("error parsing token. Err: %w", err)
	}
	if claims.Epoch != epoch {
		return "", errors.New("token expired")
	}

	return claims.Subject, nil
}
