// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth issues and verifies the JWT access/refresh token pair used
// for API authentication. Access tokens are short-lived and carry the
// user's role; refresh tokens are long-lived, carry no role, and are
// additionally persisted so they can be revoked and rotated.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types embedded in the "typ" claim. Verification checks the type so
// a refresh token can never be used as an access token or vice versa.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// type, expired, malformed. Callers get no more detail than that.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload for both token types.
type Claims struct {
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject: %w", ErrInvalidToken)
	}
	return id, nil
}

// Manager signs and verifies tokens with a single HMAC-SHA256 key.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a token manager. The secret must be non-empty; TTLs
// come from configuration.
func NewManager(secret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccess creates a signed access token carrying the user's role.
func (m *Manager) IssueAccess(userID uuid.UUID, role string) (string, error) {
	return m.sign(Claims{
		Role:      role,
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.accessTTL)),
		},
	})
}

// IssueRefresh creates a signed refresh token and returns it together with
// its expiry, which the caller persists alongside the token.
func (m *Manager) IssueRefresh(userID uuid.UUID) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.refreshTTL)
	token, err := m.sign(Claims{
		TokenType: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			// A nonce keeps two refresh tokens issued in the same second
			// from colliding on the table's unique token column.
			ID: uuid.NewString(),
		},
	})
	return token, expiresAt, err
}

func (m *Manager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token, checks the signature and expiry, and enforces the
// expected token type ("access" or "refresh").
func (m *Manager) Verify(tokenStr, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AccessTTL returns the configured access-token lifetime. Handlers report
// it to clients as expires_in.
func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}
