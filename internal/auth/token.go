// Package auth issues bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/cinebook/internal/clock"
	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens that carry an Identity.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clock.Clock
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, ttl time.Duration, issuer string, clk clock.Clock) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, issuer: issuer, clock: clk}
}

// Issue signs a token for the user and returns it with its expiry.
func (m *TokenManager) Issue(u model.User) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a token and returns the identity it carries. Any failure,
// including expiry, yields model.ErrUnauthorized.
func (m *TokenManager) Parse(raw string) (model.Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, fmt.Errorf("%w: token expired", model.ErrUnauthorized)
		}
		return model.Identity{}, fmt.Errorf("%w: invalid token", model.ErrUnauthorized)
	}

	role, err := model.ParseRole(c.Role)
	if err != nil || c.Subject == "" {
		return model.Identity{}, fmt.Errorf("%w: invalid token claims", model.ErrUnauthorized)
	}
	return model.Identity{UserID: c.Subject, Role: role}, nil
}
