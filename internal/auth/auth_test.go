package auth

import (
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/cinebook/internal/clock"
	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour, "cinebook", clock.NewFixed(now))

	token, expiresAt, err := m.Issue(model.User{ID: "user-1", Role: model.RoleOrganizer})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	id, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: "user-1", Role: model.RoleOrganizer}, id)
}

func TestTokenManager_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenManager("secret", time.Hour, "cinebook", clock.NewFixed(now))
	token, _, err := issuer.Issue(model.User{ID: "user-1", Role: model.RoleUser})
	require.NoError(t, err)

	tests := []struct {
		name   string
		parser *TokenManager
		token  string
	}{
		{
			name:   "expired",
			parser: NewTokenManager("secret", time.Hour, "cinebook", clock.NewFixed(now.Add(2*time.Hour))),
			token:  token,
		},
		{
			name:   "wrong secret",
			parser: NewTokenManager("other", time.Hour, "cinebook", clock.NewFixed(now)),
			token:  token,
		},
		{
			name:   "wrong issuer",
			parser: NewTokenManager("secret", time.Hour, "someone-else", clock.NewFixed(now)),
			token:  token,
		},
		{
			name:   "garbage",
			parser: issuer,
			token:  "not.a.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(tt.token)
			assert.ErrorIs(t, err, model.ErrUnauthorized)
		})
	}
}

func TestTokenManager_RejectsUnknownRole(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour, "cinebook", clock.NewFixed(now))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "cinebook",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "hunter22")
	assert.Error(t, err)
}
