package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewAccessToken signs a token and parses it back with the same
// secret, checking every claim the middleware later relies on.
func TestNewAccessToken(t *testing.T) {
	const secret = "test-secret"

	tok, err := NewAccessToken(secret, 42, "a@b.com", "manager", 2)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(2*time.Hour), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"], "numeric claims decode as float64")
	assert.Equal(t, "a@b.com", claims["email"])
	assert.Equal(t, "manager", claims["role"])
	assert.EqualValues(t, tok.Exp.Unix(), claims["exp"])
}

// TestAccessTokenWrongSecret verifies that a token signed with one secret
// does not verify under another.
func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret-a", 1, "a@b.com", "employee", 1)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(token *jwt.Token) (any, error) {
		return []byte("secret-b"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.Error(t, err)
}

// TestValidEmail exercises the loose shape check used at registration.
func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last@example.co.uk", "user+tag@host.io"}
	for _, s := range valid {
		assert.True(t, ValidEmail(s), s)
	}
	invalid := []string{"", "plain", "@host.com", "user@", "user@host", "two@@host.com", "sp ace@host.com"}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), s)
	}
}
