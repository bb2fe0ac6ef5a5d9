package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 1, 7)

	tok, err := m.GenerateToken(42, "user@example.com", "USER")
	require.NoError(t, err)

	claims, err := m.VerifyKind(tok, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "USER", claims.Role)
}

func TestJWTManager_RefreshTokenRejectedAsAccess(t *testing.T) {
	m := NewJWTManager("secret", 1, 7)

	tok, err := m.GenerateRefreshToken(1, "user@example.com", "USER")
	require.NoError(t, err)

	_, err = m.VerifyKind(tok, KindAccess)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrongKind))

	_, err = m.VerifyKind(tok, KindRefresh)
	assert.NoError(t, err)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	tok, err := NewJWTManager("secret-a", 1, 7).GenerateToken(1, "a@b.c", "USER")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", 1, 7).VerifyToken(tok)
	assert.Error(t, err)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	m := NewJWTManager("secret", 0, 0)

	tok, err := m.GenerateToken(1, "a@b.c", "USER")
	require.NoError(t, err)

	_, err = m.VerifyToken(tok)
	assert.Error(t, err)
}

func TestGenerateRandomString_Length(t *testing.T) {
	assert.Len(t, GenerateRandomString(16), 32)
}
