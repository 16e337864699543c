package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, 1)

	token, err := m.GenerateAccessToken(42, "owner@example.com", "owner")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, "equiprent", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := NewTokenManager(testSecret, 1)

	_, err := m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m := NewTokenManager(testSecret, 1)
	other := NewTokenManager("another-secret-another-secret-32", 1)

	token, err := other.GenerateAccessToken(1, "", "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewTokenManager(testSecret, -1) // already expired at issue time

	token, err := m.GenerateAccessToken(1, "", "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
