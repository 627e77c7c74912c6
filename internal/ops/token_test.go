package ops

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("test-signing-key")

	signed, err := tokens.GenerateServiceToken("operator-1", time.Minute)
	require.NoError(t, err)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.Subject)
	assert.Equal(t, "commune-ops", claims.Issuer)
}

func TestServiceTokenExpiry(t *testing.T) {
	tokens := NewTokenService("test-signing-key")

	signed, err := tokens.GenerateServiceToken("operator-1", -time.Minute)
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestServiceTokenRejectsForeignIssuer(t *testing.T) {
	tokens := NewTokenService("test-signing-key")

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := foreign.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	assert.Error(t, err)
}

func TestServiceTokenRejectsEmptySubject(t *testing.T) {
	tokens := NewTokenService("test-signing-key")

	signed, err := tokens.GenerateServiceToken("", time.Minute)
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	assert.Error(t, err)
}
