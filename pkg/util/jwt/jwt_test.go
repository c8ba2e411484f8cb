package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	Init("test-secret-at-least-32-characters!!", 15, 24)

	token, err := GenerateAccessToken("U240101abcdefghijk")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "U240101abcdefghijk", claims.UserID)
	assert.Equal(t, SubjectAccessToken, claims.Subject)
	assert.Empty(t, claims.TokenID)
}

func TestRefreshTokenCarriesTokenID(t *testing.T) {
	Init("test-secret-at-least-32-characters!!", 15, 24)

	token, tokenID, err := GenerateRefreshToken("U1")
	require.NoError(t, err)
	require.NotEmpty(t, tokenID)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, SubjectRefreshToken, claims.Subject)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	Init("first-secret-first-secret-first-sec", 15, 24)
	token, err := GenerateAccessToken("U1")
	require.NoError(t, err)

	Init("second-secret-second-secret-second", 15, 24)
	_, err = ParseToken(token)
	assert.Error(t, err)
}
