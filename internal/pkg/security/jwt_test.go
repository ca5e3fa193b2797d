package security

import (
	"testing"
	"time"

	"Huddle/internal/api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	Init(config.AuthConfig{Secret: "test-secret"})

	token, err := GenerateToken(42)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.InDelta(t, JWTExpirationTime.Seconds(), claims.TTL().Seconds(), 5)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	Init(config.AuthConfig{Secret: "one"})
	token, err := GenerateToken(1)
	require.NoError(t, err)

	Init(config.AuthConfig{Secret: "two"})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractSignatureMalformed(t *testing.T) {
	_, err := ExtractSignature("a.b")
	assert.Error(t, err)
	assert.Equal(t, time.Duration(0), (&UserClaims{}).TTL())
}
