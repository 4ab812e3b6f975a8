package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Secret: "test-secret", DefaultTTL: time.Hour}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testConfig()

	token, err := GenerateToken(cfg, "user-123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "user-123")
	require.NoError(t, err)

	_, err = ValidateToken(Config{Secret: "other-secret"}, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := Config{Secret: "test-secret", DefaultTTL: -time.Hour}
	token, err := GenerateToken(cfg, "user-123")
	require.NoError(t, err)

	_, err = ValidateToken(cfg, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken(testConfig(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashAndCheckAPIKey(t *testing.T) {
	hash, err := HashAPIKey("super-secret-key")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.True(t, CheckAPIKey("super-secret-key", hash))
	assert.False(t, CheckAPIKey("wrong-key", hash))
}
