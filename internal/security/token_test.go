package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 24*time.Hour)

	t.Run("access token", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(7, "hiker@test.com")
		assert.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, int32(7), claims.UserID)
		assert.Equal(t, "hiker@test.com", claims.Email)
		assert.Equal(t, TokenTypeAccess, claims.Type)
		assert.Equal(t, "gomate", claims.Issuer)
	})

	t.Run("refresh token", func(t *testing.T) {
		token, err := tm.GenerateRefreshToken(7, "hiker@test.com")
		assert.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, TokenTypeRefresh, claims.Type)
	})
}

func TestValidateToken_Rejections(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 24*time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("another-secret-fedcba9876543210fedcba", time.Hour, 24*time.Hour)
		token, err := other.GenerateAccessToken(7, "hiker@test.com")
		assert.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenManager(testSecret, -time.Minute, -time.Minute)
		token, err := expired.GenerateAccessToken(7, "hiker@test.com")
		assert.NoError(t, err)

		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
