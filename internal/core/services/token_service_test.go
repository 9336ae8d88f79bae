package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateAndValidate(t *testing.T) {
	secret := "super-secret-key-for-testing"
	issuer := "sawm-test"
	userID := "user-123-uuid"

	service, err := NewTokenService(secret, issuer, time.Hour)
	require.NoError(t, err)

	t.Run("Success: Should generate and validate a token", func(t *testing.T) {
		tokenString, err := service.GenerateToken(userID)
		require.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		extractedID, err := service.ValidateToken(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, userID, extractedID)
	})

	t.Run("Failure: Empty user id", func(t *testing.T) {
		_, err := service.GenerateToken("")
		assert.Error(t, err)
	})

	t.Run("Failure: Expired token", func(t *testing.T) {
		expired, err := NewTokenService(secret, issuer, -time.Minute)
		require.NoError(t, err)

		tokenString, err := expired.GenerateToken(userID)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Failure: Wrong secret", func(t *testing.T) {
		other, err := NewTokenService("another-secret", issuer, time.Hour)
		require.NoError(t, err)

		tokenString, err := other.GenerateToken(userID)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("Failure: Wrong issuer", func(t *testing.T) {
		other, err := NewTokenService(secret, "someone-else", time.Hour)
		require.NoError(t, err)

		tokenString, err := other.GenerateToken(userID)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("Failure: Unsigned token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("Failure: Garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", "issuer", time.Hour)
	assert.Error(t, err)
}
