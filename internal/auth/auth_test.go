package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inkchat_errors "inkchat/pkg/errors"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseToken(t *testing.T) {
	t.Run("valid token yields the subject", func(t *testing.T) {
		token := signToken(t, testSecret, "user-1", time.Now().Add(time.Hour))

		userID, err := ParseToken(testSecret, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", "user-1", time.Now().Add(time.Hour))

		_, err := ParseToken(testSecret, token)
		assert.ErrorIs(t, err, inkchat_errors.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, testSecret, "user-1", time.Now().Add(-time.Hour))

		_, err := ParseToken(testSecret, token)
		assert.ErrorIs(t, err, inkchat_errors.ErrUnauthorized)
	})

	t.Run("empty subject", func(t *testing.T) {
		token := signToken(t, testSecret, "", time.Now().Add(time.Hour))

		_, err := ParseToken(testSecret, token)
		assert.ErrorIs(t, err, inkchat_errors.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken(testSecret, "not.a.token")
		assert.ErrorIs(t, err, inkchat_errors.ErrUnauthorized)
	})
}

func TestUserIDContext(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-1")

	userID, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)
}
