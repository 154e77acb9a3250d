package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenerator(d time.Duration) *Generator {
	return NewGenerator(Config{
		Secret:          "test-secret-at-least-32-characters-long",
		Issuer:          "sitecrew-test",
		SessionDuration: d,
	})
}

func TestGenerateSessionToken(t *testing.T) {
	g := testGenerator(time.Hour)

	t.Run("issues a verifiable token", func(t *testing.T) {
		token, expiresAt, err := g.GenerateSessionToken("user-123")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		claims, err := g.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "sitecrew-test", claims.Issuer)
	})

	t.Run("empty user id", func(t *testing.T) {
		_, _, err := g.GenerateSessionToken("")
		assert.ErrorIs(t, err, ErrEmptyUserID)
	})
}

func TestVerify(t *testing.T) {
	g := testGenerator(time.Hour)

	t.Run("expired token", func(t *testing.T) {
		expired := testGenerator(-time.Minute)
		token, _, err := expired.GenerateSessionToken("user-123")
		require.NoError(t, err)

		_, err = g.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewGenerator(Config{
			Secret:          "a-completely-different-32-char-secret!!",
			Issuer:          "sitecrew-test",
			SessionDuration: time.Hour,
		})
		token, _, err := other.GenerateSessionToken("user-123")
		require.NoError(t, err)

		_, err = g.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewGenerator(Config{
			Secret:          "test-secret-at-least-32-characters-long",
			Issuer:          "someone-else",
			SessionDuration: time.Hour,
		})
		token, _, err := other.GenerateSessionToken("user-123")
		require.NoError(t, err)

		_, err = g.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := g.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
