package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	svc := NewTokenService("test-secret", 24, 30)

	t.Run("session round trip", func(t *testing.T) {
		token, err := svc.IssueSession(7)
		require.NoError(t, err)

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.Subject)
		assert.Equal(t, "admin", claims.Role)
		assert.Zero(t, claims.EventID)
	})

	t.Run("invitation round trip", func(t *testing.T) {
		token, err := svc.IssueInvitation(42, 3, "a@b.com")
		require.NoError(t, err)

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.Subject)
		assert.Equal(t, int64(3), claims.EventID)
		assert.Equal(t, "a@b.com", claims.Email)
		assert.Empty(t, claims.Role)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewTokenService("other-secret", 24, 30)
		token, err := other.IssueInvitation(1, 1, "a@b.com")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenService("test-secret", -1, 0)
		token, err := expired.IssueSession(1)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := svc.Verify("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("decode skips signature and expiry", func(t *testing.T) {
		other := NewTokenService("other-secret", 24, -1)
		token, err := other.IssueInvitation(9, 4, "x@y.com")
		require.NoError(t, err)

		claims, err := svc.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, int64(9), claims.Subject)
		assert.Equal(t, int64(4), claims.EventID)
	})
}
