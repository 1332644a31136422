package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		tok, err := m.Issue("user-1", "CANDIDATE")
		require.NoError(t, err)

		claims, err := m.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "CANDIDATE", claims.Role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := NewTokenManager("other", time.Hour).Issue("user-1", "CANDIDATE")
		require.NoError(t, err)
		_, err = m.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("test-secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, err := past.Issue("user-1", "RECRUITER")
		require.NoError(t, err)
		_, err = m.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: "skillmatch"},
		})
		s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := NewTokenManager("", time.Hour).Issue("u", "CANDIDATE")
		assert.Error(t, err)
	})
}
