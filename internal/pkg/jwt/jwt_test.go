package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	s := New("secret", time.Hour)

	token, err := s.GenerateToken(42, "key-1")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "key-1", claims.ID)
	assert.Equal(t, "42", claims.Subject)
}

func TestService_RejectsBadTokens(t *testing.T) {
	s := New("secret", time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		token, err := New("other", time.Hour).GenerateToken(1, "k")
		require.NoError(t, err)
		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := New("secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := old.GenerateToken(1, "k")
		require.NoError(t, err)
		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other signing method", func(t *testing.T) {
		token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, Claims{
			UserID:           1,
			RegisteredClaims: jwtlib.RegisteredClaims{ID: "k"},
		})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = s.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing key", func(t *testing.T) {
		token, err := s.GenerateToken(1, "")
		require.NoError(t, err)
		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}
