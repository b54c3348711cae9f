package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	now := time.Now()

	tok, err := GenerateToken("oX-123", true, secret, time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret, time.Now)
	require.NoError(t, err)
	require.Equal(t, "oX-123", claims.Subject)
	require.True(t, claims.Guest)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	issued := time.Now().Add(-2 * time.Hour)

	tok, err := GenerateToken("u1", false, secret, time.Hour, issued)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret, time.Now)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", false, []byte("right-secret"), time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong-secret"), time.Now)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not-a-jwt", []byte("s"), time.Now)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
