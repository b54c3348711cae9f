package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/server/auth"
	"github.com/dmitrijs2005/healthkeeper/internal/server/config"
	"github.com/dmitrijs2005/healthkeeper/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{SecretKey: "test-secret", TokenValidityDuration: time.Hour}
	return NewService(NewMemoryRepository(), cfg)
}

func TestLoginWechat_NewThenExisting(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	consent := map[string]any{
		wire.FieldNickName:   "小明",
		wire.FieldAvatarURL:  "https://img/a.png",
		wire.FieldGenderCode: float64(2),
		wire.FieldCity:       "杭州",
	}

	first, err := s.LoginWechat(ctx, consent)
	require.NoError(t, err)
	assert.True(t, first.IsNewUser)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, "女", first.UserInfo[wire.FieldGender])
	assert.Equal(t, "杭州", first.UserInfo[wire.FieldCity])
	assert.Equal(t, first.OpenID, first.UserInfo[wire.FieldOpenID])

	second, err := s.LoginWechat(ctx, consent)
	require.NoError(t, err)
	assert.False(t, second.IsNewUser)
	assert.Equal(t, first.OpenID, second.OpenID)

	claims, err := auth.ParseToken(second.Token, []byte("test-secret"), time.Now)
	require.NoError(t, err)
	assert.Equal(t, first.OpenID, claims.Subject)
	assert.False(t, claims.Guest)
}

func TestLoginWechat_RequiresNickname(t *testing.T) {
	s := newTestService(t)
	_, err := s.LoginWechat(context.Background(), map[string]any{})
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLoginGuest_FreshAccountEachTime(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	a, err := s.LoginGuest(ctx)
	require.NoError(t, err)
	b, err := s.LoginGuest(ctx)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.OpenID, common.GuestIDPrefix))
	assert.NotEqual(t, a.OpenID, b.OpenID)
	assert.True(t, a.IsNewUser)

	user, err := s.Verify(ctx, a.Token)
	require.NoError(t, err)
	assert.True(t, user.IsGuest)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	sess, err := s.LoginGuest(ctx)
	require.NoError(t, err)

	t.Run("tampered", func(t *testing.T) {
		_, err := s.Verify(ctx, sess.Token+"x")
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		t.Cleanup(func() { s.now = time.Now })
		_, err := s.Verify(ctx, sess.Token)
		require.ErrorIs(t, err, common.ErrTokenExpired)
	})

	t.Run("unknown owner", func(t *testing.T) {
		token, err := auth.GenerateToken("ghost", false, []byte("test-secret"), time.Hour, time.Now())
		require.NoError(t, err)
		_, err = s.Verify(ctx, token)
		require.ErrorIs(t, err, common.ErrInvalidToken)
	})
}

func TestSaveProfile_OnlyEditableFields(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	sess, err := s.LoginGuest(ctx)
	require.NoError(t, err)

	doc, err := s.SaveProfile(ctx, sess.OpenID, map[string]any{
		wire.FieldAge:    float64(30),
		wire.FieldPhone:  "123",
		wire.FieldOpenID: "hijack",
		"role":           "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(30), doc[wire.FieldAge])
	assert.Equal(t, "123", doc[wire.FieldPhone])
	assert.Equal(t, sess.OpenID, doc[wire.FieldOpenID])
	assert.NotContains(t, doc, "role")

	stored, err := s.Profile(ctx, sess.OpenID)
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestProfile_Unknown(t *testing.T) {
	s := newTestService(t)
	_, err := s.Profile(context.Background(), "nobody")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
