package users

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/server/auth"
	"github.com/dmitrijs2005/healthkeeper/internal/server/config"
	"github.com/dmitrijs2005/healthkeeper/internal/wire"
	"github.com/google/uuid"
)

// openidNamespace derives stable wechat openids from the consent nickname,
// standing in for the platform's per-app user id.
var openidNamespace = uuid.MustParse("5b8f7c0e-3f4a-4d59-9a51-8a0c2f1e6d47")

// editableFields are the profile keys a client may write.
var editableFields = []string{
	wire.FieldNickName, wire.FieldAvatarURL, wire.FieldGender, wire.FieldAge,
	wire.FieldHeight, wire.FieldWeight, wire.FieldPhone, wire.FieldCity, wire.FieldProvince,
}

type Service struct {
	repo             Repository
	jwtSecret        []byte
	validityDuration time.Duration
	now              func() time.Time
}

func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:             repo,
		jwtSecret:        []byte(cfg.SecretKey),
		validityDuration: cfg.TokenValidityDuration,
		now:              time.Now,
	}
}

// LoginWechat finds or creates the account behind the consent profile.
func (s *Service) LoginWechat(ctx context.Context, consent map[string]any) (*Session, error) {
	nick := wire.String(consent, wire.FieldNickName)
	if nick == "" {
		return nil, fmt.Errorf("%w: nickname required", common.ErrorUnauthorized)
	}
	openid := uuid.NewSHA1(openidNamespace, []byte(nick)).String()

	user, err := s.repo.Get(ctx, openid)
	isNew := errors.Is(err, common.ErrorNotFound)
	if err != nil && !isNew {
		return nil, common.ErrorInternal
	}

	now := s.now()
	if isNew {
		user = &User{OpenID: openid, CreatedAt: now, Profile: map[string]any{
			wire.FieldNickName:  nick,
			wire.FieldAvatarURL: wire.String(consent, wire.FieldAvatarURL),
			wire.FieldGender:    genderFromCode(wire.Int(consent, wire.FieldGenderCode)),
			wire.FieldCity:      wire.String(consent, wire.FieldCity),
			wire.FieldProvince:  wire.String(consent, wire.FieldProvince),
		}}
	}
	user.UpdatedAt = now
	if err := s.repo.Put(ctx, user); err != nil {
		return nil, common.ErrorInternal
	}

	return s.session(user, isNew)
}

// LoginGuest creates a fresh guest account.
func (s *Service) LoginGuest(ctx context.Context) (*Session, error) {
	now := s.now()
	user := &User{
		OpenID:    common.GuestIDPrefix + uuid.NewString(),
		IsGuest:   true,
		Profile:   map[string]any{wire.FieldNickName: "游客用户"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, user); err != nil {
		return nil, common.ErrorInternal
	}
	return s.session(user, true)
}

// Verify checks a session token and returns its owner.
func (s *Service) Verify(ctx context.Context, token string) (*User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret, s.now)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.Get(ctx, claims.Subject)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	return user, nil
}

// SaveProfile merges the editable fields of update into the profile of
// openid and returns the stored document.
func (s *Service) SaveProfile(ctx context.Context, openid string, update map[string]any) (map[string]any, error) {
	user, err := s.repo.Get(ctx, openid)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		user.Profile = map[string]any{}
	}
	for _, k := range editableFields {
		if v, ok := update[k]; ok {
			user.Profile[k] = v
		}
	}
	user.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, user); err != nil {
		return nil, common.ErrorInternal
	}
	return s.document(user), nil
}

// Profile returns the stored document of openid.
func (s *Service) Profile(ctx context.Context, openid string) (map[string]any, error) {
	user, err := s.repo.Get(ctx, openid)
	if err != nil {
		return nil, err
	}
	return s.document(user), nil
}

func (s *Service) session(user *User, isNew bool) (*Session, error) {
	token, err := auth.GenerateToken(user.OpenID, user.IsGuest, s.jwtSecret, s.validityDuration, s.now())
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{OpenID: user.OpenID, Token: token, UserInfo: s.document(user), IsNewUser: isNew}, nil
}

func (s *Service) document(user *User) map[string]any {
	doc := maps.Clone(user.Profile)
	if doc == nil {
		doc = map[string]any{}
	}
	doc[wire.FieldOpenID] = user.OpenID
	return doc
}

func genderFromCode(code int) string {
	switch code {
	case 1:
		return "男"
	case 2:
		return "女"
	default:
		return "未知"
	}
}
