package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	msgLoginFailed   = "登录失败"
	msgSessionExpire = "登录已过期"
)

func (s *GRPCServer) ResolveIdentity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	m := req.AsMap()
	loginType := wire.String(m, wire.FieldLoginType)

	s.logger.Info(ctx, "Resolve identity request", "login_type", loginType)

	switch loginType {
	case common.LoginTypeWechat:
		sess, err := s.users.LoginWechat(ctx, wire.Map(m, wire.FieldProfile))
		if err != nil {
			return s.loginFailure(ctx, err)
		}
		return reply(true, sessionData(sess.OpenID, sess.Token, sess.UserInfo, sess.IsNewUser), "")

	case common.LoginTypeGuest:
		sess, err := s.users.LoginGuest(ctx)
		if err != nil {
			return s.loginFailure(ctx, err)
		}
		return reply(true, sessionData(sess.OpenID, sess.Token, sess.UserInfo, sess.IsNewUser), "")

	case common.LoginTypeAuto:
		if _, err := s.users.Verify(ctx, tokenFromContext(ctx)); err != nil {
			s.logger.Info(ctx, "Session rejected", "reason", err.Error())
			return reply(false, nil, msgSessionExpire)
		}
		return reply(true, nil, "")

	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown login type %q", loginType)
	}
}

func (s *GRPCServer) SaveUserInfo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	openid, ok := openIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	doc, err := s.users.SaveProfile(ctx, openid, wire.Map(req.AsMap(), wire.FieldUserInfo))
	if err != nil {
		return nil, s.internal(ctx, err)
	}
	return reply(true, doc, "用户信息已保存")
}

func (s *GRPCServer) GetUserInfo(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	openid, ok := openIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	doc, err := s.users.Profile(ctx, openid)
	if err != nil {
		return nil, s.internal(ctx, err)
	}
	return reply(true, doc, "")
}

// loginFailure answers with success:false for rejected credentials and
// with a transport error for everything else.
func (s *GRPCServer) loginFailure(ctx context.Context, err error) (*structpb.Struct, error) {
	if errors.Is(err, common.ErrorUnauthorized) {
		return reply(false, nil, msgLoginFailed)
	}
	return nil, s.internal(ctx, err)
}

func (s *GRPCServer) internal(ctx context.Context, err error) error {
	s.logger.Error(ctx, err.Error())
	if errors.Is(err, common.ErrorNotFound) {
		return status.Error(codes.NotFound, "user not found")
	}
	return status.Error(codes.Internal, "internal error")
}

func sessionData(openid, token string, userInfo map[string]any, isNew bool) map[string]any {
	return map[string]any{
		wire.FieldOpenID:    openid,
		wire.FieldToken:     token,
		wire.FieldUserInfo:  userInfo,
		wire.FieldIsNewUser: isNew,
	}
}

func reply(success bool, data map[string]any, message string) (*structpb.Struct, error) {
	out, err := wire.NewReply(success, data, message)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
