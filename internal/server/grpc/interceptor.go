package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const openIDKey ctxKey = "openid"

// protectedMethods need a valid session token.
var protectedMethods = map[string]bool{
	common.MethodSaveUserInfo: true,
	common.MethodGetUserInfo:  true,
}

func tokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	return ""
}

func openIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(openIDKey).(string)
	return id, ok && id != ""
}

// accessTokenInterceptor rejects calls to protected methods that carry no
// valid session token and hands the token owner's openid to the handler.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	token := tokenFromContext(ctx)
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	user, err := s.users.Verify(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return handler(context.WithValue(ctx, openIDKey, user.OpenID), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", status.Code(err).String(), "elapsed", time.Since(start))
	return resp, err
}
