package grpc

import (
	"context"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// IdentityGatewayServer is the server side of the identity gateway. Every
// method exchanges structpb documents laid out as in package wire.
type IdentityGatewayServer interface {
	ResolveIdentity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveUserInfo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUserInfo(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterIdentityGatewayServer registers impl on s.
func RegisterIdentityGatewayServer(s grpc.ServiceRegistrar, impl IdentityGatewayServer) {
	s.RegisterService(&identityGatewayServiceDesc, impl)
}

type structMethod func(IdentityGatewayServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IdentityGatewayServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IdentityGatewayServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var identityGatewayServiceDesc = grpc.ServiceDesc{
	ServiceName: common.IdentityServiceName,
	HandlerType: (*IdentityGatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ResolveIdentity",
			Handler:    unaryHandler(common.MethodResolveIdentity, IdentityGatewayServer.ResolveIdentity),
		},
		{
			MethodName: "SaveUserInfo",
			Handler:    unaryHandler(common.MethodSaveUserInfo, IdentityGatewayServer.SaveUserInfo),
		},
		{
			MethodName: "GetUserInfo",
			Handler:    unaryHandler(common.MethodGetUserInfo, IdentityGatewayServer.GetUserInfo),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "healthkeeper/identity/v1/identity.proto",
}
