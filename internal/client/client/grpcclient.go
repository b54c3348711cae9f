package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultRequestTimeout = 12 * time.Second

// GRPCGateway talks to the identity backend over gRPC.
type GRPCGateway struct {
	endpointURL    string
	requestTimeout time.Duration
	conn           *grpc.ClientConn
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// timeoutInterceptor bounds calls whose context has no deadline yet.
func (g *GRPCGateway) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := ctx.Deadline(); !ok && g.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCGateway prepares a lazy connection to endpointURL. requestTimeout
// bounds calls that arrive without a deadline; zero selects the default.
// Extra dial options are appended after the defaults.
func NewGRPCGateway(endpointURL string, requestTimeout time.Duration, opts ...grpc.DialOption) (*GRPCGateway, error) {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	g := &GRPCGateway{endpointURL: endpointURL, requestTimeout: requestTimeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(g.timeoutInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("identity gateway client: %w", err)
	}
	g.conn = conn
	return g, nil
}

func (g *GRPCGateway) Close() error {
	return g.conn.Close()
}

func (g *GRPCGateway) ResolveIdentity(ctx context.Context, req ResolveRequest) Result {
	reply, res, ok := g.invoke(ctx, common.MethodResolveIdentity, wire.OpResolveIdentity, req.Token, resolveRequestFields(req))
	if !ok {
		return res
	}
	return decodeResolve(req.LoginType, reply)
}

func (g *GRPCGateway) SaveUserInfo(ctx context.Context, token string, profile models.Profile) Result {
	fields := map[string]any{wire.FieldUserInfo: profileToMap(profile)}
	reply, res, ok := g.invoke(ctx, common.MethodSaveUserInfo, wire.OpSaveUserInfo, token, fields)
	if !ok {
		return res
	}
	return decodeProfile(reply)
}

func (g *GRPCGateway) GetUserInfo(ctx context.Context, token string) Result {
	reply, res, ok := g.invoke(ctx, common.MethodGetUserInfo, wire.OpGetUserInfo, token, nil)
	if !ok {
		return res
	}
	return decodeProfile(reply)
}

// invoke performs one unary call. When ok is false the returned Result
// already describes the failure.
func (g *GRPCGateway) invoke(ctx context.Context, method, op, token string, fields map[string]any) (wire.Reply, Result, bool) {
	in, err := wire.NewRequest(op, fields)
	if err != nil {
		return wire.Reply{}, Unreachable(err), false
	}

	out := new(structpb.Struct)
	if err := g.conn.Invoke(withAccessToken(ctx, token), method, in, out); err != nil {
		return wire.Reply{}, g.mapError(err), false
	}
	return wire.ParseReply(out), Result{}, true
}

// mapError classifies a failed call. Only an explicit authentication verdict
// counts as an answer; everything else means no answer was obtained.
func (g *GRPCGateway) mapError(err error) Result {
	st, ok := status.FromError(err)
	if !ok {
		return Unreachable(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return Failed(st.Message(), ErrUnauthorized)
	default:
		return Unreachable(fmt.Errorf("%w: %s: %s", ErrUnavailable, st.Code(), st.Message()))
	}
}
