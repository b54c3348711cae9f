package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/server/config"
	"github.com/dmitrijs2005/healthkeeper/internal/server/users"
	"github.com/dmitrijs2005/healthkeeper/internal/wire"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const testSecret = "secret"

func newTestServer(t *testing.T) *GRPCServer {
	t.Helper()
	cfg := &config.Config{SecretKey: testSecret, TokenValidityDuration: time.Hour}
	return NewGRPCServer("127.0.0.1:0", logging.Discard(), users.NewService(users.NewMemoryRepository(), cfg))
}

// dialTestServer serves s over an in-memory listener and returns a client
// connection to it.
func dialTestServer(t *testing.T, s *GRPCServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return conn
}

func call(t *testing.T, conn *grpc.ClientConn, method, token string, fields map[string]any, op string) (wire.Reply, error) {
	t.Helper()
	in, err := wire.NewRequest(op, fields)
	require.NoError(t, err)

	ctx := context.Background()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
	}

	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, method, in, out); err != nil {
		return wire.Reply{}, err
	}
	return wire.ParseReply(out), nil
}
