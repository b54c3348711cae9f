package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/server/config"
	"github.com/stretchr/testify/require"
)

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddrGRPC = "127.0.0.1:0"
	cfg.LogLevel = "error"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewApp(cfg).Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
}
