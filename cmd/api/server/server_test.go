package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"currencies-app/internal/config"
)

func newTestServer(t *testing.T, httpAddr string, withGRPC bool) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.GRPCPort = "0"
	cfg.App.ShutdownTimeoutSeconds = 1

	l := zaptest.NewLogger(t)
	s := &Server{
		Config: cfg,
		Logger: l,
		Gin:    &http.Server{Addr: httpAddr, Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second},
	}
	if withGRPC {
		reachable := pingFunc(func(context.Context) error { return nil })
		s.GRPC, s.Health = SetupGRPC(context.Background(), "currencies-app", reachable, l)
	}
	return s
}

func startAsync(ctx context.Context, s *Server) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	return done
}

func waitStart(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return")
		return nil
	}
}

func TestStart_HTTPBindFailureStopsGRPC(t *testing.T) {
	occupied, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = occupied.Close() })
	port := occupied.Addr().(*net.TCPAddr).Port

	s := newTestServer(t, ":"+strconv.Itoa(port), true)

	err = waitStart(t, startAsync(context.Background(), s))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gin server")
}

func TestStart_ContextCancelStopsServers(t *testing.T) {
	s := newTestServer(t, "127.0.0.1:0", true)

	ctx, cancel := context.WithCancel(context.Background())
	done := startAsync(ctx, s)
	time.Sleep(100 * time.Millisecond)
	cancel()

	assert.NoError(t, waitStart(t, done))
}

func TestStart_ReturnsAfterShutdown(t *testing.T) {
	s := newTestServer(t, "127.0.0.1:0", true)

	done := startAsync(context.Background(), s)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, waitStart(t, done))
}
