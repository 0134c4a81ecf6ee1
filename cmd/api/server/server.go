package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	ginrouter "currencies-app/internal/adapter/gin/router"
	"currencies-app/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server   // nil unless GRPC_ENABLED
	Health *health.Server // nil unless GRPC_ENABLED

	stopped   chan struct{}
	initOnce  sync.Once
	closeOnce sync.Once
}

// New creates a new server instance. store decides the initial gRPC health status.
func New(ctx context.Context, cfg *config.Config, l *zap.Logger, deps ginrouter.Deps, store Pinger) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		Gin:    SetupGinServer(deps, ":"+cfg.App.HTTPPort, l),
	}
	if cfg.App.GRPCEnabled {
		s.GRPC, s.Health = SetupGRPC(ctx, cfg.Logger.ServiceName, store, l)
	}
	return s
}

// Start serves until every server stops. When ctx is canceled or one server
// fails, the others are stopped too.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	stopped := s.stoppedChan()

	// Serve does not watch ctx, so stop the servers from here.
	g.Go(func() error {
		select {
		case <-stopped:
			return nil
		case <-ctx.Done():
		}

		s.Logger.Warn("stopping servers", zap.Error(context.Cause(ctx)))
		stopCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		return s.stop(stopCtx)
	})

	g.Go(func() error {
		s.Logger.Info("gin server running", zap.String("address", s.Gin.Addr))
		if err := s.Gin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gin server: %w", err)
		}
		return nil
	})

	if s.GRPC != nil {
		g.Go(func() error {
			lc := net.ListenConfig{}
			lis, err := lc.Listen(ctx, "tcp", s.grpcAddress())
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to listen: %w", err)
			}

			s.Logger.Info("gRPC server running", zap.String("address", s.grpcAddress()))
			// ErrServerStopped means the watcher stopped it before Serve began
			if err := s.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	stopped := s.stoppedChan()
	s.closeOnce.Do(func() { close(stopped) })
	return s.stop(ctx)
}

func (s *Server) stop(ctx context.Context) error {
	var errs []error

	if s.Gin != nil {
		s.Logger.Info("shutting down gin server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		s.Health.Shutdown()
		s.GRPC.GracefulStop()
	}

	return errors.Join(errs...)
}

// stoppedChan is closed once Shutdown has been called.
func (s *Server) stoppedChan() chan struct{} {
	s.initOnce.Do(func() { s.stopped = make(chan struct{}) })
	return s.stopped
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.Config == nil || s.Config.App.ShutdownTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.Config.App.ShutdownTimeoutSeconds) * time.Second
}

func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}
