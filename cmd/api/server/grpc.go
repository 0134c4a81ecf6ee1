package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"currencies-app/pkg/logger"
)

const storePingTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupGRPC creates the gRPC server exposing the standard health service
// for service as well as the overall "" service. Both report SERVING only
// when store answers a ping.
func SetupGRPC(ctx context.Context, service string, store Pinger, l *zap.Logger) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
		),
	)

	healthServer := health.NewServer()
	status := storeStatus(ctx, store, l)
	healthServer.SetServingStatus("", status)
	healthServer.SetServingStatus(service, status)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	l.Info("gRPC health service configured",
		zap.String("service", service),
		zap.Stringer("status", status),
	)

	return grpcServer, healthServer
}

func storeStatus(ctx context.Context, store Pinger, l *zap.Logger) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		l.Warn("store unreachable, gRPC health set to NOT_SERVING", zap.Error(err))
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
