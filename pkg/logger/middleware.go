package logger

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the header used to propagate request ids over HTTP and gRPC metadata.
const RequestIDHeader = "X-Request-ID"

// NewRequestID returns incoming when it is non-empty, otherwise a fresh UUID.
func NewRequestID(incoming string) string {
	if incoming != "" && len(incoming) <= 64 {
		return incoming
	}
	return uuid.NewString()
}

// RequestIDInterceptor is a gRPC interceptor that puts a request id into the
// handler context, reusing the caller's x-request-id metadata when present.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		var incoming string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDHeader); len(ids) > 0 {
				incoming = ids[0]
			}
		}
		return handler(WithRequestID(ctx, NewRequestID(incoming)), req)
	}
}
