package grpc

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const instrumentationName = "github.com/Nathan-Yinka/autochek-API/internal/presentation/grpc"

// MetricsInterceptor records the duration of every unary call on the global
// MeterProvider, labelled by method and status code.
func MetricsInterceptor() (grpclib.UnaryServerInterceptor, error) {
	duration, err := otel.Meter(instrumentationName).Float64Histogram(
		"rpc.server.duration",
		metric.WithDescription("Duration of unary gRPC calls"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpclib.UnaryServerInfo,
		handler grpclib.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration.Record(ctx, float64(time.Since(start).Microseconds())/1000,
			metric.WithAttributes(
				attribute.String("rpc.method", info.FullMethod),
				attribute.String("rpc.grpc.status_code", status.Code(err).String()),
			),
		)
		return resp, err
	}, nil
}

// LoggingInterceptor logs failed calls. Client errors log at info, the rest at warn.
func LoggingInterceptor(logger *slog.Logger) grpclib.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpclib.UnaryServerInfo,
		handler grpclib.UnaryHandler,
	) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		code := status.Code(err)
		level := slog.LevelWarn
		switch code {
		case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition,
			codes.PermissionDenied, codes.Unauthenticated, codes.Aborted:
			level = slog.LevelInfo
		}
		logger.Log(ctx, level, "rpc failed", "method", info.FullMethod, "code", code.String(), "error", err)
		return resp, err
	}
}
