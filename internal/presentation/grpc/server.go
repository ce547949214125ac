package grpc

import (
	"fmt"
	"log/slog"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Nathan-Yinka/autochek-API/pkg/auth"
)

// Methods callable without a token. A presented token is still verified.
var anonymousMethods = []string{
	FullMethod("CheckEligibility"),
	FullMethod("SubmitApplication"),
	FullMethod("RequestValuation"),
	FullMethod("ListValuationHistory"),
	FullMethod("EvaluateVehicle"),
}

// Methods reserved for back-office staff.
var adminMethods = []string{
	FullMethod("UpdateApplicationStatus"),
	FullMethod("CreateOffer"),
	FullMethod("UpdateOfferStatus"),
	FullMethod("UpdateVehiclePricing"),
}

// ServerOptions configures NewServer.
type ServerOptions struct {
	// Creds enables TLS when non-nil.
	Creds      credentials.TransportCredentials
	Reflection bool
}

// Server wraps a gRPC server with the financing handler registered.
type Server struct {
	gs     *grpclib.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler FinancingServiceServer, jwtService *auth.JWTService, opts ServerOptions, logger *slog.Logger) (*Server, error) {
	validator, err := NewRequestValidator()
	if err != nil {
		return nil, err
	}
	metricsInterceptor, err := MetricsInterceptor()
	if err != nil {
		return nil, fmt.Errorf("create rpc metrics: %w", err)
	}

	authInterceptor := auth.UnaryAuthInterceptor(jwtService, auth.InterceptorOptions{
		SkipMethods: []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		},
		OptionalMethods: anonymousMethods,
	})

	serverOpts := []grpclib.ServerOption{
		grpclib.ChainUnaryInterceptor(
			metricsInterceptor,
			LoggingInterceptor(logger),
			authInterceptor,
			auth.RequireRole(adminMethods, auth.RoleAdmin),
			validator.UnaryInterceptor(),
		),
	}
	if opts.Creds != nil {
		serverOpts = append(serverOpts, grpclib.Creds(opts.Creds))
		logger.Info("gRPC TLS enabled")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpclib.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(gs)
	}

	RegisterFinancingServiceServer(gs, handler)

	return &Server{gs: gs, health: healthSrv, logger: logger}, nil
}

// Serve accepts connections on lis until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// ListenAndServe listens on addr and serves.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// GracefulStop marks the service as not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}
