package grpcserver

import (
	"gamedominate/auth"
	"gamedominate/interceptors"
	"gamedominate/repositories"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// PublicMethods skip token verification.
var PublicMethods = []string{
	VerifyTokenMethod,
	healthpb.Health_Check_FullMethodName,
}

// Server bundles the gRPC server with its health reporting.
type Server struct {
	*grpc.Server
	Health *health.Server
}

// New builds a gRPC server carrying the identity and health services.
func New(tokens *auth.TokenService, users repositories.UserRepository, logger *zap.Logger) *Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.ZapLoggingInterceptor(logger.Named("grpc")),
			interceptors.AuthInterceptor(tokens, PublicMethods...),
		),
	)
	RegisterIdentityServer(s, NewIdentityServer(tokens, users))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(IdentityServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return &Server{Server: s, Health: hs}
}

// Shutdown marks every service as not serving, then drains in-flight calls.
func (s *Server) Shutdown() {
	s.Health.Shutdown()
	s.GracefulStop()
}
