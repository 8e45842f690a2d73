// Package grpcserver runs the optional grpc.health.v1 endpoint next to the
// HTTP listener so orchestrators can probe either protocol.
package grpcserver

import (
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

type Server struct {
	server  *grpc.Server
	health  *health.Server
	service string
	log     *slog.Logger
}

// NewServer creates a gRPC server exposing health checks for service.
// Reflection is registered when reflect is true (development only).
func NewServer(service string, reflect bool, log *slog.Logger) *Server {
	kaep := keepalive.EnforcementPolicy{
		MinTime:             5 * time.Second,
		PermitWithoutStream: true,
	}
	kasp := keepalive.ServerParameters{
		MaxConnectionIdle: 15 * time.Minute,
		Time:              30 * time.Second,
		Timeout:           5 * time.Second,
	}

	s := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(kaep),
		grpc.KeepaliveParams(kasp),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)

	if reflect {
		reflection.Register(s)
	}

	return &Server{
		server:  s,
		health:  healthServer,
		service: service,
		log:     log,
	}
}

// Serve marks the server SERVING and blocks on lis. It returns nil after
// GracefulStop.
func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(s.service, grpc_health_v1.HealthCheckResponse_SERVING)

	s.log.Info("gRPC health server listening", "addr", lis.Addr().String())
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// GracefulStop flips every status to NOT_SERVING, then drains connections.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
	s.log.Info("gRPC health server stopped")
}
