package server

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/datadeck/datadeck-server-go/internal/config"
)

// EngineService is the health service name reported for the card engine.
const EngineService = "datadeck.Engine"

// GRPCServer serves the health service for the card engine.
type GRPCServer struct {
	logger *zap.Logger
	server *grpc.Server
	health *health.Server
}

// NewGRPCServer builds the gRPC server with the standard interceptor chain.
func NewGRPCServer(cfg config.GRPCConfig, logger *zap.Logger) *GRPCServer {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(ChainUnaryInterceptors(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
			ErrorMappingInterceptor(),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	}
	if cfg.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(cfg.MaxConcurrentStreams)))
	}

	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &GRPCServer{
		logger: logger,
		server: srv,
		health: hs,
	}
}

// Serve marks the engine as serving and blocks serving lis.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(EngineService, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("starting gRPC server", zap.String("address", lis.Addr().String()))
	return s.server.Serve(lis)
}

// Shutdown reports NOT_SERVING and stops gracefully, forcing a stop when ctx ends first.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("gRPC graceful stop timed out; forcing stop")
		s.server.Stop()
	}
}
