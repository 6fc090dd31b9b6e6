// Package server provides gRPC and HTTP server lifecycle management.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/solatis/fieldfilter/internal/core/api"
	"github.com/solatis/fieldfilter/internal/core/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// shutdownTimeout bounds graceful stop before connections are cut.
const shutdownTimeout = 30 * time.Second

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	config config.ServerConfig
	logger *slog.Logger
}

// NewGRPCServer creates a gRPC server with FilterService and the standard
// health service registered.
func NewGRPCServer(cfg config.ServerConfig, service *api.QueryService, logger *slog.Logger) (*GRPCServer, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(logger),
			loggingInterceptor(logger),
		),
	)
	server.RegisterService(&FilterServiceDesc, &filterService{service: service})

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(FilterServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		logger: logger,
	}, nil
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.GRPCPort))
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	s.logger.Info("grpc listening", "addr", listener.Addr().String())
	return s.Serve(listener)
}

// Serve accepts connections on lis until Shutdown.
func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Shutdown marks the server NOT_SERVING and stops it gracefully, forcing a
// stop when ctx ends or the shutdown timeout elapses.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-time.After(shutdownTimeout):
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}
