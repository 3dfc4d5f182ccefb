package grpcserver

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"gitlab.com/discrescue/admin/internal/metrics"
)

// ServiceName is the health-checked service; the empty name reports the
// same status.
const ServiceName = "discrescue.admin"

type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes gRPC health and reflection. Its serving status follows a
// periodic database ping.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   *zap.Logger
}

func NewServer(pinger Pinger, interval time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		grpc:     grpcServer,
		health:   healthServer,
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", port, err)
	}
	s.logger.Info("gRPC server starting", zap.String("port", port))
	return s.Serve(ctx, lis)
}

func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.Check(ctx)
	go s.watch(ctx)

	if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

func (s *Server) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Check pings the database once and publishes the resulting status.
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(pingCtx); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("health_ping").Inc()
		s.logger.Warn("Database ping failed", zap.Error(err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return st
}

func (s *Server) Shutdown() {
	s.logger.Info("Shutting down gRPC server")
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		l := logger.With(
			zap.String("rpc_method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
		)
		if err != nil {
			l.Warn("RPC failed", zap.String("code", status.Code(err).String()), zap.Error(err))
		} else {
			l.Debug("RPC handled")
		}
		return resp, err
	}
}
