package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"pira-rental-backend/internal/api/grpc/interceptor"
	"pira-rental-backend/internal/logger"
)

// ServiceName is the health service key load balancers probe.
const ServiceName = "pira.rental.v1.RentalBackend"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer serves grpc.health.v1 with a status driven by the database.
type HealthServer struct {
	health *health.Server
	db     Pinger
}

func NewHealthServer(db Pinger) *HealthServer {
	h := &HealthServer{health: health.NewServer(), db: db}
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Refresh pings the database once and publishes the result.
func (h *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		logger.Warn("Health check failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus(ServiceName, st)
	return st
}

// Watch refreshes the status every interval until ctx is done.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		h.Refresh(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown marks every service NOT_SERVING so probes drain traffic first.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
}

// NewServer builds the gRPC server exposing health and reflection.
func NewServer(h *HealthServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewLoggingInterceptor().Unary()),
	)
	healthpb.RegisterHealthServer(s, h.health)

	// Register reflection service for grpcurl
	reflection.Register(s)
	return s
}
