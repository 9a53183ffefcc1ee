package utilities

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthProbe reports whether a dependency the service needs is reachable.
type HealthProbe func(ctx context.Context) error

// RegisterHealthServer registers the gRPC health check service.
// The service starts as NOT_SERVING until WatchHealth observes a passing probe.
func RegisterHealthServer(grpcServer *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	return healthServer
}

// WatchHealth runs probe every interval and mirrors the result into the health server
// until ctx is done. On return the status is set to NOT_SERVING.
func WatchHealth(
	ctx context.Context,
	logger *zerolog.Logger,
	healthServer *health.Server,
	probe HealthProbe,
	interval time.Duration,
) {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := grpc_health_v1.HealthCheckResponse_UNKNOWN
	check := func() {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		status := grpc_health_v1.HealthCheckResponse_SERVING
		if err := probe(probeCtx); err != nil {
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			if last != status {
				logger.Warn().Err(err).Msg("health probe failed")
			}
		}
		if last != status {
			logger.Info().Str("status", status.String()).Msg("health status changed")
			last = status
		}
		healthServer.SetServingStatus("", status)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			return
		case <-ticker.C:
			check()
		}
	}
}
