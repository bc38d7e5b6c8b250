package grpcapi

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/farmassist/internal/telemetry"
)

type ServerConfig struct {
	RateLimit      float64 // richieste al secondo
	RateLimitBurst int
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{RateLimit: 5, RateLimitBurst: 10}
}

// NewServer builds a gRPC server exposing IrrigationControl and the standard
// health service. Interceptors run request id, rate limit, logging, metrics.
func NewServer(cfg ServerConfig, provider Provider, metrics *telemetry.Metrics, logger logrus.FieldLogger, opts ...grpc.ServerOption) *grpc.Server {
	if cfg.RateLimit <= 0 || cfg.RateLimitBurst <= 0 {
		cfg = DefaultServerConfig()
	}
	chain := []grpc.UnaryServerInterceptor{
		requestIDInterceptor,
		rateLimitInterceptor(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)),
		loggingInterceptor(logger.WithField("component", "grpc")),
	}
	if metrics != nil {
		chain = append(chain, metricsInterceptor(metrics))
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(chain...))

	srv := grpc.NewServer(opts...)
	RegisterIrrigationControlServer(srv, NewService(provider))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)

	return srv
}
