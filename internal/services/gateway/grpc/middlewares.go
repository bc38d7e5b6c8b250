package grpcapi

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/LeonardoBeccarini/farmassist/internal/telemetry"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDMetadata is the metadata key carrying the request id both ways.
const RequestIDMetadata = "x-request-id"

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestIDInterceptor(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	var id string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDMetadata); len(v) > 0 {
			id = v[0]
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDMetadata, id))
	return handler(context.WithValue(ctx, requestIDKey, id), req)
}

func rateLimitInterceptor(limiter *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !limiter.Allow() {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

func loggingInterceptor(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := logger.WithFields(logrus.Fields{
			"request_id":  RequestIDFrom(ctx),
			"method":      info.FullMethod,
			"code":        status.Code(err).String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Warn("grpc request failed")
		} else {
			entry.Info("grpc request")
		}
		return resp, err
	}
}

func metricsInterceptor(m *telemetry.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.GRPCRequests.WithLabelValues(info.FullMethod).Inc()
		m.GRPCLatency.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}
