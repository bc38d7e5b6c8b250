package grpcapi

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	irrigation_simulator "github.com/LeonardoBeccarini/farmassist/internal/irrigation-simulator"
	"github.com/LeonardoBeccarini/farmassist/internal/telemetry"
)

type simProvider struct {
	sim *irrigation_simulator.Simulator
	err error
}

func (p *simProvider) AcquireSimulator() (*irrigation_simulator.Simulator, error) {
	return p.sim, p.err
}

func newProvider(t *testing.T) *simProvider {
	t.Helper()
	logger, _ := test.NewNullLogger()
	opts := irrigation_simulator.DefaultOptions()
	opts.TickInterval = time.Hour
	opts.ToggleDelay = 5 * time.Millisecond
	opts.Logger = logger
	sim := irrigation_simulator.NewSimulator(opts)
	require.NoError(t, sim.Start(context.Background()))
	t.Cleanup(sim.Stop)
	return &simProvider{sim: sim}
}

func dial(t *testing.T, cfg ServerConfig, p Provider, m *telemetry.Metrics) *grpc.ClientConn {
	t.Helper()
	logger, _ := test.NewNullLogger()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(cfg, p, m, logger)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestIrrigationControl(t *testing.T) {
	p := newProvider(t)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	cfg := DefaultServerConfig()
	cfg.RateLimitBurst = 100
	client := NewClient(dial(t, cfg, p, metrics))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := client.GetState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45.0, snap.Level)
	assert.True(t, snap.AutoMode)
	assert.Equal(t, "field1", snap.FieldID)

	_, err = client.TogglePump(ctx)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	snap, err = client.ToggleAutoMode(ctx)
	require.NoError(t, err)
	assert.False(t, snap.AutoMode)

	snap, err = client.TogglePump(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Busy)
	require.Eventually(t, func() bool { return p.sim.State().PumpOn }, time.Second, time.Millisecond)

	snap, err = client.SetThreshold(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 42.0, snap.Threshold)

	for _, bad := range []float64{10, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = client.SetThreshold(ctx, bad)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "threshold %v", bad)
	}

	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.GRPCRequests.WithLabelValues(fullMethod("SetThreshold"))))
}

func TestUnavailableWhenPageCannotMount(t *testing.T) {
	client := NewClient(dial(t, DefaultServerConfig(), &simProvider{err: errors.New("mount failed")}, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetState(ctx)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestRequestIDHeader(t *testing.T) {
	client := NewClient(dial(t, DefaultServerConfig(), newProvider(t), nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var header metadata.MD
	ctx = metadata.AppendToOutgoingContext(ctx, RequestIDMetadata, "req-7")
	_, err := client.GetState(ctx, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-7"}, header.Get(RequestIDMetadata))
}

func TestRateLimit(t *testing.T) {
	client := NewClient(dial(t, ServerConfig{RateLimit: 0.001, RateLimitBurst: 1}, newProvider(t), nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetState(ctx)
	require.NoError(t, err)
	_, err = client.GetState(ctx)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestHealthService(t *testing.T) {
	conn := dial(t, DefaultServerConfig(), newProvider(t), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}
