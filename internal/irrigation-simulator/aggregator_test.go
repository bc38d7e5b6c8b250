package irrigation_simulator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq/rabbitmqtest"
)

func TestAggregatorFlush(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := rabbitmqtest.NewClient()
	pub := rabbitmq.NewPublisher(client, "farm/field1/moisture/aggregated", 0, logger)
	agg := NewAggregator(pub, time.Minute, logger)
	agg.now = func() time.Time { return fixedNow }

	for _, s := range []model.MoistureSnapshot{
		{FieldID: "field1", SensorID: "sensor1", Level: 40},
		{FieldID: "field1", SensorID: "sensor1", Level: 50, PumpOn: true},
		{FieldID: "field1", SensorID: "sensor1", Level: 45},
		{FieldID: "field1", SensorID: "sensor1", Level: 45, PumpOn: true},
	} {
		agg.Observe(s)
	}

	out := agg.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 45.0, out[0].Mean)
	assert.Equal(t, 40.0, out[0].Min)
	assert.Equal(t, 50.0, out[0].Max)
	assert.Equal(t, 4, out[0].Samples)
	assert.Equal(t, 50.0, out[0].PumpOnPct)
	assert.True(t, out[0].Aggregated)

	published := client.Published()
	require.Len(t, published, 1)
	var decoded model.MoistureAggregate
	require.NoError(t, json.Unmarshal(published[0].Payload, &decoded))
	assert.Equal(t, "sensor1", decoded.SensorID)
	assert.Equal(t, 45.0, decoded.Mean)

	// buffer reset: nothing more to publish
	assert.Empty(t, agg.Flush())
	assert.Len(t, client.Published(), 1)
}

func TestAggregatorStartStopsWithContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := rabbitmqtest.NewClient()
	agg := NewAggregator(rabbitmq.NewPublisher(client, "agg", 0, logger), 5*time.Millisecond, logger)
	agg.Observe(model.MoistureSnapshot{SensorID: "sensor1", Level: 33})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agg.Start(ctx) }()

	require.Eventually(t, func() bool { return len(client.Published()) == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestSnapshotPublisher(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := rabbitmqtest.NewClient()
	sim := newTestSimulator(t, &fakeSource{deltas: []float64{2}}, nil)
	sim.OnTick(SnapshotPublisher(rabbitmq.NewPublisher(client, "farm/field1/moisture", 0, logger), logger))

	sim.Tick()

	published := client.Published()
	require.Len(t, published, 1)
	var snap model.MoistureSnapshot
	require.NoError(t, json.Unmarshal(published[0].Payload, &snap))
	assert.Equal(t, 47.0, snap.Level)
	assert.Equal(t, "Dry", string(snap.Status))
}
