package irrigation_simulator

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq"
)

// Aggregator bufferizza gli snapshot per sensore e pubblica la media a intervalli regolari.
type Aggregator struct {
	publisher rabbitmq.IPublisher
	interval  time.Duration
	logger    logrus.FieldLogger
	now       func() time.Time

	mutex  sync.Mutex
	buffer map[string][]model.MoistureSnapshot // key is SensorID
}

func NewAggregator(publisher rabbitmq.IPublisher, interval time.Duration, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		publisher: publisher,
		interval:  interval,
		logger:    logger.WithField("component", "aggregator"),
		now:       time.Now,
		buffer:    make(map[string][]model.MoistureSnapshot),
	}
}

// Observe is a Listener: register it with Simulator.OnTick.
func (a *Aggregator) Observe(snap model.MoistureSnapshot) {
	a.mutex.Lock()
	a.buffer[snap.SensorID] = append(a.buffer[snap.SensorID], snap)
	a.mutex.Unlock()
}

// Start blocks until ctx is done, flushing every interval.
func (a *Aggregator) Start(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.publisher.Close()
			return nil
		case <-ticker.C:
			a.Flush()
		}
	}
}

// Flush publishes one aggregate per sensor with buffered samples and resets the buffer.
func (a *Aggregator) Flush() []model.MoistureAggregate {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var out []model.MoistureAggregate
	for sensorID, readings := range a.buffer {
		if len(readings) == 0 {
			continue
		}
		agg := aggregate(readings, a.now())

		if err := a.publisher.PublishMessage(agg); err != nil {
			a.logger.WithError(err).WithField("sensor_id", sensorID).Warn("publish aggregate failed")
		} else {
			a.logger.WithFields(logrus.Fields{"sensor_id": sensorID, "mean": agg.Mean, "samples": agg.Samples}).Debug("aggregate published")
		}
		out = append(out, agg)

		// reset buffer
		a.buffer[sensorID] = readings[:0]
	}
	return out
}

func aggregate(readings []model.MoistureSnapshot, now time.Time) model.MoistureAggregate {
	sum, on := 0.0, 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range readings {
		sum += r.Level
		lo = math.Min(lo, r.Level)
		hi = math.Max(hi, r.Level)
		if r.PumpOn {
			on++
		}
	}
	n := float64(len(readings))
	return model.MoistureAggregate{
		FieldID:    readings[0].FieldID,
		SensorID:   readings[0].SensorID,
		Mean:       round1(sum / n),
		Min:        lo,
		Max:        hi,
		Samples:    len(readings),
		PumpOnPct:  round1(float64(on) * 100 / n),
		Aggregated: true,
		Timestamp:  now,
	}
}
