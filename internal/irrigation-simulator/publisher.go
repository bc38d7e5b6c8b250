package irrigation_simulator

import (
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq"
)

// SnapshotPublisher returns a Listener that forwards every tick to the broker.
// Errors are logged; a slow or missing broker never blocks the simulator for
// longer than the publish timeout.
func SnapshotPublisher(pub rabbitmq.IPublisher, logger logrus.FieldLogger) Listener {
	return func(snap model.MoistureSnapshot) {
		if err := pub.PublishMessage(snap); err != nil {
			logger.WithError(err).WithField("sensor_id", snap.SensorID).Warn("snapshot publish failed")
		}
	}
}
