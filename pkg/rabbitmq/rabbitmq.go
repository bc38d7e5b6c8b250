// Package rabbitmq wraps the paho MQTT client used against RabbitMQ's MQTT
// plugin (topic exchange). Connection, publisher and consumer share one client.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

type RabbitMQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	ClientID string

	// ConnectTimeout bounds the whole retry loop (default 10s).
	ConnectTimeout time.Duration
	MaxRetries     int
}

func (c *RabbitMQConfig) brokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.Host, c.Port)
}

// NewRabbitMQConn connects with exponential backoff and disconnects when ctx ends.
func NewRabbitMQConn(ctx context.Context, cfg *RabbitMQConfig, logger logrus.FieldLogger) (mqtt.Client, error) {
	connAddr := cfg.brokerURL()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(connAddr)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.WithError(err).Warn("mqtt connection lost")
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.ConnectTimeout
	if bo.MaxElapsedTime <= 0 {
		bo.MaxElapsedTime = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.WithError(token.Error()).WithField("broker", connAddr).Warn("mqtt connect attempt failed")
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxRetries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}

	logger.WithField("broker", connAddr).Info("connected to MQTT broker")

	go func() {
		<-ctx.Done()
		CloseRabbitMQConn(client, logger)
	}()

	return client, nil
}

func CloseRabbitMQConn(client mqtt.Client, logger logrus.FieldLogger) {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		logger.Info("MQTT connection closed")
	}
}
