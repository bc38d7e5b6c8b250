package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// MessageHandler processes one message received on topic.
type MessageHandler func(topic string, message mqtt.Message) error

// IConsumer subscribes to a topic and dispatches to a handler until ctx ends.
type IConsumer interface {
	ConsumeMessage(ctx context.Context) error
	SetHandler(handler MessageHandler)
}

// Consumer holds the client and the subscribed topic.
type Consumer struct {
	client  mqtt.Client
	handler MessageHandler
	topic   string
	logger  logrus.FieldLogger
}

var _ IConsumer = (*Consumer)(nil)

func NewConsumer(client mqtt.Client, topic string, handler MessageHandler, logger logrus.FieldLogger) *Consumer {
	return &Consumer{
		client:  client,
		topic:   topic,
		handler: handler,
		logger:  logger.WithField("topic", topic),
	}
}

func (c *Consumer) SetHandler(handler MessageHandler) {
	c.handler = handler
}

// qosFor: i comandi vanno a QoS1, il resto a QoS0.
func qosFor(topic string) byte {
	if strings.Contains(strings.TrimSpace(topic), "/command") {
		return 1
	}
	return 0
}

// ConsumeMessage subscribes and blocks until ctx is cancelled, then unsubscribes.
func (c *Consumer) ConsumeMessage(ctx context.Context) error {
	token := c.client.Subscribe(c.topic, qosFor(c.topic), func(_ mqtt.Client, message mqtt.Message) {
		if c.handler == nil {
			c.logger.Warn("no handler set")
			return
		}
		if err := c.handler(message.Topic(), message); err != nil {
			c.logger.WithError(err).Warn("error handling message")
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, token.Error())
	}
	c.logger.Info("subscribed")

	<-ctx.Done()

	c.client.Unsubscribe(c.topic).Wait()
	return nil
}
