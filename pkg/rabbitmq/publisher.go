package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// IPublisher publishes payloads to a fixed topic.
type IPublisher interface {
	PublishMessage(message interface{}) error
	Close()
}

// Publisher holds the shared client and its topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	logger logrus.FieldLogger
}

var _ IPublisher = (*Publisher)(nil)

func NewPublisher(client mqtt.Client, topic string, qos byte, logger logrus.FieldLogger) *Publisher {
	return &Publisher{
		client: client,
		topic:  topic,
		qos:    qos,
		logger: logger.WithField("topic", topic),
	}
}

// PublishMessage accepts a string, a []byte or any JSON-marshalable value.
func (p *Publisher) PublishMessage(message interface{}) error {
	var payload []byte
	switch m := message.(type) {
	case string:
		payload = []byte(m)
	case []byte:
		payload = m
	default:
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		payload = b
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.WithField("bytes", len(payload)).Debug("message published")
	return nil
}

// Close is a no-op: the shared connection is closed by its owner.
func (p *Publisher) Close() {}
